package telegram

import (
	"strings"
	"unicode/utf8"
)

// hasMention reports whether text addresses @username anywhere other than
// as a command suffix ("/cmd@username" keeps the mention inside the word).
func hasMention(text, username string) bool {
	if username == "" {
		return false
	}
	lower := strings.ToLower(text)
	tag := "@" + strings.ToLower(username)
	for i := strings.Index(lower, tag); i >= 0; {
		end := i + len(tag)
		if i == 0 || isSpaceByte(lower[i-1]) {
			if end == len(lower) || !isNameByte(lower[end]) {
				return true
			}
		}
		next := strings.Index(lower[end:], tag)
		if next < 0 {
			break
		}
		i = end + next
	}
	return false
}

// stripMention removes standalone @username tags and trims the result.
func stripMention(text, username string) string {
	tag := "@" + strings.ToLower(username)
	fields := strings.Fields(text)
	var b strings.Builder
	rest := text
	for _, f := range fields {
		idx := strings.Index(rest, f)
		gap := rest[:idx]
		rest = rest[idx+len(f):]
		if strings.ToLower(strings.TrimRight(f, ",:")) == tag {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(gap)
		}
		b.WriteString(f)
	}
	return strings.TrimSpace(b.String())
}

// chunkText splits s into pieces of at most limit bytes, breaking on newlines
// when possible and never inside a UTF-8 sequence.
func chunkText(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}
	var chunks []string
	for len(s) > limit {
		cut := strings.LastIndexByte(s[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 1 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimPrefix(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
