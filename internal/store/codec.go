package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrEncode = errors.New("store: encode failed")
	ErrDecode = errors.New("store: decode failed")
)

// MarshalKeywords renders entries as one JSON object in slice order:
//
//	{
//	  "keyword": "reply"
//	}
//
// Non-ASCII text is written literally and HTML characters are not escaped.
// An empty slice renders as "{}". The output ends with a newline.
func MarshalKeywords(entries []KeywordEntry) ([]byte, error) {
	if len(entries) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range entries {
		k, err := encodeString(e.Keyword)
		if err != nil {
			return nil, fmt.Errorf("%w: keyword %q: %v", ErrEncode, e.Keyword, err)
		}
		v, err := encodeString(e.Reply)
		if err != nil {
			return nil, fmt.Errorf("%w: reply for %q: %v", ErrEncode, e.Keyword, err)
		}
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		if i < len(entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into raw runes. Other escapes, including
// an escaped backslash followed by "u2028", are copied as they are.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// UnmarshalKeywords parses a JSON object of string values, keeping the key
// order found in data. Keys are returned as written; normalization is the
// caller's job. Empty or whitespace-only input yields (nil, nil).
func UnmarshalKeywords(data []byte) ([]KeywordEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrDecode, tok)
	}

	var entries []KeywordEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected key, got %v", ErrDecode, tok)
		}
		var reply string
		if err := dec.Decode(&reply); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrDecode, key, err)
		}
		entries = append(entries, KeywordEntry{Keyword: key, Reply: reply})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrDecode)
	}
	return entries, nil
}
