// Package commands turns free-text keyword commands into calls on the
// keyword index and renders exactly one user-facing message per command.
package commands

import (
	"strings"
	"unicode"
)

// Command names as users type them, optionally prefixed with "/".
const (
	NameAdd    = "添加自定义回复"
	NameList   = "查看自定义回复"
	NameDelete = "删除自定义回复"
)

// Request is one parsed command.
type Request interface {
	command() string
}

// AddRequest carries the raw "<keyword>|<reply>" body.
type AddRequest struct {
	RawArgs string
}

// ListRequest asks for all entries.
type ListRequest struct{}

// DeleteRequest names the keyword to remove (not yet normalized).
type DeleteRequest struct {
	Keyword string
}

func (AddRequest) command() string    { return "add" }
func (ListRequest) command() string   { return "list" }
func (DeleteRequest) command() string { return "delete" }

// CommandName returns the short name of req ("add", "list", "delete"), for logs and metrics.
func CommandName(req Request) string {
	if req == nil {
		return ""
	}
	return req.command()
}

// Parse recognizes the keyword commands for a bot with no known username.
// See ParseFor.
func Parse(text string) (Request, bool) {
	return ParseFor(text, "")
}

// ParseFor recognizes the keyword commands. The command word may carry a
// leading "/" and a Telegram-style "@botname" suffix; the suffix must equal
// botName (case-insensitive), so commands addressed to other bots and all
// suffixes when botName is empty are rejected. The add and delete words may
// be glued to their arguments ("添加自定义回复hi|x"); the list word must stand
// alone. The body is the rest of the text with surrounding whitespace
// trimmed; the reply part of an add body keeps its inner whitespace.
func ParseFor(text, botName string) (Request, bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	text = strings.TrimPrefix(text, "/")

	word, body := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		word, body = text[:i], text[i:]
	}

	for _, name := range []string{NameAdd, NameList, NameDelete} {
		if !strings.HasPrefix(word, name) {
			continue
		}
		rest := word[len(name):]
		switch {
		case strings.HasPrefix(rest, "@"):
			if botName == "" || !strings.EqualFold(rest[1:], botName) {
				return nil, false
			}
		case rest != "":
			if name == NameList {
				return nil, false
			}
			body = rest + body
		}
		return newRequest(name, strings.TrimSpace(body)), true
	}
	return nil, false
}

func newRequest(name, body string) Request {
	switch name {
	case NameAdd:
		return AddRequest{RawArgs: body}
	case NameDelete:
		return DeleteRequest{Keyword: body}
	default:
		return ListRequest{}
	}
}
