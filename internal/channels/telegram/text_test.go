package telegram

import (
	"strings"
	"testing"
)

func TestHasMention(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"@ReplyBot hi", true},
		{"hi @replybot", true},
		{"hi @replybot, there", true},
		{"@replybot_2 hi", false},
		{"/查看自定义回复@replybot", false},
		{"mail me@replybot", false},
		{"no mention", false},
	}
	for _, tt := range tests {
		if got := hasMention(tt.text, "replybot"); got != tt.want {
			t.Errorf("hasMention(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"@ReplyBot hi", "hi"},
		{"hi @replybot", "hi"},
		{"@replybot, good  morning", "good  morning"},
		{"@replybot 添加自定义回复 a|b\nc", "添加自定义回复 a|b\nc"},
	}
	for _, tt := range tests {
		if got := stripMention(tt.text, "replybot"); got != tt.want {
			t.Errorf("stripMention(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestChunkText(t *testing.T) {
	if got := chunkText("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short text chunked: %q", got)
	}

	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	got := chunkText(text, 8)
	if len(got) != 2 || got[0] != "aaaaaa" || got[1] != "bbbbbb" {
		t.Errorf("newline split = %q", got)
	}

	got = chunkText(strings.Repeat("中", 5), 7)
	for _, c := range got {
		if len(c) > 7 || strings.ToValidUTF8(c, "?") != c {
			t.Errorf("bad chunk %q", c)
		}
	}
	if strings.Join(got, "") != strings.Repeat("中", 5) {
		t.Errorf("chunks lost text: %q", got)
	}
}
