package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestMarshalKeywords_Layout(t *testing.T) {
	entries := []KeywordEntry{
		{Keyword: "你好", Reply: "欢迎 <b>光临</b>"},
		{Keyword: "hi", Reply: "line1\n  line2"},
	}

	got, err := MarshalKeywords(entries)
	if err != nil {
		t.Fatalf("MarshalKeywords: %v", err)
	}

	want := "{\n  \"你好\": \"欢迎 <b>光临</b>\",\n  \"hi\": \"line1\\n  line2\"\n}\n"
	if string(got) != want {
		t.Errorf("MarshalKeywords =\n%s\nwant\n%s", got, want)
	}
}

func TestMarshalKeywords_Empty(t *testing.T) {
	got, err := MarshalKeywords(nil)
	if err != nil {
		t.Fatalf("MarshalKeywords: %v", err)
	}
	if string(got) != "{}\n" {
		t.Errorf("MarshalKeywords(nil) = %q, want %q", got, "{}\n")
	}
}

func TestUnmarshalKeywords_KeepsOrder(t *testing.T) {
	data := []byte(`{"zeta": "z", "alpha": "a", "mid": ""}`)

	got, err := UnmarshalKeywords(data)
	if err != nil {
		t.Fatalf("UnmarshalKeywords: %v", err)
	}

	want := []KeywordEntry{
		{Keyword: "zeta", Reply: "z"},
		{Keyword: "alpha", Reply: "a"},
		{Keyword: "mid", Reply: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnmarshalKeywords = %+v, want %+v", got, want)
	}
}

func TestUnmarshalKeywords_Blank(t *testing.T) {
	got, err := UnmarshalKeywords([]byte("  \n"))
	if err != nil {
		t.Fatalf("UnmarshalKeywords: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil entries, got %+v", got)
	}
}

func TestUnmarshalKeywords_Invalid(t *testing.T) {
	cases := map[string]string{
		"array":         `["a", "b"]`,
		"non-string":    `{"a": 1}`,
		"truncated":     `{"a": "b"`,
		"trailing data": `{"a": "b"} {}`,
		"garbage":       `not json`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalKeywords([]byte(input))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("UnmarshalKeywords(%q) error = %v, want ErrDecode", input, err)
			}
		})
	}
}

func TestKeywordsCodec_ByteStable(t *testing.T) {
	first, err := MarshalKeywords([]KeywordEntry{
		{Keyword: "b", Reply: "2"},
		{Keyword: "a", Reply: "1 | 一"},
	})
	if err != nil {
		t.Fatalf("MarshalKeywords: %v", err)
	}

	entries, err := UnmarshalKeywords(first)
	if err != nil {
		t.Fatalf("UnmarshalKeywords: %v", err)
	}
	second, err := MarshalKeywords(entries)
	if err != nil {
		t.Fatalf("MarshalKeywords: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("re-encoded record differs:\n%s\nvs\n%s", first, second)
	}
}

func TestMarshalKeywords_RawLineSeparators(t *testing.T) {
	entries := []KeywordEntry{
		{Keyword: "sep", Reply: "a\u2028b\u2029c 你好"},
		{Keyword: "literal", Reply: `path\u2028`},
	}

	got, err := MarshalKeywords(entries)
	if err != nil {
		t.Fatalf("MarshalKeywords: %v", err)
	}
	want := "{\n  \"sep\": \"a\u2028b\u2029c 你好\",\n  \"literal\": \"path\\\\u2028\"\n}\n"
	if string(got) != want {
		t.Errorf("MarshalKeywords =\n%q\nwant\n%q", got, want)
	}

	back, err := UnmarshalKeywords(got)
	if err != nil {
		t.Fatalf("UnmarshalKeywords: %v", err)
	}
	if !reflect.DeepEqual(back, entries) {
		t.Errorf("round trip = %+v, want %+v", back, entries)
	}
}
