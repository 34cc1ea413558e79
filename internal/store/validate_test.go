package store

import "testing"

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []KeywordEntry
		wantErr bool
	}{
		{"empty", nil, false},
		{"normal", []KeywordEntry{{"hi", "A"}, {"你好", ""}}, false},
		{"empty_keyword", []KeywordEntry{{"", "x"}}, true},
		{"upper_case", []KeywordEntry{{"Hi", "x"}}, true},
		{"padded", []KeywordEntry{{" hi", "x"}}, true},
		{"duplicate", []KeywordEntry{{"hi", "A"}, {"hi", "B"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
