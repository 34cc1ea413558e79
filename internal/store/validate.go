package store

import (
	"fmt"
	"strings"
)

// ValidateEntries checks that a snapshot only holds normalized, unique keywords.
// Backends call it before writing so a bad caller cannot corrupt the record.
func ValidateEntries(entries []KeywordEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Keyword == "" {
			return fmt.Errorf("entry %d: empty keyword", i)
		}
		if e.Keyword != strings.ToLower(strings.TrimSpace(e.Keyword)) {
			return fmt.Errorf("entry %d: keyword %q is not normalized", i, e.Keyword)
		}
		if _, dup := seen[e.Keyword]; dup {
			return fmt.Errorf("entry %d: duplicate keyword %q", i, e.Keyword)
		}
		seen[e.Keyword] = struct{}{}
	}
	return nil
}
