package commands

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

// FormatEntries renders entries as numbered "<n>. [<keyword>] -> <reply>" lines.
func FormatEntries(entries []store.KeywordEntry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. [%s] -> %s", i+1, e.Keyword, e.Reply)
	}
	return strings.Join(lines, "\n")
}
