package normalizer

import (
	"strings"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

// Aliases expands each header name with its lower-case form, keeping order
// and dropping duplicates.
func Aliases(names ...string) []string {
	seen := make(map[string]bool, len(names)*2)
	out := make([]string, 0, len(names)*2)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, n := range names {
		add(n)
		add(strings.ToLower(n))
	}
	return out
}

// Resolve returns the value of the first alias present in row with a
// non-blank value.
func Resolve(row ingest.RawRow, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row.Values[a]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// ResolveRaw returns the value of the first alias present in row, even when blank.
// Presentation fields use it to keep "" and "-" verbatim.
func ResolveRaw(row ingest.RawRow, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row.Values[a]; ok {
			return v, true
		}
	}
	return "", false
}
