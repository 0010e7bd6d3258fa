package extract

import (
	"sort"
	"strings"
)

// Key returns the identity key of r under the dedup mode in cfg.
func Key(r Record, cfg Config) string {
	heading := strings.ToLower(strings.Join(strings.Fields(r.Heading), " "))

	switch cfg.Dedup {
	case DedupHeadingCompact:
		return strings.NewReplacer(" ", "", "-", "").Replace(heading)
	case DedupHeadingPrefix:
		explanation := strings.ToLower(strings.Join(strings.Fields(r.Text()), " "))
		runes := []rune(explanation)
		if len(runes) > cfg.DedupPrefixChars {
			runes = runes[:cfg.DedupPrefixChars]
		}
		return heading + "\x00" + string(runes)
	default:
		return heading
	}
}

// Dedupe keeps the first record per identity key, in encounter order, and
// returns the survivors sorted by heading. Later duplicates are dropped, not
// merged. The input slice is not modified.
func Dedupe(records []Record, cfg Config) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := Key(r, cfg)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Heading < out[j].Heading
	})
	return out
}
