package collection

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// hasSimilarLocked reports whether any held description is a near-duplicate
// of desc. The caller must hold c.mu.
func (c *Collection) hasSimilarLocked(desc string) bool {
	norm := normalize(desc)
	for _, r := range c.records {
		if similarity(norm, normalize(r.Description)) >= c.dedupe {
			return true
		}
	}
	return false
}

// similarity scores two normalised descriptions in [0, 1]. Identical strings
// short-circuit; everything else uses standard Jaro-Winkler.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false)
}

// normalize lowercases s and collapses whitespace so formatting differences
// between pastes do not defeat the comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
