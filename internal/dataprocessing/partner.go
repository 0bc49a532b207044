package dataprocessing

import (
	"sort"
	"strings"
)

// Normalizer canonicalizes partner identifiers. It lowercases, trims and
// strips every character outside [a-z0-9], then corrects known misspellings
// through the alias table. Values that still fall outside the canonical
// partner set are reported but NOT discarded: they keep flowing through the
// pipeline and get their own partner bucket downstream.
type Normalizer struct {
	aliases   map[string]string
	canonical map[string]bool
}

// NewNormalizer creates a partner id normalizer. Alias keys must already be
// in normalized form (lowercase alphanumeric) because alias substitution
// happens after character stripping.
func NewNormalizer(aliases map[string]string, canonicalPartners []string) *Normalizer {
	canonical := make(map[string]bool, len(canonicalPartners))
	for _, p := range canonicalPartners {
		canonical[p] = true
	}
	return &Normalizer{
		aliases:   aliases,
		canonical: canonical,
	}
}

// Normalize canonicalizes a single raw partner id. The second return value
// reports whether the result is a member of the canonical partner set.
// Normalizing an already-canonical id returns it unchanged.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if canonical, ok := n.aliases[s]; ok {
		s = canonical
	}

	return s, n.canonical[s]
}

// Recognized reports whether id belongs to the canonical partner set.
func (n *Normalizer) Recognized(id string) bool {
	return n.canonical[id]
}

// distinctSorted returns the distinct values of set as a sorted slice,
// giving diagnostics a deterministic order.
func distinctSorted(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
