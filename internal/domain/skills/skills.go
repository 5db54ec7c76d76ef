// Package skills normalises raw skill strings into comparable skill sets.
package skills

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// separators split a single raw entry such as "python;django, sql".
const separators = ",;"

// Set is an immutable, sorted, deduplicated collection of normalised skill
// phrases. The zero value is an empty set.
type Set struct {
	terms []string
}

// Normalize builds a Set from raw entries. Each entry may itself hold several
// phrases separated by commas or semicolons; phrases are case-folded, trimmed
// and have inner whitespace collapsed. Empty phrases are dropped.
func Normalize(raw []string) Set {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(raw))
	terms := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.FieldsFunc(entry, isSeparator) {
			term := strings.Join(strings.Fields(fold.String(part)), " ")
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return Set{terms: terms}
}

// Parse normalises a single delimited string, e.g. "Go; PostgreSQL".
func Parse(s string) Set {
	return Normalize([]string{s})
}

func isSeparator(r rune) bool {
	return strings.ContainsRune(separators, r)
}

// Terms returns a copy of the phrases in ascending order.
func (s Set) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of phrases.
func (s Set) Len() int { return len(s.terms) }

// IsEmpty reports whether the set holds no phrases.
func (s Set) IsEmpty() bool { return len(s.terms) == 0 }

// Contains reports whether the already-normalised term is in the set.
func (s Set) Contains(term string) bool {
	i := sort.SearchStrings(s.terms, term)
	return i < len(s.terms) && s.terms[i] == term
}

// Each calls fn for every phrase in ascending order.
func (s Set) Each(fn func(term string)) {
	for _, t := range s.terms {
		fn(t)
	}
}

// String joins the phrases with ", " for display.
func (s Set) String() string {
	return strings.Join(s.terms, ", ")
}
