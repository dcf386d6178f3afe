package rates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSingleValue is returned when several values are set on a facet that
// only accepts one.
var ErrSingleValue = errors.New("facet accepts a single value")

// Selections is the user's current partial filter: for each facet either
// nothing, one value, or (multi-select facets only) an ordered value set.
//
// The zero value selects nothing.
type Selections struct {
	values [numFacets][]string
}

// Set replaces the selection for f and clears every later facet in the
// chain. Empty strings are dropped and duplicates collapse to their first position.
func (s *Selections) Set(f Facet, values ...string) error {
	clean := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		clean = append(clean, v)
	}
	if len(clean) > 1 && !f.MultiSelect() {
		return fmt.Errorf("%s: %w", f, ErrSingleValue)
	}
	if len(clean) == 0 {
		clean = nil
	}
	s.values[f] = clean
	for later := f + 1; later < numFacets; later++ {
		s.values[later] = nil
	}
	return nil
}

// Clear removes the selection for f and every later facet.
func (s *Selections) Clear(f Facet) {
	_ = s.Set(f)
}

// Values returns the selected values for f, nil when unset.
func (s Selections) Values(f Facet) []string {
	return s.values[f]
}

// IsSet reports whether f has at least one selected value.
func (s Selections) IsSet(f Facet) bool {
	return len(s.values[f]) > 0
}

// Matches reports whether d satisfies every set facet except those listed.
func (s Selections) Matches(d *Dimensions, except ...Facet) bool {
facets:
	for f := Facet(0); f < numFacets; f++ {
		if len(s.values[f]) == 0 {
			continue
		}
		for _, e := range except {
			if e == f {
				continue facets
			}
		}
		if !d.MatchesAny(f, s.values[f]) {
			return false
		}
	}
	return true
}

// Criteria renders the selections in wire form: facet name → value, with
// multi-select values comma-joined.
func (s Selections) Criteria() map[string]string {
	out := make(map[string]string)
	for f := Facet(0); f < numFacets; f++ {
		if len(s.values[f]) > 0 {
			out[f.String()] = strings.Join(s.values[f], ",")
		}
	}
	return out
}

// ParseCriteria builds Selections from wire form. Unknown keys are ignored so
// that paging parameters can share the map. Facets are applied in chain
// order, so the result does not depend on map iteration.
func ParseCriteria(criteria map[string]string) (Selections, error) {
	var s Selections
	byFacet := make(map[Facet]string)
	for k, v := range criteria {
		if f, ok := ParseFacet(k); ok {
			byFacet[f] = v
		}
	}
	for f := Facet(0); f < numFacets; f++ {
		raw, ok := byFacet[f]
		if !ok {
			continue
		}
		var vals []string
		if f.MultiSelect() {
			vals = strings.Split(raw, ",")
		} else {
			vals = []string{raw}
		}
		if err := s.Set(f, vals...); err != nil {
			return Selections{}, err
		}
	}
	return s, nil
}
