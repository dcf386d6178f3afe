// Package facets computes which filter values remain reachable given the
// user's other selections, so every filter control stays consistent with
// every other one.
package facets

import (
	"sort"

	"ratetool/rates"
)

// Options returns the values target can take without contradicting any other
// current selection. target's own selection is ignored so a control keeps
// listing its alternatives. For multi-select facets, rates.BlankValue leads
// the list when a surviving combination is blank on target.
func Options(combos []rates.Combination, sel rates.Selections, target rates.Facet) []string {
	seen := make(map[string]bool)
	for i := range combos {
		d := &combos[i].Dimensions
		if !sel.Matches(d, target) {
			continue
		}
		for _, v := range d.Values(target) {
			seen[v] = true
		}
	}

	out := make([]string, 0, len(seen)+1)
	for v := range seen {
		out = append(out, v)
	}
	if target == rates.ServiceCode {
		SortCodes(out)
	} else {
		sort.Strings(out)
	}
	if target.MultiSelect() && HasBlank(combos, sel, target) {
		out = append([]string{rates.BlankValue}, out...)
	}
	return out
}

// HasBlank reports whether any combination consistent with the other
// selections has no value for target.
func HasBlank(combos []rates.Combination, sel rates.Selections, target rates.Facet) bool {
	for i := range combos {
		d := &combos[i].Dimensions
		if sel.Matches(d, target) && d.IsBlank(target) {
			return true
		}
	}
	return false
}

// All computes Options for every facet.
func All(combos []rates.Combination, sel rates.Selections) map[rates.Facet][]string {
	out := make(map[rates.Facet][]string)
	for _, f := range rates.Facets() {
		out[f] = Options(combos, sel, f)
	}
	return out
}

// Resolver binds a decoded combinations set. The set is replaced wholesale
// when a new payload loads and is never modified in place.
type Resolver struct {
	combos []rates.Combination
}

// NewResolver wraps combos. A nil or empty set yields empty option lists.
func NewResolver(combos []rates.Combination) *Resolver {
	return &Resolver{combos: combos}
}

// Options is the package-level Options over the bound set.
func (r *Resolver) Options(sel rates.Selections, target rates.Facet) []string {
	return Options(r.combos, sel, target)
}

// All is the package-level All over the bound set.
func (r *Resolver) All(sel rates.Selections) map[rates.Facet][]string {
	return All(r.combos, sel)
}

// Len returns the number of combinations.
func (r *Resolver) Len() int {
	return len(r.combos)
}
