// Package grouping collapses historical rate records into one representative
// per distinct configuration: the latest effective date, and on equal dates
// the larger rate.
package grouping

import (
	"errors"
	"fmt"
	"sort"

	"ratetool/rates"
)

var (
	// ErrMissingFacets is returned when a search lacks a mandatory facet.
	ErrMissingFacets = errors.New("select a service category, state and service code or description")
	// ErrDurationUnitRequired is the commonly missed mandatory facet, reported
	// on its own so the caller can show a specific warning.
	ErrDurationUnitRequired = errors.New("select a duration unit")
)

// Validate checks that sel names every facet a search requires: service
// category, state, duration unit, and a service code or description.
func Validate(sel rates.Selections) error {
	var missing []string
	if !sel.IsSet(rates.ServiceCategory) {
		missing = append(missing, rates.ServiceCategory.String())
	}
	if !sel.IsSet(rates.State) {
		missing = append(missing, rates.State.String())
	}
	if !sel.IsSet(rates.ServiceCode) && !sel.IsSet(rates.ServiceDescription) {
		missing = append(missing, rates.ServiceCode.String()+" or "+rates.ServiceDescription.String())
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrMissingFacets, missing)
	}
	if !sel.IsSet(rates.DurationUnit) {
		return ErrDurationUnitRequired
	}
	return nil
}

// Reducer groups records incrementally, one page at a time, keeping only the
// current representative of each configuration.
type Reducer struct {
	sel    rates.Selections
	latest map[string]rates.RateRecord
	seen   int
}

// NewReducer creates a reducer that discards records not matching sel.
func NewReducer(sel rates.Selections) *Reducer {
	return &Reducer{sel: sel, latest: make(map[string]rates.RateRecord)}
}

// Add folds records into the running groups.
func (r *Reducer) Add(records ...rates.RateRecord) {
	for i := range records {
		rec := &records[i]
		if !r.sel.Matches(&rec.Dimensions) {
			continue
		}
		r.seen++
		key := rec.Key()
		cur, ok := r.latest[key]
		if !ok || rates.Newer(rec, &cur) {
			r.latest[key] = *rec
		}
	}
}

// Matched returns how many added records passed the selection filter.
func (r *Reducer) Matched() int {
	return r.seen
}

// Entries returns one record per configuration ordered by configuration key.
func (r *Reducer) Entries() []rates.RateRecord {
	keys := make([]string, 0, len(r.latest))
	for k := range r.latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]rates.RateRecord, len(keys))
	for i, k := range keys {
		out[i] = r.latest[k]
	}
	return out
}

// Group returns the grouped entries for a complete record set.
func Group(records []rates.RateRecord, sel rates.Selections) []rates.RateRecord {
	r := NewReducer(sel)
	r.Add(records...)
	return r.Entries()
}

// Page is one page of grouped entries for table display.
type Page struct {
	Entries    []rates.RateRecord `json:"entries"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalCount int                `json:"totalCount"`
}

// Paginate slices entries into 1-based pages. Out-of-range pages are empty.
func Paginate(entries []rates.RateRecord, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(entries)
	}
	p := Page{Page: page, PageSize: pageSize, TotalCount: len(entries), Entries: []rates.RateRecord{}}
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return p
	}
	end := min(start+pageSize, len(entries))
	p.Entries = entries[start:end]
	return p
}
