// Package session owns one explorer's state: the facet combinations, the
// current selections, and the results of the latest search.
//
// Derived values are recomputed from these inputs and replaced wholesale.
// Every search takes a generation token; a search whose token is no longer
// current when it completes is discarded with ErrSuperseded.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ratetool/facets"
	"ratetool/fetch"
	"ratetool/grouping"
	"ratetool/rates"
	"ratetool/timeseries"
)

var (
	// ErrSuperseded is returned by a search that a newer search or selection
	// change overtook while its pages were in flight.
	ErrSuperseded = errors.New("search superseded by a newer request")
	// ErrNoResults is returned when table or chart data is requested before
	// a search has completed.
	ErrNoResults = errors.New("no search results")
	// ErrUnknownEntry is returned when a chart names an entry that is not in
	// the current results.
	ErrUnknownEntry = errors.New("unknown entry")
)

// Result is the committed outcome of one search.
type Result struct {
	Generation uint64
	Criteria   map[string]string
	Records    []rates.RateRecord
	Entries    []rates.RateRecord
	Columns    []grouping.Column
}

// Session is safe for concurrent use.
type Session struct {
	resolver *facets.Resolver
	src      fetch.PageSource
	pageSize int
	today    func() rates.Date

	mu     sync.Mutex
	sel    rates.Selections
	gen    uint64
	result *Result
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the date used as the chart's trailing point.
func WithClock(today func() rates.Date) Option {
	return func(s *Session) { s.today = today }
}

// New creates a session over decoded combinations, fetching records from
// src pageSize at a time.
func New(combos []rates.Combination, src fetch.PageSource, pageSize int, opts ...Option) *Session {
	s := &Session{
		resolver: facets.NewResolver(combos),
		src:      src,
		pageSize: pageSize,
		today:    rates.Today,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Selections returns a copy of the current selections.
func (s *Session) Selections() rates.Selections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetSelection sets a facet, clearing every later facet, and invalidates any
// search in flight.
func (s *Session) SetSelection(f rates.Facet, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sel.Set(f, values...); err != nil {
		return err
	}
	s.gen++
	return nil
}

// Replace swaps in a complete set of selections, as parsed from wire form.
func (s *Session) Replace(sel rates.Selections) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
	s.gen++
}

// Options lists the values currently available for f.
func (s *Session) Options(f rates.Facet) []string {
	return s.resolver.Options(s.Selections(), f)
}

// AllOptions lists the available values of every facet.
func (s *Session) AllOptions() map[rates.Facet][]string {
	return s.resolver.All(s.Selections())
}

// begin validates the current selections and claims a new generation.
func (s *Session) begin() (rates.Selections, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := grouping.Validate(s.sel); err != nil {
		return rates.Selections{}, 0, err
	}
	s.gen++
	return s.sel, s.gen, nil
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Search validates the selections, gathers every matching record page by
// page, and groups them. The result replaces the previous one only if no
// newer search or selection change happened meanwhile.
func (s *Session) Search(ctx context.Context) (*Result, error) {
	sel, gen, err := s.begin()
	if err != nil {
		return nil, err
	}
	criteria := sel.Criteria()

	reducer := grouping.NewReducer(sel)
	var records []rates.RateRecord
	err = fetch.Stream(ctx, s.src, criteria, s.pageSize, func(p fetch.Page) error {
		if !s.current(gen) {
			return ErrSuperseded
		}
		reducer.Add(p.Data...)
		records = append(records, p.Data...)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSuperseded) || !s.current(gen) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	entries := reducer.Entries()
	res := &Result{
		Generation: gen,
		Criteria:   criteria,
		Records:    records,
		Entries:    entries,
		Columns:    grouping.VisibleColumns(entries),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, ErrSuperseded
	}
	s.result = res
	return res, nil
}

// Result returns the latest committed search result.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResults
	}
	return s.result, nil
}

// Table returns one page of the grouped entries.
func (s *Session) Table(page, pageSize int) (grouping.Page, error) {
	res, err := s.Result()
	if err != nil {
		return grouping.Page{}, err
	}
	return grouping.Paginate(res.Entries, page, pageSize), nil
}

// Chart plots the entries whose configuration keys are listed, against the
// record population of the latest search.
func (s *Session) Chart(keys ...string) (timeseries.Chart, error) {
	res, err := s.Result()
	if err != nil {
		return timeseries.Chart{}, err
	}
	byKey := make(map[string]rates.RateRecord, len(res.Entries))
	for _, e := range res.Entries {
		byKey[e.Key()] = e
	}
	selected := make([]rates.RateRecord, 0, len(keys))
	for _, k := range keys {
		e, ok := byKey[k]
		if !ok {
			return timeseries.Chart{}, fmt.Errorf("%w: %q", ErrUnknownEntry, k)
		}
		selected = append(selected, e)
	}
	return timeseries.Assemble(selected, res.Records, s.today()), nil
}

// Export streams every record matching the latest search's criteria to fn,
// page by page, regardless of table paging.
func (s *Session) Export(ctx context.Context, fn func([]rates.RateRecord) error) error {
	res, err := s.Result()
	if err != nil {
		return err
	}
	return fetch.Stream(ctx, s.src, res.Criteria, s.pageSize, func(p fetch.Page) error {
		return fn(p.Data)
	})
}
