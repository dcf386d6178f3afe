package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ratetool/fetch"
	"ratetool/rates"
)

type stubSource struct {
	err error
}

func (s stubSource) FetchPage(ctx context.Context, q fetch.Query) (fetch.Page, error) {
	if s.err != nil {
		return fetch.Page{}, s.err
	}
	return fetch.Page{Data: make([]rates.RateRecord, 3), TotalCount: 3}, nil
}

func TestInstrumentCountsPages(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	src := m.Instrument(stubSource{})
	if _, err := src.FetchPage(context.Background(), fetch.Query{Page: 1, ItemsPerPage: 10}); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	failing := m.Instrument(stubSource{err: errors.New("down")})
	if _, err := failing.FetchPage(context.Background(), fetch.Query{Page: 1}); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(m.PagesFetched.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("ok pages: got %v", got)
	}
	if got := testutil.ToFloat64(m.PagesFetched.WithLabelValues(OutcomeError)); got != 1 {
		t.Errorf("error pages: got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsFetched); got != 3 {
		t.Errorf("records: got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	src := stubSource{}
	if m.Instrument(src) != fetch.PageSource(src) {
		t.Error("nil metrics should return the source unchanged")
	}
	m.ObserveSearch(OutcomeOK)
}

func TestRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.PagesFetched.WithLabelValues(OutcomeOK).Add(0)
	m.Searches.WithLabelValues(OutcomeOK).Add(0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 5 {
		t.Errorf("expected 5 metric families, got %d", len(families))
	}
}
