package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ratetool/rates"
)

// fakeSource serves total synthetic records and counts requests.
type fakeSource struct {
	total    int
	failPage int
	calls    []Query
}

func (f *fakeSource) FetchPage(ctx context.Context, q Query) (Page, error) {
	f.calls = append(f.calls, q)
	if q.Page == f.failPage {
		return Page{}, errors.New("connection reset")
	}
	start := (q.Page - 1) * q.ItemsPerPage
	end := min(start+q.ItemsPerPage, f.total)
	p := Page{TotalCount: f.total, Data: []rates.RateRecord{}}
	for i := start; i < end; i++ {
		p.Data = append(p.Data, rates.RateRecord{Rate: strconv.Itoa(i)})
	}
	return p, nil
}

func TestAccumulateTotality(t *testing.T) {
	src := &fakeSource{total: 1250}
	got, err := Accumulate(context.Background(), src, map[string]string{"state_name": "TEXAS"}, 1000)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if len(src.calls) != 2 {
		t.Errorf("expected 2 page requests, got %d", len(src.calls))
	}
	if len(got) != 1250 {
		t.Errorf("expected 1250 records, got %d", len(got))
	}
	for i, q := range src.calls {
		if q.Page != i+1 || q.ItemsPerPage != 1000 || q.Criteria["state_name"] != "TEXAS" {
			t.Errorf("call %d: unexpected query %+v", i, q)
		}
	}
}

func TestAccumulateStopsOnExactMultiple(t *testing.T) {
	src := &fakeSource{total: 2000}
	got, err := Accumulate(context.Background(), src, nil, 1000)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if len(src.calls) != 2 || len(got) != 2000 {
		t.Errorf("expected 2 calls and 2000 records, got %d and %d", len(src.calls), len(got))
	}
}

func TestAccumulateEmpty(t *testing.T) {
	src := &fakeSource{total: 0}
	got, err := Accumulate(context.Background(), src, nil, 100)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
	if len(src.calls) != 1 {
		t.Errorf("expected 1 call, got %d", len(src.calls))
	}
}

// A short page ends the loop even when the reported total is larger.
func TestAccumulateShortPage(t *testing.T) {
	src := &shortSource{}
	got, err := Accumulate(context.Background(), src, nil, 10)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if len(got) != 3 || src.calls != 1 {
		t.Errorf("expected 3 records in 1 call, got %d in %d", len(got), src.calls)
	}
}

type shortSource struct{ calls int }

func (s *shortSource) FetchPage(ctx context.Context, q Query) (Page, error) {
	s.calls++
	return Page{TotalCount: 50, Data: make([]rates.RateRecord, 3)}, nil
}

func TestAccumulateAbortsOnError(t *testing.T) {
	src := &fakeSource{total: 2500, failPage: 2}
	got, err := Accumulate(context.Background(), src, nil, 1000)
	if got != nil {
		t.Errorf("partial results must be discarded, got %d records", len(got))
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Page != 2 {
		t.Fatalf("expected FetchError on page 2, got %v", err)
	}
	if len(src.calls) != 2 {
		t.Errorf("no request may follow a failure, got %d calls", len(src.calls))
	}
}

func TestStreamHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{total: 5000}
	pages := 0
	err := Stream(ctx, src, nil, 1000, func(Page) error {
		pages++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if pages != 1 {
		t.Errorf("expected 1 page before cancel, got %d", pages)
	}
}

func TestStreamRejectsPageSize(t *testing.T) {
	err := Stream(context.Background(), &fakeSource{}, nil, 0, func(Page) error { return nil })
	if !errors.Is(err, ErrPageSize) {
		t.Errorf("expected ErrPageSize, got %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("service_code") != "H2019,H2017" || q.Get("page") != "1" || q.Get("itemsPerPage") != "25" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"state_name": "TEXAS", "service_code": "H2019", "rate": "15.75", "rate_effective_date": "2024-03-01"},
			},
			"totalCount": 1,
		})
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL+"/api/rates", ts.Client())
	got, err := Accumulate(context.Background(), src, map[string]string{"service_code": "H2019,H2017"}, 25)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if len(got) != 1 || got[0].ServiceCode != "H2019" || got[0].Rate != "15.75" {
		t.Errorf("unexpected records %+v", got)
	}
}

func TestHTTPSourceStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := Accumulate(context.Background(), NewHTTPSource(ts.URL, nil), nil, 10)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Page != 1 {
		t.Errorf("expected FetchError on page 1, got %v", err)
	}
}
