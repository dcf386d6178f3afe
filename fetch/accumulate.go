// Package fetch gathers a complete filtered record set from a paged source,
// one page at a time.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"ratetool/rates"
)

// Query asks a source for one page of records matching Criteria. Page is
// 1-based.
type Query struct {
	Criteria     map[string]string
	Page         int
	ItemsPerPage int
}

// Page is one page of results and the source's total match count.
type Page struct {
	Data       []rates.RateRecord `json:"data"`
	TotalCount int                `json:"totalCount"`
}

// PageSource serves filtered record pages.
type PageSource interface {
	FetchPage(ctx context.Context, q Query) (Page, error)
}

// FetchError reports the page whose request failed.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrPageSize is returned for a non-positive page size.
var ErrPageSize = errors.New("page size must be positive")

// Stream requests pages sequentially starting at 1 and hands each non-empty
// page to fn. It stops after a page that is empty, shorter than pageSize, or
// brings the running total up to the reported total. The first source or fn
// error stops the stream.
func Stream(ctx context.Context, src PageSource, criteria map[string]string, pageSize int, fn func(Page) error) error {
	if pageSize <= 0 {
		return ErrPageSize
	}
	total := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return &FetchError{Page: page, Err: err}
		}
		p, err := src.FetchPage(ctx, Query{Criteria: criteria, Page: page, ItemsPerPage: pageSize})
		if err != nil {
			return &FetchError{Page: page, Err: err}
		}
		if len(p.Data) == 0 {
			return nil
		}
		total += len(p.Data)
		if err := fn(p); err != nil {
			return err
		}
		if len(p.Data) < pageSize || total >= p.TotalCount {
			return nil
		}
	}
}

// Accumulate collects every page into one slice. On error nothing is
// returned: a partial result is never presented as complete.
func Accumulate(ctx context.Context, src PageSource, criteria map[string]string, pageSize int) ([]rates.RateRecord, error) {
	var out []rates.RateRecord
	err := Stream(ctx, src, criteria, pageSize, func(p Page) error {
		out = append(out, p.Data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []rates.RateRecord{}
	}
	return out, nil
}
