// Package store is the PostgreSQL rate repository: paged filtered queries,
// distinct facet combinations, and bulk loading.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"ratetool/fetch"
	"ratetool/rates"
)

//go:embed schema.sql
var Schema string

// Connect opens a pool and verifies the connection.
func Connect(ctx context.Context, connStr string, maxConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Repository reads and writes rate_records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an open pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InitSchema creates the table and indexes if they do not exist.
func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

const recordColumns = `
	state_name, service_category, service_code,
	COALESCE(service_description, ''), COALESCE(program, ''), COALESCE(location_region, ''),
	COALESCE(modifier_1, ''), COALESCE(modifier_1_details, ''),
	COALESCE(modifier_2, ''), COALESCE(modifier_2_details, ''),
	COALESCE(modifier_3, ''), COALESCE(modifier_3_details, ''),
	COALESCE(modifier_4, ''), COALESCE(modifier_4_details, ''),
	COALESCE(duration_unit, ''), COALESCE(provider_type, ''),
	COALESCE(rate::text, ''), COALESCE(to_char(rate_effective_date, 'YYYY-MM-DD'), '')`

func scanRecord(row pgx.CollectableRow) (rates.RateRecord, error) {
	var rec rates.RateRecord
	err := row.Scan(
		&rec.State, &rec.ServiceCategory, &rec.ServiceCode,
		&rec.ServiceDescription, &rec.Program, &rec.LocationRegion,
		&rec.Modifiers[0], &rec.ModifierDetails[0],
		&rec.Modifiers[1], &rec.ModifierDetails[1],
		&rec.Modifiers[2], &rec.ModifierDetails[2],
		&rec.Modifiers[3], &rec.ModifierDetails[3],
		&rec.DurationUnit, &rec.ProviderType,
		&rec.Rate, &rec.EffectiveDate,
	)
	return rec, err
}

// FetchPage returns one page of records matching q.Criteria, ordered by
// insertion, together with the total match count. It implements
// fetch.PageSource.
func (r *Repository) FetchPage(ctx context.Context, q fetch.Query) (fetch.Page, error) {
	sel, err := rates.ParseCriteria(q.Criteria)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("parse criteria: %w", err)
	}
	where, args := whereClause(sel)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM rate_records"+where, args...).Scan(&total); err != nil {
		return fetch.Page{}, fmt.Errorf("count records: %w", err)
	}

	page, size := q.Page, q.ItemsPerPage
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return fetch.Page{Data: []rates.RateRecord{}, TotalCount: total}, nil
	}
	args = append(args, size, (page-1)*size)
	sql := fmt.Sprintf("SELECT %s FROM rate_records%s ORDER BY id LIMIT $%d OFFSET $%d",
		recordColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("query records: %w", err)
	}
	data, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("scan records: %w", err)
	}
	if data == nil {
		data = []rates.RateRecord{}
	}
	return fetch.Page{Data: data, TotalCount: total}, nil
}

var facetColumns = map[rates.Facet]string{
	rates.ServiceCategory:    "service_category",
	rates.State:              "state_name",
	rates.ServiceCode:        "service_code",
	rates.ServiceDescription: "service_description",
	rates.Program:            "program",
	rates.LocationRegion:     "location_region",
	rates.ProviderType:       "provider_type",
	rates.DurationUnit:       "duration_unit",
}

var modifierColumns = []string{"modifier_1", "modifier_2", "modifier_3", "modifier_4"}

// whereClause translates selections into SQL with the same semantics as
// Selections.Matches: any selected value matches, and the blank sentinel
// matches NULL or empty text. Modifier values match any of the four codes.
func whereClause(sel rates.Selections) (string, []any) {
	var conds []string
	var args []any
	for _, f := range rates.Facets() {
		vals := sel.Values(f)
		if len(vals) == 0 {
			continue
		}
		var want []string
		blank := false
		for _, v := range vals {
			if v == rates.BlankValue {
				blank = true
				continue
			}
			want = append(want, v)
		}

		var alts []string
		if f == rates.Modifier {
			if len(want) > 0 {
				args = append(args, want)
				for _, c := range modifierColumns {
					alts = append(alts, fmt.Sprintf("TRIM(%s) = ANY($%d)", c, len(args)))
				}
			}
			if blank {
				var empty []string
				for _, c := range modifierColumns {
					empty = append(empty, fmt.Sprintf("COALESCE(TRIM(%s), '') = ''", c))
				}
				alts = append(alts, "("+strings.Join(empty, " AND ")+")")
			}
		} else {
			col := facetColumns[f]
			if len(want) > 0 {
				args = append(args, want)
				alts = append(alts, fmt.Sprintf("TRIM(%s) = ANY($%d)", col, len(args)))
			}
			if blank {
				alts = append(alts, fmt.Sprintf("COALESCE(TRIM(%s), '') = ''", col))
			}
		}
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Combinations returns the distinct facet combinations present in the
// table, the source of the filter-options payload.
func (r *Repository) Combinations(ctx context.Context) ([]rates.Combination, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT
			state_name, service_category, service_code,
			COALESCE(service_description, ''), COALESCE(program, ''), COALESCE(location_region, ''),
			COALESCE(modifier_1, ''), COALESCE(modifier_2, ''), COALESCE(modifier_3, ''), COALESCE(modifier_4, ''),
			COALESCE(duration_unit, ''), COALESCE(provider_type, '')
		FROM rate_records
		ORDER BY 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12`)
	if err != nil {
		return nil, fmt.Errorf("query combinations: %w", err)
	}
	combos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rates.Combination, error) {
		var c rates.Combination
		err := row.Scan(
			&c.State, &c.ServiceCategory, &c.ServiceCode,
			&c.ServiceDescription, &c.Program, &c.LocationRegion,
			&c.Modifiers[0], &c.Modifiers[1], &c.Modifiers[2], &c.Modifiers[3],
			&c.DurationUnit, &c.ProviderType,
		)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan combinations: %w", err)
	}
	return combos, nil
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM rate_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

var copyColumns = []string{
	"state_name", "service_category", "service_code", "service_description",
	"program", "location_region",
	"modifier_1", "modifier_1_details", "modifier_2", "modifier_2_details",
	"modifier_3", "modifier_3_details", "modifier_4", "modifier_4_details",
	"duration_unit", "provider_type", "rate", "rate_effective_date",
}

// BulkInsert copies records into rate_records in one COPY. Rates and dates
// that do not parse are stored as NULL.
func (r *Repository) BulkInsert(ctx context.Context, records []rates.RateRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"rate_records"}, copyColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return copyRow(&records[i]), nil
		}))
	if err != nil {
		return n, fmt.Errorf("copy rate_records: %w", err)
	}
	return n, nil
}

func copyRow(rec *rates.RateRecord) []any {
	return []any{
		sanitizeUTF8(rec.State),
		sanitizeUTF8(rec.ServiceCategory),
		sanitizeUTF8(rec.ServiceCode),
		optText(rec.ServiceDescription),
		optText(rec.Program),
		optText(rec.LocationRegion),
		optText(rec.Modifiers[0]), optText(rec.ModifierDetails[0]),
		optText(rec.Modifiers[1]), optText(rec.ModifierDetails[1]),
		optText(rec.Modifiers[2]), optText(rec.ModifierDetails[2]),
		optText(rec.Modifiers[3]), optText(rec.ModifierDetails[3]),
		optText(rec.DurationUnit),
		optText(rec.ProviderType),
		rateNumeric(rec.Rate),
		effectiveDate(rec.EffectiveDate),
	}
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with spaces.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(strings.TrimSpace(s), " ")
}

// pgtype helpers

func optText(s string) pgtype.Text {
	s = sanitizeUTF8(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func rateNumeric(s string) pgtype.Numeric {
	d, ok := rates.ParseRate(s)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return num
}

func effectiveDate(s string) pgtype.Date {
	d, ok := rates.ParseDate(s)
	if !ok {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), Valid: true}
}
