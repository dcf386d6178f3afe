// Package dictionary decodes the compressed filter-options dataset: shared
// per-column value dictionaries plus integer-coded columns.
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"ratetool/rates"
)

// Blank is the code for an absent value.
const Blank = -1

// ErrFilterOptions marks any failure to produce combinations from a payload.
// Callers show "could not load filter options" and continue with no facets.
var ErrFilterOptions = errors.New("could not load filter options")

// Payload is the columnar dictionary encoding of the combinations dataset.
//
//	mappings: column → ordered distinct values; the index is the code
//	columns:  column names, parallel to values
//	values:   one code array per column, all of the same length
type Payload struct {
	Mappings map[string][]string `json:"mappings"`
	Columns  []string            `json:"columns"`
	Values   [][]int             `json:"values"`
}

// Rows returns the row count encoded by the payload.
func (p *Payload) Rows() int {
	if len(p.Values) == 0 {
		return 0
	}
	return len(p.Values[0])
}

func (p *Payload) validate() error {
	switch {
	case p.Mappings == nil:
		return fmt.Errorf("%w: missing mappings", ErrFilterOptions)
	case p.Columns == nil:
		return fmt.Errorf("%w: missing columns", ErrFilterOptions)
	case p.Values == nil:
		return fmt.Errorf("%w: missing values", ErrFilterOptions)
	case len(p.Columns) != len(p.Values):
		return fmt.Errorf("%w: %d columns but %d value arrays", ErrFilterOptions, len(p.Columns), len(p.Values))
	}
	rows := p.Rows()
	for i, col := range p.Columns {
		dict, ok := p.Mappings[col]
		if !ok {
			return fmt.Errorf("%w: no mapping for column %q", ErrFilterOptions, col)
		}
		if len(p.Values[i]) != rows {
			return fmt.Errorf("%w: column %q has %d rows, expected %d", ErrFilterOptions, col, len(p.Values[i]), rows)
		}
		for row, code := range p.Values[i] {
			if code != Blank && (code < 0 || code >= len(dict)) {
				return fmt.Errorf("%w: column %q row %d: code %d out of range", ErrFilterOptions, col, row, code)
			}
		}
	}
	return nil
}

// Decode expands a payload into combination records. Each code is replaced
// by its dictionary string and Blank yields "". Columns that are not rate
// dimensions are skipped. The payload is not modified.
func Decode(p *Payload) ([]rates.Combination, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrFilterOptions)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	out := make([]rates.Combination, p.Rows())
	for i, col := range p.Columns {
		dict := p.Mappings[col]
		var probe rates.Dimensions
		if !probe.SetColumn(col, "") {
			continue
		}
		for row, code := range p.Values[i] {
			v := ""
			if code != Blank {
				v = dict[code]
			}
			out[row].SetColumn(col, v)
		}
	}
	return out, nil
}

// DecodeJSON reads a JSON payload and decodes it.
func DecodeJSON(r io.Reader) ([]rates.Combination, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: parse payload: %v", ErrFilterOptions, err)
	}
	return Decode(&p)
}

// Encode builds a payload from combinations over the given columns. Empty
// values are stored as Blank; dictionaries are sorted so that encoding the
// same rows always yields the same payload.
func Encode(combos []rates.Combination, columns []string) *Payload {
	p := &Payload{
		Mappings: make(map[string][]string, len(columns)),
		Columns:  append([]string(nil), columns...),
		Values:   make([][]int, len(columns)),
	}
	for i, col := range columns {
		seen := make(map[string]bool)
		for j := range combos {
			if v := combos[j].Column(col); v != "" {
				seen[v] = true
			}
		}
		dict := make([]string, 0, len(seen))
		for v := range seen {
			dict = append(dict, v)
		}
		sort.Strings(dict)
		index := make(map[string]int, len(dict))
		for code, v := range dict {
			index[v] = code
		}

		codes := make([]int, len(combos))
		for j := range combos {
			if v := combos[j].Column(col); v != "" {
				codes[j] = index[v]
			} else {
				codes[j] = Blank
			}
		}
		p.Mappings[col] = dict
		p.Values[i] = codes
	}
	return p
}

func writeJSON(w io.Writer, p *Payload) error {
	if err := json.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}
