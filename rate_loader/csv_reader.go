package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"ratetool/rates"
)

// CSVReader streams a rate CSV file whose header row names the columns of the
// rate_records table. Unknown columns are ignored.
type CSVReader struct {
	file   *os.File
	csv    *csv.Reader
	rowNum int64
	colIdx map[string]int
}

func NewCSVReader(path string) (*CSVReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	r := &CSVReader{
		file:   file,
		csv:    reader,
		colIdx: make(map[string]int),
	}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// normalizeHeader maps "Rate Effective Date" and "rate_effective_date" to the
// same key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func (r *CSVReader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	r.rowNum++
	for i, h := range header {
		r.colIdx[normalizeHeader(h)] = i
	}
	for _, required := range []string{"state_name", "service_code", "rate"} {
		if _, ok := r.colIdx[required]; !ok {
			return fmt.Errorf("read header: missing column %q", required)
		}
	}
	return nil
}

// Next returns the record on the next non-empty data row, or io.EOF.
func (r *CSVReader) Next() (rates.RateRecord, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			return rates.RateRecord{}, err
		}
		r.rowNum++

		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		return r.parseRow(row), nil
	}
}

func (r *CSVReader) parseRow(row []string) rates.RateRecord {
	var rec rates.RateRecord
	for col, i := range r.colIdx {
		if i >= len(row) {
			continue
		}
		v := strings.ToValidUTF8(strings.TrimSpace(row[i]), "\uFFFD")
		if v == "" {
			continue
		}
		switch col {
		case "rate":
			rec.Rate = v
		case "rate_effective_date":
			rec.EffectiveDate = v
		case "modifier_1_details":
			rec.ModifierDetails[0] = v
		case "modifier_2_details":
			rec.ModifierDetails[1] = v
		case "modifier_3_details":
			rec.ModifierDetails[2] = v
		case "modifier_4_details":
			rec.ModifierDetails[3] = v
		default:
			rec.SetColumn(col, v)
		}
	}
	return rec
}

// RowNum returns the current CSV row number (1-based).
func (r *CSVReader) RowNum() int64 {
	return r.rowNum
}

func (r *CSVReader) Format() string { return "csv" }

func (r *CSVReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
