package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ratetool/rates"
)

// JSONReader streams rate records from a JSON file holding either a bare
// array of records or a page object ({"data": [...], "totalCount": N}) as
// served by /api/rates. Only one record is decoded at a time.
type JSONReader struct {
	file    *os.File
	decoder *json.Decoder
	itemNum int64
	done    bool
}

func NewJSONReader(path string) (*JSONReader, error) {
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

	r := &JSONReader{file: file, decoder: json.NewDecoder(bufReader)}
	if err := r.seekArray(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// seekArray positions the decoder just inside the record array.
func (r *JSONReader) seekArray() error {
	tok, err := r.decoder.Token()
	if err != nil {
		return fmt.Errorf("read opening token: %w", err)
	}
	switch tok {
	case json.Delim('['):
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("expected '[' or '{', got %v", tok)
	}

	for r.decoder.More() {
		tok, err := r.decoder.Token()
		if err != nil {
			return fmt.Errorf("read field name: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %T", tok)
		}
		if key != "data" {
			var skip json.RawMessage
			if err := r.decoder.Decode(&skip); err != nil {
				return fmt.Errorf("skip %s: %w", key, err)
			}
			continue
		}
		tok, err = r.decoder.Token()
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fmt.Errorf("expected data array, got %v", tok)
		}
		return nil
	}
	return errors.New("no data array found")
}

// Next returns the next record, or io.EOF after the last one. Fields after
// the data array are not read.
func (r *JSONReader) Next() (rates.RateRecord, error) {
	if r.done || !r.decoder.More() {
		r.done = true
		return rates.RateRecord{}, io.EOF
	}
	var rec rates.RateRecord
	if err := r.decoder.Decode(&rec); err != nil {
		return rates.RateRecord{}, fmt.Errorf("decode record %d: %w", r.itemNum+1, err)
	}
	r.itemNum++
	return rec, nil
}

// RowNum returns the number of records decoded so far.
func (r *JSONReader) RowNum() int64 {
	return r.itemNum
}

func (r *JSONReader) Format() string { return "json" }

func (r *JSONReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
