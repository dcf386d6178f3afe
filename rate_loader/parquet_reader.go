package main

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"ratetool/rates"
)

// SourceRow is the flat Parquet layout of a rate file, one column per
// rate_records column.
type SourceRow struct {
	State              string `parquet:"state_name,dict"`
	ServiceCategory    string `parquet:"service_category,dict"`
	ServiceCode        string `parquet:"service_code,dict"`
	ServiceDescription string `parquet:"service_description,optional"`
	Program            string `parquet:"program,optional,dict"`
	LocationRegion     string `parquet:"location_region,optional,dict"`
	Modifier1          string `parquet:"modifier_1,optional"`
	Modifier1Details   string `parquet:"modifier_1_details,optional"`
	Modifier2          string `parquet:"modifier_2,optional"`
	Modifier2Details   string `parquet:"modifier_2_details,optional"`
	Modifier3          string `parquet:"modifier_3,optional"`
	Modifier3Details   string `parquet:"modifier_3_details,optional"`
	Modifier4          string `parquet:"modifier_4,optional"`
	Modifier4Details   string `parquet:"modifier_4_details,optional"`
	DurationUnit       string `parquet:"duration_unit,optional,dict"`
	ProviderType       string `parquet:"provider_type,optional,dict"`
	Rate               string `parquet:"rate,optional"`
	EffectiveDate      string `parquet:"rate_effective_date,optional"`
}

func toSourceRow(r *rates.RateRecord) SourceRow {
	return SourceRow{
		State:              r.State,
		ServiceCategory:    r.ServiceCategory,
		ServiceCode:        r.ServiceCode,
		ServiceDescription: r.ServiceDescription,
		Program:            r.Program,
		LocationRegion:     r.LocationRegion,
		Modifier1:          r.Modifiers[0],
		Modifier1Details:   r.ModifierDetails[0],
		Modifier2:          r.Modifiers[1],
		Modifier2Details:   r.ModifierDetails[1],
		Modifier3:          r.Modifiers[2],
		Modifier3Details:   r.ModifierDetails[2],
		Modifier4:          r.Modifiers[3],
		Modifier4Details:   r.ModifierDetails[3],
		DurationUnit:       r.DurationUnit,
		ProviderType:       r.ProviderType,
		Rate:               r.Rate,
		EffectiveDate:      r.EffectiveDate,
	}
}

func (s *SourceRow) record() rates.RateRecord {
	return rates.RateRecord{
		Dimensions: rates.Dimensions{
			State:              s.State,
			ServiceCategory:    s.ServiceCategory,
			ServiceCode:        s.ServiceCode,
			ServiceDescription: s.ServiceDescription,
			Program:            s.Program,
			LocationRegion:     s.LocationRegion,
			DurationUnit:       s.DurationUnit,
			ProviderType:       s.ProviderType,
			Modifiers:          [4]string{s.Modifier1, s.Modifier2, s.Modifier3, s.Modifier4},
		},
		ModifierDetails: [4]string{s.Modifier1Details, s.Modifier2Details, s.Modifier3Details, s.Modifier4Details},
		Rate:            s.Rate,
		EffectiveDate:   s.EffectiveDate,
	}
}

// ParquetReader streams records from a SourceRow Parquet file.
type ParquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[SourceRow]
	buf    []SourceRow
	pos    int
	n      int
	read   int64
}

func NewParquetReader(path string) (*ParquetReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &ParquetReader{
		file:   f,
		reader: parquet.NewGenericReader[SourceRow](f),
		buf:    make([]SourceRow, 8192),
	}, nil
}

// NumRows returns the row count from the file footer.
func (r *ParquetReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Next returns the next record, or io.EOF.
func (r *ParquetReader) Next() (rates.RateRecord, error) {
	for r.pos >= r.n {
		n, err := r.reader.Read(r.buf)
		r.pos, r.n = 0, n
		if n > 0 {
			break
		}
		if err == nil {
			continue
		}
		return rates.RateRecord{}, err
	}
	rec := r.buf[r.pos].record()
	r.pos++
	r.read++
	return rec, nil
}

// RowNum returns the number of rows returned so far.
func (r *ParquetReader) RowNum() int64 {
	return r.read
}

func (r *ParquetReader) Format() string { return "parquet" }

func (r *ParquetReader) Close() error {
	r.reader.Close()
	return r.file.Close()
}

// SourceWriter writes SourceRow Parquet files, the intermediate format of a
// CSV conversion.
type SourceWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[SourceRow]
	count  int
}

func NewSourceWriter(path string) (*SourceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[SourceRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("rate_loader", "", ""),
	)
	return &SourceWriter{file: f, writer: w}, nil
}

func (w *SourceWriter) Write(records []rates.RateRecord) (int, error) {
	rows := make([]SourceRow, len(records))
	for i := range records {
		rows[i] = toSourceRow(&records[i])
	}
	n, err := w.writer.Write(rows)
	w.count += n
	return n, err
}

func (w *SourceWriter) Count() int { return w.count }

func (w *SourceWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
