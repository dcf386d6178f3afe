package export

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"ratetool/rates"
)

// ParquetWriter writes export rows as a zstd-compressed Parquet stream.
type ParquetWriter struct {
	closer io.Closer
	writer *parquet.GenericWriter[Row]
	count  int
}

// NewParquetWriter writes to w. Close does not close w.
func NewParquetWriter(w io.Writer) *ParquetWriter {
	return &ParquetWriter{
		writer: parquet.NewGenericWriter[Row](w,
			parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
			parquet.DataPageStatistics(true),
			parquet.CreatedBy("ratetool", "1.0", ""),
		),
	}
}

// CreateParquetFile creates filename and writes to it. Close closes the file.
func CreateParquetFile(filename string) (*ParquetWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}
	w := NewParquetWriter(file)
	w.closer = file
	return w, nil
}

// Write formats and writes a batch of records.
func (w *ParquetWriter) Write(records []rates.RateRecord) (int, error) {
	return w.WriteRows(FromRecords(records))
}

// WriteRows writes already formatted rows.
func (w *ParquetWriter) WriteRows(rows []Row) (int, error) {
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file, if any.
func (w *ParquetWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		if w.closer != nil {
			w.closer.Close()
		}
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Count returns the total number of rows written.
func (w *ParquetWriter) Count() int {
	return w.count
}
