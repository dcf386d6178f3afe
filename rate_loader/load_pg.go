package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"ratetool/dictionary"
	"ratetool/rates"
	"ratetool/store"
)

// recordReader is the common interface for CSV and Parquet readers.
type recordReader interface {
	Next() (rates.RateRecord, error)
	RowNum() int64
	Format() string
	Close() error
}

// loadRecords copies every record from reader into rate_records, batchSize
// rows per COPY.
func loadRecords(ctx context.Context, reader recordReader, repo *store.Repository, batchSize int) (int64, error) {
	start := time.Now()
	lastLog := time.Now()

	batch := make([]rates.RateRecord, 0, batchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := repo.BulkInsert(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert batch ending at row %d: %w", reader.RowNum(), err)
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read %s row %d: %w", reader.Format(), reader.RowNum(), err)
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}

		if time.Since(lastLog) >= 5*time.Second {
			elapsed := time.Since(start).Seconds()
			fmt.Printf("  progress: %d rows loaded (%.0f rows/s)\n", total, float64(total)/elapsed)
			lastLog = time.Now()
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// convertToParquet rewrites a CSV or JSON rate file as SourceRow Parquet.
func convertToParquet(reader recordReader, outputPath string, batchSize int) (int, error) {
	w, err := NewSourceWriter(outputPath)
	if err != nil {
		return 0, err
	}

	batch := make([]rates.RateRecord, 0, batchSize)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			w.Close()
			return w.Count(), fmt.Errorf("read %s row %d: %w", reader.Format(), reader.RowNum(), err)
		}
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			if _, err := w.Write(batch); err != nil {
				w.Close()
				return w.Count(), fmt.Errorf("write Parquet batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := w.Write(batch); err != nil {
			w.Close()
			return w.Count(), fmt.Errorf("write final Parquet batch: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return w.Count(), fmt.Errorf("close Parquet: %w", err)
	}
	return w.Count(), nil
}

// buildPayload encodes every distinct facet combination in the database and
// saves it to location.
func buildPayload(ctx context.Context, repo *store.Repository, objects *dictionary.ObjectStore, location string) (int, error) {
	combos, err := repo.Combinations(ctx)
	if err != nil {
		return 0, err
	}
	p := dictionary.Encode(combos, rates.CombinationColumns)
	if err := dictionary.Save(ctx, objects, location, p); err != nil {
		return 0, fmt.Errorf("save payload: %w", err)
	}
	return p.Rows(), nil
}
