package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ratetool/config"
	"ratetool/dictionary"
	"ratetool/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	inputFile := flag.String("file", "", "Input rate file (CSV, JSON or Parquet)")
	outputFile := flag.String("out", "", "Convert the input to this Parquet file instead of loading")
	pgConn := flag.String("pg", cfg.DatabaseURL, "PostgreSQL connection string")
	initSchema := flag.Bool("init", false, "Create the rate_records table before loading")
	batchSize := flag.Int("batch", 5000, "Rows per COPY batch")
	payload := flag.String("payload", "", "Write the filter-options payload here after loading (path or s3://bucket/key)")
	flag.Parse()

	if *inputFile == "" && *payload == "" {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  To Parquet:     rate_loader -file rates.csv|rates.json -out rates.parquet\n")
		fmt.Fprintf(os.Stderr, "  File → PG:      rate_loader -file rates.parquet [-pg URL] [-init] [-batch N]\n")
		fmt.Fprintf(os.Stderr, "  Build payload:  rate_loader [-file rates.csv] -payload combinations.json.gz\n")
		os.Exit(1)
	}
	if *batchSize <= 0 {
		log.Fatalf("-batch must be positive, got %d", *batchSize)
	}

	if *outputFile != "" {
		if err := convert(*inputFile, *outputFile, *batchSize); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *pgConn == "" {
		log.Fatal("no database: pass -pg or set DATABASE_URL")
	}
	if err := run(context.Background(), cfg, *inputFile, *pgConn, *initSchema, *batchSize, *payload); err != nil {
		log.Fatal(err)
	}
}

func openReader(path string) (recordReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return NewParquetReader(path)
	case ".json":
		return NewJSONReader(path)
	}
	return NewCSVReader(path)
}

func convert(inputPath, outputPath string, batchSize int) error {
	start := time.Now()
	reader, err := openReader(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	fmt.Printf("Input:   %s\n", inputPath)
	fmt.Printf("Output:  %s\n", outputPath)

	n, err := convertToParquet(reader, outputPath, batchSize)
	if err != nil {
		return err
	}
	fmt.Printf("Done in %s: %d rows\n", time.Since(start).Round(time.Millisecond), n)
	return nil
}

func run(ctx context.Context, cfg config.Config, inputPath, connStr string, initSchema bool, batchSize int, payload string) error {
	start := time.Now()

	pool, err := store.Connect(ctx, connStr, cfg.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	fmt.Println("Connected to PostgreSQL")

	repo := store.NewRepository(pool)
	if initSchema {
		if err := repo.InitSchema(ctx); err != nil {
			return err
		}
	}

	if inputPath != "" {
		reader, err := openReader(inputPath)
		if err != nil {
			return err
		}
		defer reader.Close()

		fmt.Printf("Input:   %s (%s)\n", inputPath, reader.Format())
		if fi, err := os.Stat(inputPath); err == nil {
			fmt.Printf("Size:    %.1f MB\n", float64(fi.Size())/1024/1024)
		}
		fmt.Println()

		n, err := loadRecords(ctx, reader, repo, batchSize)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		fmt.Printf("Loaded %d rows in %s (%.0f rows/s)\n", n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	}

	if payload != "" {
		var objects *dictionary.ObjectStore
		if strings.HasPrefix(payload, "s3://") {
			objects, err = dictionary.NewObjectStore(ctx, dictionary.S3Options{
				Endpoint:  cfg.S3Endpoint,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			})
			if err != nil {
				return err
			}
		}
		rows, err := buildPayload(ctx, repo, objects, payload)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d combinations to %s\n", rows, payload)
	}
	return nil
}
