package dictionary

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"

	"ratetool/rates"
)

// ObjectStore reads and writes payload blobs in S3-compatible storage (AWS S3,
// Cloudflare R2, MinIO).
type ObjectStore struct {
	client *s3.Client
}

// S3Options configures an ObjectStore. Empty keys fall back to the default
// AWS credential chain.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewObjectStore creates an S3 client. A custom endpoint switches to
// path-style addressing, which R2 and MinIO require.
func NewObjectStore(ctx context.Context, opts S3Options) (*ObjectStore, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &ObjectStore{client: client}, nil
}

// Open streams the object at bucket/key.
func (s *ObjectStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// Put uploads body to bucket/key.
func (s *ObjectStore) Put(ctx context.Context, bucket, key string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Load reads and decodes a payload from a location: a local path or an
// s3://bucket/key URL. Locations ending in .gz are gunzipped. store may be
// nil when only local paths are used.
func Load(ctx context.Context, store *ObjectStore, location string) ([]rates.Combination, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if bucket, key, ok := parseS3URL(location); ok {
		if store == nil {
			return nil, fmt.Errorf("%w: %s: no object store configured", ErrFilterOptions, location)
		}
		rc, err = store.Open(ctx, bucket, key)
	} else {
		rc, err = os.Open(location)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open payload: %v", ErrFilterOptions, err)
	}
	defer rc.Close()

	var r io.Reader = bufio.NewReaderSize(rc, 256*1024)
	if strings.HasSuffix(location, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gunzip payload: %v", ErrFilterOptions, err)
		}
		defer zr.Close()
		r = zr
	}
	return DecodeJSON(r)
}

// LoadOrEmpty is Load that never fails: on error it logs and returns an
// empty facet set so the caller stays usable.
func LoadOrEmpty(ctx context.Context, store *ObjectStore, location string) []rates.Combination {
	combos, err := Load(ctx, store, location)
	if err != nil {
		log.Printf("filter options unavailable: %v", err)
		return []rates.Combination{}
	}
	log.Printf("Loaded %d filter combinations from %s", len(combos), location)
	return combos
}

// WriteFile writes p as JSON to path, gzipped when path ends in .gz.
func WriteFile(path string, p *Payload) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create payload: %w", err)
	}
	if err := encodeTo(f, p, strings.HasSuffix(path, ".gz")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save writes p to a local path or an s3://bucket/key URL, gzipped when the
// location ends in .gz.
func Save(ctx context.Context, store *ObjectStore, location string, p *Payload) error {
	bucket, key, ok := parseS3URL(location)
	if !ok {
		return WriteFile(location, p)
	}
	if store == nil {
		return fmt.Errorf("save %s: no object store configured", location)
	}
	var buf bytes.Buffer
	if err := encodeTo(&buf, p, strings.HasSuffix(location, ".gz")); err != nil {
		return err
	}
	return store.Put(ctx, bucket, key, bytes.NewReader(buf.Bytes()))
}

func encodeTo(w io.Writer, p *Payload, gz bool) error {
	if !gz {
		return writeJSON(w, p)
	}
	zw := gzip.NewWriter(w)
	if err := writeJSON(zw, p); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}
	return nil
}

func parseS3URL(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
