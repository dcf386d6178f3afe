package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ratetool/api"
	"ratetool/config"
	"ratetool/dictionary"
	"ratetool/fetch"
	"ratetool/metrics"
	"ratetool/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	addr := flag.String("addr", cfg.ListenAddr, "Listen address")
	payload := flag.String("payload", cfg.Payload, "Filter-options payload (path or s3://bucket/key)")
	upstream := flag.String("upstream", "", "Fetch records from this /api/rates endpoint instead of PostgreSQL")
	flag.Parse()
	cfg.ListenAddr = *addr
	cfg.Payload = *payload

	if err := run(context.Background(), cfg, *upstream); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, upstream string) error {
	var src fetch.PageSource
	switch {
	case upstream != "":
		src = fetch.NewHTTPSource(upstream, nil)
		log.Printf("Fetching records from %s", upstream)
	case cfg.DatabaseURL != "":
		pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		src = store.NewRepository(pool)
		log.Printf("Connected to PostgreSQL")
	default:
		return errors.New("no record source: set DATABASE_URL or pass -upstream")
	}

	var objects *dictionary.ObjectStore
	if cfg.UsesS3() {
		var err error
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
	combos := dictionary.LoadOrEmpty(ctx, objects, cfg.Payload)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	s := api.NewServer(combos, src, cfg.PageSize, m)
	r := api.NewRouter(s, api.RouterConfig{CORSOrigins: cfg.CORSOrigins, Gatherer: reg})

	log.Printf("Listening on %s", cfg.ListenAddr)
	return r.Run(cfg.ListenAddr)
}
