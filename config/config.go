// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by the server and loader.
type Config struct {
	DatabaseURL string   `env:"DATABASE_URL"`
	MaxConns    int32    `env:"RATETOOL_MAX_CONNS" envDefault:"4"`
	ListenAddr  string   `env:"RATETOOL_LISTEN_ADDR" envDefault:":8080"`
	PageSize    int      `env:"RATETOOL_PAGE_SIZE" envDefault:"1000"`
	Payload     string   `env:"RATETOOL_PAYLOAD" envDefault:"combinations.json.gz"`
	CORSOrigins []string `env:"RATETOOL_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	S3Endpoint  string   `env:"RATETOOL_S3_ENDPOINT"`
	S3Region    string   `env:"RATETOOL_S3_REGION" envDefault:"auto"`
	S3AccessKey string   `env:"RATETOOL_S3_ACCESS_KEY"`
	S3SecretKey string   `env:"RATETOOL_S3_SECRET_KEY"`
	Production  bool     `env:"RATETOOL_PRODUCTION"`
}

// ErrPageSize is returned for a non-positive page size.
var ErrPageSize = errors.New("page size must be positive")

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env (outside production, if present) and parses Config.
func Load() (Config, error) {
	if os.Getenv("RATETOOL_PRODUCTION") != "true" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("RATETOOL_PAGE_SIZE=%d: %w", cfg.PageSize, ErrPageSize)
	}
	return cfg, nil
}

// UsesS3 reports whether the payload lives in object storage.
func (c Config) UsesS3() bool {
	return strings.HasPrefix(c.Payload, "s3://")
}
