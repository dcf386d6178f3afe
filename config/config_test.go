package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.PageSize != 1000 || cfg.MaxConns != 4 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://localhost:3000", "http://localhost:5173"}) {
		t.Errorf("cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.UsesS3() {
		t.Error("default payload is a local file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := "RATETOOL_PAYLOAD=s3://rates/combinations.json.gz\nRATETOOL_PAGE_SIZE=250\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv("RATETOOL_PAGE_SIZE", "500")
	defer os.Unsetenv("RATETOOL_PAYLOAD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.UsesS3() || cfg.PageSize != 500 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsPageSize(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RATETOOL_PAGE_SIZE", "0")
	if _, err := Load(); !errors.Is(err, ErrPageSize) {
		t.Errorf("expected ErrPageSize, got %v", err)
	}
}

func TestParseEnvError(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RATETOOL_PAGE_SIZE", "lots")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test, restoring
// it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
