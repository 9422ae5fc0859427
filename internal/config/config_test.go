package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"ENV", "ENV_FILE", "EDINET_API_KEY", "EDINET_BASE_URL", "REGION", "BUCKET_NAME", "CONCEPTS_FILE",
	"STRICT_MODE", "OUTPUT_DIR", "ADDR", "ALLOW_ORIGINS", "HTTP_TIMEOUT_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != DefaultOutputDir || cfg.Addr != DefaultAddr || cfg.EDINETBaseURL != DefaultEDINETBaseURL {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != DefaultAllowOrigin {
		t.Errorf("AllowOrigins = %v", cfg.AllowOrigins)
	}
	if cfg.HTTPTimeout != 300*time.Second || cfg.StrictMode {
		t.Errorf("HTTPTimeout = %v, StrictMode = %v", cfg.HTTPTimeout, cfg.StrictMode)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRICT_MODE", "true")
	t.Setenv("ALLOW_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.StrictMode || cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "http://b.example" {
		t.Errorf("AllowOrigins = %v", cfg.AllowOrigins)
	}
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRICT_MODE", "maybe")
	if _, err := Load(); err == nil {
		t.Error("Load accepted STRICT_MODE=maybe")
	}
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load accepted HTTP_TIMEOUT_SECONDS=-1")
	}
}

func TestLoadLocalDotenv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("BUCKET_NAME=compass-metrics\nREGION=ap-northeast-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV", "local")
	t.Setenv("ENV_FILE", path)
	// godotenv.Load は既に設定済みの変数を上書きしない
	os.Unsetenv("BUCKET_NAME")
	os.Unsetenv("REGION")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BucketName != "compass-metrics" || cfg.Region != "ap-northeast-1" || !cfg.IsLocal() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadLocalMissingDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "local")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without the .env file")
	}
}
