package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

const (
	DefaultOutputDir      = "EDINET"
	DefaultAddr           = "localhost:8080"
	DefaultAllowOrigin    = "http://localhost:3000"
	DefaultEDINETBaseURL  = "https://api.edinet-fsa.go.jp/api/v2"
	DefaultTimeoutSeconds = 300
)

type Config struct {
	Env           string
	EDINETAPIKey  string
	EDINETBaseURL string
	Region        string
	BucketName    string
	// 空なら埋め込みの concepts.yaml
	ConceptsFile string
	StrictMode   bool
	OutputDir    string
	Addr         string
	AllowOrigins []string
	HTTPTimeout  time.Duration
}

func (c Config) IsLocal() bool {
	return c.Env == "local"
}

// Load は環境変数から設定を読み込む。ENV=local なら .env (ENV_FILE で変更可) を先に読む
func Load() (Config, error) {
	if os.Getenv("ENV") == "local" {
		file := os.Getenv("ENV_FILE")
		if file == "" {
			file = ".env"
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, eris.Wrapf(err, "Error loading %s file", file)
		}
	}

	cfg := Config{
		Env:           os.Getenv("ENV"),
		EDINETAPIKey:  os.Getenv("EDINET_API_KEY"),
		EDINETBaseURL: getenv("EDINET_BASE_URL", DefaultEDINETBaseURL),
		Region:        os.Getenv("REGION"),
		BucketName:    os.Getenv("BUCKET_NAME"),
		ConceptsFile:  os.Getenv("CONCEPTS_FILE"),
		OutputDir:     getenv("OUTPUT_DIR", DefaultOutputDir),
		Addr:          getenv("ADDR", DefaultAddr),
		AllowOrigins:  splitList(getenv("ALLOW_ORIGINS", DefaultAllowOrigin)),
		HTTPTimeout:   DefaultTimeoutSeconds * time.Second,
	}

	if v := os.Getenv("STRICT_MODE"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, eris.Wrapf(err, "STRICT_MODE=%q", v)
		}
		cfg.StrictMode = strict
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return Config{}, eris.Errorf("HTTP_TIMEOUT_SECONDS=%q は正の整数で指定してください", v)
		}
		cfg.HTTPTimeout = time.Duration(seconds) * time.Second
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
