package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	urls := cfg.Sources.BaseURLs()
	if len(urls) != 2 || !strings.Contains(urls[0], "riyasewana") || !strings.Contains(urls[1], "ikman") {
		t.Fatalf("unexpected base urls: %v", urls)
	}
}

func TestLoadFromReader(t *testing.T) {
	yml := `
server:
  port: "9090"
sources:
  riyasewana: " https://riyasewana.com/search/toyota "
  ikman: ""
scrape:
  ignore_individuals: true
  page_concurrency: 2
fetch:
  timeout: 5s
  retry:
    max_attempts: 3
    initial_wait: 2
log:
  level: DEBUG
  format: text
`
	cfg, err := LoadFromReader(strings.NewReader(yml))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" || !cfg.Scrape.IgnoreIndividuals || cfg.Scrape.PageConcurrency != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Scrape.DetailConcurrency != 4 {
		t.Fatal("unset fields should keep defaults")
	}
	if cfg.Sources.Riyasewana != "https://riyasewana.com/search/toyota" || cfg.Sources.Ikman != "" {
		t.Fatalf("unexpected sources: %+v", cfg.Sources)
	}
	if cfg.Fetch.Timeout.Duration != 5*time.Second || cfg.Fetch.Retry.InitialWait.Duration != 2*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg.Fetch)
	}
	if opts := cfg.Fetch.Retry.RetryOpts(); opts.MaxAttempts != 3 || opts.InitialWait != 2*time.Second {
		t.Fatalf("unexpected retry opts: %+v", opts)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected defaults, got %+v", cfg.Server)
	}
}

func TestLoadFromReaderUnknownField(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("scrape:\n  worker_count: 3\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"page concurrency", func(c *Config) { c.Scrape.PageConcurrency = 0 }, "page_concurrency"},
		{"detail concurrency", func(c *Config) { c.Scrape.DetailConcurrency = -1 }, "detail_concurrency"},
		{"timeout", func(c *Config) { c.Fetch.Timeout = Duration{} }, "fetch.timeout"},
		{"attempts", func(c *Config) { c.Fetch.Retry.MaxAttempts = 0 }, "max_attempts"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"nats subject", func(c *Config) { c.NATS.URL = "nats://x"; c.NATS.Subject = "" }, "nats.subject"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":               "7000",
		"IKMAN_URL":          "https://ikman.lk/en/ads/colombo/cars",
		"IGNORE_INDIVIDUALS": "true",
		"DETAIL_CONCURRENCY": "8",
		"FETCH_TIMEOUT":      "45s",
		"NATS_URL":           "nats://localhost:4222",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7000" || cfg.Sources.Ikman != env["IKMAN_URL"] || !cfg.Scrape.IgnoreIndividuals {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Scrape.DetailConcurrency != 8 || cfg.Fetch.Timeout.Duration != 45*time.Second || cfg.NATS.URL == "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	env := map[string]string{"PAGE_CONCURRENCY": "many", "ISOLATE_FAILURES": "sometimes"}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err == nil || !strings.Contains(err.Error(), "PAGE_CONCURRENCY") || !strings.Contains(err.Error(), "ISOLATE_FAILURES") {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"6000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "6000" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}

	t.Setenv("PORT", "6100")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "6100" {
		t.Fatal("environment should override the file")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Fatal("info should be filtered at warn level")
	}
	LogConfig{Level: "info", Format: "text"}.NewLogger(&buf).Info("shown", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}
