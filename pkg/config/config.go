// Package config loads service configuration: built-in defaults, then an
// optional YAML file, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WessleyAI/wessley-listings/pkg/fn"
)

// Config is the full configuration of the API server and the CLI.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sources SourcesConfig `yaml:"sources"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Log     LogConfig     `yaml:"log"`
	NATS    NATSConfig    `yaml:"nats"`
}

// ServerConfig configures cmd/api.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	CORSOrigin     string   `yaml:"cors_origin"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// SourcesConfig holds the default base URL of each source. An empty URL
// disables the source.
type SourcesConfig struct {
	Riyasewana string `yaml:"riyasewana"`
	Ikman      string `yaml:"ikman"`
}

// ScrapeConfig tunes the pipeline.
type ScrapeConfig struct {
	IgnoreIndividuals bool `yaml:"ignore_individuals"`
	PageConcurrency   int  `yaml:"page_concurrency"`
	DetailConcurrency int  `yaml:"detail_concurrency"`
	IsolateFailures   bool `yaml:"isolate_failures"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	Timeout      Duration          `yaml:"timeout"`
	UserAgent    string            `yaml:"user_agent"`
	MaxBodyBytes int64             `yaml:"max_body_bytes"`
	Headers      map[string]string `yaml:"headers"`
	Retry        RetryConfig       `yaml:"retry"`
}

// RetryConfig is the per-fetch retry policy. One attempt means no retries.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	InitialWait Duration `yaml:"initial_wait"`
	MaxWait     Duration `yaml:"max_wait"`
	Jitter      bool     `yaml:"jitter"`
}

// LogConfig selects log verbosity and format ("json" or "text").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NATSConfig configures result publishing. An empty URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns a Config populated with working defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8080",
			CORSOrigin:     "*",
			RequestTimeout: DurationFrom(2 * time.Minute),
		},
		Sources: SourcesConfig{
			Riyasewana: "https://riyasewana.com/search/cars",
			Ikman:      "https://ikman.lk/en/ads/sri-lanka/cars",
		},
		Scrape: ScrapeConfig{
			PageConcurrency:   4,
			DetailConcurrency: 4,
		},
		Fetch: FetchConfig{
			Timeout:      DurationFrom(30 * time.Second),
			UserAgent:    "Mozilla/5.0 (compatible; wessley-listings/1.0)",
			MaxBodyBytes: 8 * 1024 * 1024,
			Headers:      map[string]string{},
			Retry: RetryConfig{
				MaxAttempts: 1,
				InitialWait: DurationFrom(time.Second),
				MaxWait:     DurationFrom(10 * time.Second),
				Jitter:      true,
			},
		},
		Log: LogConfig{Level: "info", Format: "json"},
		NATS: NATSConfig{
			Subject: "listings.scraped",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer fh.Close()
		if err := decodeYAML(fh, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromReader decodes configuration from r on top of the defaults. The
// environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("PORT", &c.Server.Port)
	str("CORS_ORIGIN", &c.Server.CORSOrigin)
	duration("REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	str("RIYASEWANA_URL", &c.Sources.Riyasewana)
	str("IKMAN_URL", &c.Sources.Ikman)
	boolean("IGNORE_INDIVIDUALS", &c.Scrape.IgnoreIndividuals)
	integer("PAGE_CONCURRENCY", &c.Scrape.PageConcurrency)
	integer("DETAIL_CONCURRENCY", &c.Scrape.DetailConcurrency)
	boolean("ISOLATE_FAILURES", &c.Scrape.IsolateFailures)
	duration("FETCH_TIMEOUT", &c.Fetch.Timeout)
	str("USER_AGENT", &c.Fetch.UserAgent)
	integer("FETCH_MAX_ATTEMPTS", &c.Fetch.Retry.MaxAttempts)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("NATS_URL", &c.NATS.URL)
	str("NATS_SUBJECT", &c.NATS.Subject)
	return errors.Join(errs...)
}

// Validate enforces the invariants the services rely on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port must be set")
	}
	if c.Scrape.PageConcurrency <= 0 {
		return fmt.Errorf("scrape.page_concurrency must be > 0 (got %d)", c.Scrape.PageConcurrency)
	}
	if c.Scrape.DetailConcurrency <= 0 {
		return fmt.Errorf("scrape.detail_concurrency must be > 0 (got %d)", c.Scrape.DetailConcurrency)
	}
	if c.Fetch.Timeout.Duration <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0 (got %s)", c.Fetch.Timeout)
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch.max_body_bytes must be > 0 (got %d)", c.Fetch.MaxBodyBytes)
	}
	if c.Fetch.Retry.MaxAttempts < 1 {
		return fmt.Errorf("fetch.retry.max_attempts must be >= 1 (got %d)", c.Fetch.Retry.MaxAttempts)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return errors.New("nats.subject must be set when nats.url is set")
	}
	return nil
}

func (c *Config) normalise() {
	c.Sources.Riyasewana = strings.TrimSpace(c.Sources.Riyasewana)
	c.Sources.Ikman = strings.TrimSpace(c.Sources.Ikman)
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Fetch.Headers == nil {
		c.Fetch.Headers = map[string]string{}
	}
}

// BaseURLs returns the source URLs in aggregation order.
func (s SourcesConfig) BaseURLs() []string {
	return []string{s.Riyasewana, s.Ikman}
}

// RetryOpts converts the retry policy for the fetcher.
func (r RetryConfig) RetryOpts() fn.RetryOpts {
	return fn.RetryOpts{
		MaxAttempts: r.MaxAttempts,
		InitialWait: r.InitialWait.Duration,
		MaxWait:     r.MaxWait.Duration,
		Jitter:      r.Jitter,
	}
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the slog logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
