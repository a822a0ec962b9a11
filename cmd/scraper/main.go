// Command scraper runs one aggregated scrape of the configured listing sites
// and writes the result as JSON, as a terminal table, or to NATS.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/source"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/config"
	"github.com/WessleyAI/wessley-listings/pkg/natsutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "scraper:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	riyasewana string
	ikman      string
	ignore     bool
	format     string
	natsURL    string
	subject    string
	timeout    time.Duration
	set        map[string]bool // flags given explicitly
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", os.Getenv("LISTINGS_CONFIG"), "path to YAML config")
	fs.StringVar(&o.riyasewana, "riyasewana", "", "riyasewana base URL (empty string disables)")
	fs.StringVar(&o.ikman, "ikman", "", "ikman base URL (empty string disables)")
	fs.BoolVar(&o.ignore, "ignore-individuals", false, "skip detail page enrichment")
	fs.StringVar(&o.format, "format", "json", "output format: json or table")
	fs.StringVar(&o.natsURL, "nats", "", "NATS URL; when set the result is published instead of printed")
	fs.StringVar(&o.subject, "subject", "", "NATS subject (default from config)")
	fs.DurationVar(&o.timeout, "timeout", 0, "overall scrape timeout (0 = none)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.format != "json" && o.format != "table" {
		return o, fmt.Errorf("unknown format %q", o.format)
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply layers explicit flags over the loaded config.
func (o options) apply(cfg *config.Config) {
	if o.set["riyasewana"] {
		cfg.Sources.Riyasewana = o.riyasewana
	}
	if o.set["ikman"] {
		cfg.Sources.Ikman = o.ikman
	}
	if o.set["ignore-individuals"] {
		cfg.Scrape.IgnoreIndividuals = o.ignore
	}
	if o.natsURL != "" {
		cfg.NATS.URL = o.natsURL
	}
	if o.subject != "" {
		cfg.NATS.Subject = o.subject
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	o.apply(cfg)

	cfg.Log.Format = "text"
	logger := cfg.Log.NewLogger(stderr)

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	agg := source.NewAggregator(fetch.New(source.FetchOptions(cfg.Fetch)),
		source.ScrapeOptions(cfg.Scrape, logger, nil))

	start := time.Now()
	result, err := agg.Scrape(ctx, cfg.Sources.BaseURLs(), cfg.Scrape.IgnoreIndividuals)
	if err != nil {
		return err
	}
	logger.Info("scrape complete", "count", result.Count, "duration", time.Since(start))

	if cfg.NATS.URL != "" {
		return publish(ctx, cfg.NATS, result, logger)
	}
	if o.format == "table" {
		return writeTable(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func publish(ctx context.Context, cfg config.NATSConfig, result vehicle.ScrapeResult, logger *slog.Logger) error {
	nc, err := natsutil.Connect(cfg.URL, "wessley-listings-scraper", 5*time.Second)
	if err != nil {
		return err
	}
	defer nc.Close()

	if err := natsutil.Publish(ctx, nc, cfg.Subject, result); err != nil {
		return fmt.Errorf("publish %s: %w", cfg.Subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	logger.Info("published", "subject", cfg.Subject, "count", result.Count)
	return nil
}
