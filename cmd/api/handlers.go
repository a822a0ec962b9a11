package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/source"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/metrics"
	"github.com/WessleyAI/wessley-listings/pkg/mid"
)

// scraper is the slice of scrape.Aggregator the API needs.
type scraper interface {
	Scrape(ctx context.Context, baseURLs []string, ignoreIndividuals bool) (vehicle.ScrapeResult, error)
}

type server struct {
	scraper  scraper
	fetcher  fetch.Fetcher
	defaults []string // base URLs in source.Order
	ignore   bool
	logger   *slog.Logger
	inFlight *metrics.Gauge
}

// errorBody is the JSON error envelope. Source, Page and URL are set when the
// failure is attributable to one list page.
type errorBody struct {
	Error  string         `json:"error"`
	Source vehicle.Source `json:"source,omitempty"`
	Page   int            `json:"page,omitempty"`
	URL    string         `json:"url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scrapeParams reads per-source base URLs and ignoreIndividuals from the
// query. A source parameter that is present but empty disables that source;
// an absent one falls back to the configured default.
func (s *server) scrapeParams(q url.Values) ([]string, bool, error) {
	urls := make([]string, len(source.Order))
	for i, src := range source.Order {
		switch {
		case q.Has(string(src)):
			urls[i] = q.Get(string(src))
		case i < len(s.defaults):
			urls[i] = s.defaults[i]
		}
		if urls[i] != "" && !isHTTPURL(urls[i]) {
			return nil, false, errors.New(string(src) + " must be an absolute http(s) URL")
		}
	}

	ignore := s.ignore
	if v := q.Get("ignoreIndividuals"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, false, errors.New("ignoreIndividuals must be a boolean")
		}
		ignore = b
	}
	return urls, ignore, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *server) handleScrape(w http.ResponseWriter, r *http.Request) {
	urls, ignore, err := s.scrapeParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.inFlight != nil {
		s.inFlight.Inc()
		defer s.inFlight.Dec()
	}
	result, err := s.scraper.Scrape(r.Context(), urls, ignore)
	if err != nil {
		status, body := scrapeFailure(err)
		s.logger.Error("scrape failed",
			"err", err,
			"status", status,
			"request_id", mid.RequestIDFrom(r.Context()),
		)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// scrapeFailure maps a pipeline error onto an HTTP status and error body.
func scrapeFailure(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}
	var se *scrape.SourceScrapeError
	if errors.As(err, &se) {
		body.Source, body.Page, body.URL = se.Source, se.Page, se.URL
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	case errors.Is(err, scrape.ErrTooManyURLs):
		return http.StatusBadRequest, body
	case errors.Is(err, scrape.ErrNoSources):
		return http.StatusInternalServerError, body
	default:
		return http.StatusBadGateway, body
	}
}

type linksResponse struct {
	Links []fetch.Link `json:"links"`
}

// handleLinks fetches one page and lists every anchor on it.
func (s *server) handleLinks(w http.ResponseWriter, r *http.Request) {
	baseURL := r.URL.Query().Get("baseURL")
	if baseURL == "" {
		writeError(w, http.StatusBadRequest, "baseURL is required")
		return
	}
	if !isHTTPURL(baseURL) {
		writeError(w, http.StatusBadRequest, "baseURL must be an absolute http(s) URL")
		return
	}

	doc, err := s.fetcher.Fetch(r.Context(), baseURL)
	if err != nil {
		s.logger.Error("links fetch failed", "err", err, "url", baseURL)
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, errorBody{Error: err.Error(), URL: baseURL})
		return
	}
	writeJSON(w, http.StatusOK, linksResponse{Links: doc.Links()})
}
