package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/config"
	"github.com/WessleyAI/wessley-listings/pkg/metrics"
	"github.com/WessleyAI/wessley-listings/pkg/mid"
)

type fakeScraper struct {
	urls   []string
	ignore bool
	result vehicle.ScrapeResult
	err    error
}

func (f *fakeScraper) Scrape(_ context.Context, urls []string, ignore bool) (vehicle.ScrapeResult, error) {
	f.urls, f.ignore = urls, ignore
	return f.result, f.err
}

func testServer(sc scraper) (*server, http.Handler, *metrics.Registry) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := metrics.New()
	api := &server{
		scraper:  sc,
		fetcher:  fetch.New(fetch.Options{}),
		defaults: []string{"https://riyasewana.com/search/cars", "https://ikman.lk/en/ads/sri-lanka/cars"},
		logger:   logger,
		inFlight: reg.Gauge("scrape_in_flight", ""),
	}
	cfg := config.Default().Server
	return api, newHandler(api, reg, cfg, logger), reg
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, h, _ := testServer(&fakeScraper{})
	rec := get(t, h, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
	if rec.Header().Get(mid.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestScrapeUsesDefaults(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fs := &fakeScraper{result: vehicle.Merge(ts,
		vehicle.NewScraped(vehicle.SourceRiyasewana, "r", []vehicle.Vehicle{{Title: "Alto"}}, ts),
		vehicle.NewScraped(vehicle.SourceIkman, "i", []vehicle.Vehicle{{Title: "Aqua"}, {Title: "Fit"}}, ts),
	)}
	_, h, _ := testServer(fs)

	rec := get(t, h, "/api/scrape")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if len(fs.urls) != 2 || fs.urls[0] != "https://riyasewana.com/search/cars" || fs.urls[1] != "https://ikman.lk/en/ads/sri-lanka/cars" {
		t.Fatalf("unexpected urls: %v", fs.urls)
	}
	if fs.ignore {
		t.Fatal("ignoreIndividuals should default to false")
	}

	var got vehicle.ScrapeResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 3 || got.Results[0].Title != "Alto" || got.Results[2].Title != "Fit" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestScrapeQueryOverrides(t *testing.T) {
	fs := &fakeScraper{}
	_, h, _ := testServer(fs)

	rec := get(t, h, "/api/scrape?riyasewana=&ikman=https://ikman.lk/en/ads/colombo/cars&ignoreIndividuals=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fs.urls[0] != "" || fs.urls[1] != "https://ikman.lk/en/ads/colombo/cars" || !fs.ignore {
		t.Fatalf("unexpected params: %v %v", fs.urls, fs.ignore)
	}
}

func TestScrapeBadParams(t *testing.T) {
	_, h, _ := testServer(&fakeScraper{})
	for _, q := range []string{"ignoreIndividuals=maybe", "ikman=ftp://x", "riyasewana=/relative"} {
		if rec := get(t, h, "/api/scrape?"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestScrapeFailureBody(t *testing.T) {
	err := &scrape.SourceScrapeError{
		Source: vehicle.SourceIkman,
		Page:   2,
		URL:    "https://ikman.lk/en/ads?page=2",
		Err:    &fetch.FetchError{URL: "https://ikman.lk/en/ads?page=2", StatusCode: 503, Err: fetch.ErrStatus},
	}
	_, h, reg := testServer(&fakeScraper{err: err})

	rec := get(t, h, "/api/scrape")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Source != vehicle.SourceIkman || body.Page != 2 || body.URL != "https://ikman.lk/en/ads?page=2" || body.Error == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if !strings.Contains(reg.Render(), `http_requests_total{path="/api/scrape",status="502"} 1`) {
		t.Fatalf("request not counted:\n%s", reg.Render())
	}
}

func TestScrapeFailureStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{scrape.ErrTooManyURLs, http.StatusBadRequest},
		{scrape.ErrNoSources, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got, _ := scrapeFailure(tt.err); got != tt.want {
			t.Errorf("scrapeFailure(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestScrapeNeverMasksFailure(t *testing.T) {
	_, h, _ := testServer(&fakeScraper{err: errors.New("boom"), result: vehicle.ScrapeResult{Count: 0}})
	rec := get(t, h, "/api/scrape")
	if rec.Code == http.StatusOK {
		t.Fatal("failure must not be reported as success")
	}
	if strings.Contains(rec.Body.String(), `"results"`) {
		t.Fatalf("error body should not carry results: %s", rec.Body)
	}
}

func TestLinks(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/buy/a">Alto</a><a href="https://example.com/x"> X </a><a>none</a></body></html>`)
	}))
	defer site.Close()
	_, h, _ := testServer(&fakeScraper{})

	rec := get(t, h, "/api/links?baseURL="+site.URL+"/search")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var got linksResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Links) != 2 {
		t.Fatalf("expected 2 links, got %+v", got.Links)
	}
	if got.Links[0].Href != site.URL+"/buy/a" || got.Links[0].Text != "Alto" {
		t.Fatalf("unexpected first link: %+v", got.Links[0])
	}
}

func TestLinksErrors(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer site.Close()
	_, h, _ := testServer(&fakeScraper{})

	if rec := get(t, h, "/api/links"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing baseURL: expected 400, got %d", rec.Code)
	}
	if rec := get(t, h, "/api/links?baseURL=not-a-url"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad baseURL: expected 400, got %d", rec.Code)
	}
	if rec := get(t, h, "/api/links?baseURL="+site.URL); rec.Code != http.StatusBadGateway {
		t.Fatalf("upstream 404: expected 502, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h, _ := testServer(&fakeScraper{})
	get(t, h, "/api/scrape")

	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "scrape_in_flight 0") {
		t.Fatalf("missing in-flight gauge:\n%s", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, h, _ := testServer(&fakeScraper{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scrape", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
