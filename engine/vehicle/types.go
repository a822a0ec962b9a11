// Package vehicle defines the canonical vehicle record every source listing
// is normalized into, the per-source and aggregated result envelopes, and the
// validation gate that enforces the record invariants.
package vehicle

import "time"

// Source identifies the classifieds site a record came from.
type Source string

const (
	SourceRiyasewana Source = "riyasewana"
	SourceIkman      Source = "ikman"
)

// Vehicle is the canonical, source-independent listing record.
type Vehicle struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Price       Price      `json:"price"`
	Mileage     *int64     `json:"mileage"`
	Date        *time.Time `json:"date"`
	Owner       Owner      `json:"owner"`
	Extra       Extra      `json:"extra"`
	Meta        Meta       `json:"meta"`
}

// Owner describes the seller.
type Owner struct {
	Name     string    `json:"name,omitempty"`
	Company  string    `json:"company,omitempty"`
	Location string    `json:"location,omitempty"`
	Contacts []Contact `json:"contacts"`
}

// Contact is one phone number of the seller.
type Contact struct {
	Phone    int64 `json:"phone"`
	Verified bool  `json:"verified"`
}

// Extra holds structured vehicle attributes, mostly from detail pages.
type Extra struct {
	Make           string   `json:"make,omitempty"`
	Model          string   `json:"model,omitempty"`
	Edition        string   `json:"edition,omitempty"`
	Condition      string   `json:"condition,omitempty"`
	Transmission   string   `json:"transmission,omitempty"`
	FuelType       string   `json:"fuelType,omitempty"`
	Body           string   `json:"body,omitempty"`
	Year           *int64   `json:"year,omitempty"`
	EngineCapacity *int64   `json:"engineCapacity,omitempty"`
	Options        []string `json:"options,omitempty"`
}

// Meta records where and when a listing was scraped.
type Meta struct {
	Source        Source    `json:"source"`
	SourceURL     string    `json:"sourceURL"`
	Slug          string    `json:"slug,omitempty"`
	IndividualURL string    `json:"individualURL,omitempty"`
	ImageURL      string    `json:"imageURL,omitempty"`
	PageID        int       `json:"pageId"`
	Timestamp     time.Time `json:"timestamp"`
}

// Scraped is the result of scraping one source.
type Scraped struct {
	Source    Source    `json:"source"`
	BaseURL   string    `json:"baseURL"`
	Results   []Vehicle `json:"results"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewScraped builds a Scraped envelope whose Count matches its results.
func NewScraped(source Source, baseURL string, results []Vehicle, ts time.Time) Scraped {
	if results == nil {
		results = []Vehicle{}
	}
	return Scraped{
		Source:    source,
		BaseURL:   baseURL,
		Results:   results,
		Count:     len(results),
		Timestamp: ts.UTC(),
	}
}

// SourceTag names one source that contributed to a ScrapeResult.
type SourceTag struct {
	Source  Source `json:"source"`
	BaseURL string `json:"baseURL"`
	Count   int    `json:"count"`
}

// SourceFailure reports a source that failed while failure isolation was on.
type SourceFailure struct {
	Source  Source `json:"source"`
	BaseURL string `json:"baseURL"`
	Page    int    `json:"page,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error"`
}

// ScrapeResult is the aggregated output of one pipeline invocation.
type ScrapeResult struct {
	Results   []Vehicle       `json:"results"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
	Sources   []SourceTag     `json:"sources,omitempty"`
	Failures  []SourceFailure `json:"failures,omitempty"`
}

// Merge concatenates per-source results in the given order.
func Merge(ts time.Time, parts ...Scraped) ScrapeResult {
	out := ScrapeResult{Results: []Vehicle{}, Timestamp: ts.UTC()}
	for _, p := range parts {
		out.Results = append(out.Results, p.Results...)
		out.Count += p.Count
		out.Sources = append(out.Sources, SourceTag{Source: p.Source, BaseURL: p.BaseURL, Count: p.Count})
	}
	return out
}
