package scrape

import (
	"errors"
	"fmt"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
)

var (
	// ErrNoSources is returned by an Aggregator with no runners.
	ErrNoSources = errors.New("scrape: no sources configured")
	// ErrTooManyURLs is returned when more base URLs than sources are given.
	ErrTooManyURLs = errors.New("scrape: more base URLs than sources")
	// ErrMissingPayload marks a page without the expected embedded data.
	ErrMissingPayload = errors.New("embedded payload not found")
)

// MalformedPageError reports a document that lacks the structure an adapter
// expects.
type MalformedPageError struct {
	URL    string
	Reason string
	Err    error
}

func (e *MalformedPageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed page %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed page %s: %s", e.URL, e.Reason)
}

func (e *MalformedPageError) Unwrap() error { return e.Err }

// EnrichmentError reports a failed detail page fetch or extraction.
type EnrichmentError struct {
	ListingURL string
	Err        error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s: %v", e.ListingURL, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// SourceScrapeError aborts one source. Page and URL identify the list page
// being processed when the failure happened.
type SourceScrapeError struct {
	Source vehicle.Source
	Page   int
	URL    string
	Err    error
}

func (e *SourceScrapeError) Error() string {
	return fmt.Sprintf("scrape %s page %d (%s): %v", e.Source, e.Page, e.URL, e.Err)
}

func (e *SourceScrapeError) Unwrap() error { return e.Err }

// Failure describes err as a SourceFailure for source.
func Failure(source vehicle.Source, baseURL string, err error) vehicle.SourceFailure {
	f := vehicle.SourceFailure{Source: source, BaseURL: baseURL, Error: err.Error()}
	var se *SourceScrapeError
	if errors.As(err, &se) {
		f.Page = se.Page
		f.URL = se.URL
	}
	return f
}
