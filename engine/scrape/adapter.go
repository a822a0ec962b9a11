// Package scrape drives per-source list traversal, detail enrichment and
// multi-source aggregation. Source-specific parsing lives behind Adapter;
// everything here is source-agnostic.
package scrape

import (
	"context"
	"time"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
)

// PageRef identifies one list page of a source.
type PageRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Plan is the ordered set of list pages to visit after the first.
type Plan []PageRef

// ListPage is what an adapter extracts from one list page.
type ListPage[R any] struct {
	Entries []R
	// Rest is only consulted on the first page.
	Rest Plan
}

// PageContext is handed to Normalize for every entry of a list page.
type PageContext struct {
	Page      PageRef
	BaseURL   string
	FetchedAt time.Time
}

// Adapter converts one source's documents into canonical vehicles. R is the
// raw list entry and D the raw detail payload; neither leaves the adapter
// untyped.
type Adapter[R, D any] interface {
	Source() vehicle.Source
	// FirstPage returns the page reference of the base URL.
	FirstPage(baseURL string) PageRef
	ExtractListPage(doc *fetch.Document, page PageRef) (ListPage[R], error)
	Normalize(raw R, pc PageContext) vehicle.Vehicle
	ExtractDetail(doc *fetch.Document) (D, error)
	// Merge folds a detail payload into a vehicle built by Normalize.
	Merge(v *vehicle.Vehicle, detail D)
}

// Runner scrapes one source end to end.
type Runner interface {
	Source() vehicle.Source
	Scrape(ctx context.Context, baseURL string, ignoreIndividuals bool) (vehicle.Scraped, error)
}
