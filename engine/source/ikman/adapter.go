// Package ikman adapts ikman.lk search and ad pages. Both embed their data as
// JSON assigned to window.initialData in an inline script.
package ikman

import (
	"fmt"
	"time"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/coerce"
)

// RawListing is one search result as extracted, before normalization.
type RawListing struct {
	Ad
	IndividualURL string
}

// Detail is the raw payload of an ad detail page.
type Detail = DetailAd

// DefaultMaxPages bounds the page count a search page may announce.
const DefaultMaxPages = 500

// Adapter implements scrape.Adapter for ikman.
type Adapter struct {
	// MaxPages is the largest result set, in pages, a search may span. A
	// page announcing more is malformed. Zero means DefaultMaxPages.
	MaxPages int
}

var _ scrape.Adapter[RawListing, Detail] = Adapter{}

// New returns the ikman adapter.
func New() Adapter { return Adapter{MaxPages: DefaultMaxPages} }

func (a Adapter) maxPages() int {
	if a.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return a.MaxPages
}

func (Adapter) Source() vehicle.Source { return vehicle.SourceIkman }

func (Adapter) FirstPage(baseURL string) scrape.PageRef {
	return scrape.PageRef{ID: scrape.PageID(baseURL), URL: baseURL}
}

// ExtractListPage reads ads and pagination metadata from a search page. The
// plan covers every other page of the result set, built by rewriting the page
// parameter of the current URL.
func (a Adapter) ExtractListPage(doc *fetch.Document, page scrape.PageRef) (scrape.ListPage[RawListing], error) {
	data, err := initialDataOf(doc)
	if err != nil {
		return scrape.ListPage[RawListing]{}, err
	}
	ads := data.Serp.Ads.Data

	n := PageCount(ads.PaginationData)
	if n > a.maxPages() {
		return scrape.ListPage[RawListing]{}, &scrape.MalformedPageError{
			URL:    doc.URL,
			Reason: fmt.Sprintf("paginationData announces %d pages, limit is %d", n, a.maxPages()),
		}
	}

	lp := scrape.ListPage[RawListing]{Entries: make([]RawListing, 0, len(ads.Ads))}
	for _, ad := range ads.Ads {
		lp.Entries = append(lp.Entries, RawListing{Ad: ad, IndividualURL: individualURL(page.URL, ad.Slug.String())})
	}
	for p := 1; p <= n; p++ {
		if p == page.ID {
			continue
		}
		lp.Rest = append(lp.Rest, scrape.PageRef{ID: p, URL: scrape.WithPage(page.URL, p)})
	}
	return lp, nil
}

// PageCount is ceil(total/pageSize), or 1 when the metadata is missing or
// unusable.
func PageCount(p *Pagination) int {
	if p == nil || p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	n := p.Total / p.PageSize
	if p.Total%p.PageSize != 0 {
		n++
	}
	return n
}

// Normalize maps a search result onto a vehicle. The listing date is the
// fetch time minus the ad's relative age.
func (Adapter) Normalize(raw RawListing, pc scrape.PageContext) vehicle.Vehicle {
	desc := coerce.TextOrEmpty(raw.Description.String())
	return vehicle.Vehicle{
		Title:       coerce.TextOrEmpty(raw.Title.String()),
		Summary:     desc,
		Description: desc,
		Price:       vehicle.ParsePrice(coerce.TextOrEmpty(raw.Price.String())),
		Mileage:     coerce.PositiveOrAbsent(raw.Details.String()),
		Date:        coerce.Time(coerce.Before(pc.FetchedAt, coerce.SecondsAgo(raw.TimeStamp.String()))),
		Owner: vehicle.Owner{
			Company:  coerce.TextOrEmpty(raw.ShopName.String()),
			Location: coerce.TextOrEmpty(raw.Location.String()),
			Contacts: []vehicle.Contact{},
		},
		Meta: vehicle.Meta{
			Source:        vehicle.SourceIkman,
			SourceURL:     pc.Page.URL,
			Slug:          raw.Slug.String(),
			IndividualURL: raw.IndividualURL,
			ImageURL:      coerce.TextOrEmpty(raw.ImgURL.String()),
			PageID:        pc.Page.ID,
			Timestamp:     pc.FetchedAt.UTC(),
		},
	}
}

// ExtractDetail reads the ad payload of a detail page.
func (Adapter) ExtractDetail(doc *fetch.Document) (Detail, error) {
	data, err := initialDataOf(doc)
	if err != nil {
		return Detail{}, err
	}
	if data.AdDetail.Data.Ad == nil {
		return Detail{}, &scrape.MalformedPageError{URL: doc.URL, Reason: "no adDetail.data.ad", Err: scrape.ErrMissingPayload}
	}
	return *data.AdDetail.Data.Ad, nil
}

var adDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
