// Package riyasewana adapts riyasewana.com search and ad pages, which are
// server-rendered HTML.
package riyasewana

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/coerce"
)

// RawListing holds the cell texts of one li.item, before coercion.
type RawListing struct {
	IndividualURL string
	Summary       string
	Title         string
	ImageURL      string
	Location      string
	Price         string
	Mileage       string
	Date          string
}

// Field is one label/value pair of the detail table.
type Field struct {
	Label string
	Value string
}

// Detail is the raw payload of an ad page.
type Detail struct {
	Owner  string
	Date   string
	Place  string
	Fields []Field
}

// Colombo is the zone listing dates are published in.
var Colombo = time.FixedZone("+0530", 5*60*60+30*60)

var (
	listDateLayouts   = []string{"2006-01-02", "2 Jan, 2006", "2 January, 2006"}
	detailDateLayouts = []string{"2006-01-02 3:04 PM", "2006-01-02 15:04", "2006-01-02"}
	postedBy          = regexp.MustCompile(`Posted by (.*) on (.*), (.*)`)
)

// Adapter implements scrape.Adapter for riyasewana.
type Adapter struct {
	// Location is the zone dates without an offset are read in.
	// nil means Colombo.
	Location *time.Location
}

var _ scrape.Adapter[RawListing, Detail] = Adapter{}

// New returns the riyasewana adapter.
func New() Adapter { return Adapter{Location: Colombo} }

func (a Adapter) loc() *time.Location {
	if a.Location == nil {
		return Colombo
	}
	return a.Location
}

func (Adapter) Source() vehicle.Source { return vehicle.SourceRiyasewana }

// FirstPage always numbers the base URL page 1, whatever its query says.
func (Adapter) FirstPage(baseURL string) scrape.PageRef {
	return scrape.PageRef{ID: 1, URL: baseURL}
}

// ExtractListPage reads every li.item of a search page. Pagination links are
// collected in document order with duplicates removed; a page with no items
// is an empty page, not an error.
func (Adapter) ExtractListPage(doc *fetch.Document, page scrape.PageRef) (scrape.ListPage[RawListing], error) {
	lp := scrape.ListPage[RawListing]{Entries: []RawListing{}}
	doc.Doc.Find("li.item").Each(func(_ int, li *goquery.Selection) {
		href, _ := li.Find("a").First().Attr("href")
		src, _ := li.Find("img").First().Attr("src")
		cells := li.Find("div.boxtext div.boxintxt")
		lp.Entries = append(lp.Entries, RawListing{
			IndividualURL: doc.Resolve(href),
			Summary:       coerce.TextOrEmpty(coerce.StripControlChars(li.Text())),
			Title:         coerce.TextOrEmpty(li.Find("h2.more a").Text()),
			ImageURL:      doc.Resolve(src),
			Location:      coerce.TextOrEmpty(cells.First().Text()),
			Price:         coerce.TextOrEmpty(li.Find("div.boxtext div.boxintxt.b").Text()),
			Mileage:       coerce.TextOrEmpty(cells.Eq(2).Text()),
			Date:          coerce.TextOrEmpty(li.Find("div.boxtext div.boxintxt.s").Text()),
		})
	})

	var links []string
	doc.Doc.Find("div.pagination a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, doc.Resolve(href))
		}
	})
	lp.Rest = scrape.LinkPlan(page.URL, links)
	return lp, nil
}

func (a Adapter) Normalize(raw RawListing, pc scrape.PageContext) vehicle.Vehicle {
	return vehicle.Vehicle{
		Title:   raw.Title,
		Summary: raw.Summary,
		Price:   vehicle.ParsePrice(raw.Price),
		Mileage: coerce.PositiveOrAbsent(raw.Mileage),
		Date:    coerce.ParseDate(raw.Date, a.loc(), listDateLayouts...),
		Owner: vehicle.Owner{
			Location: raw.Location,
			Contacts: []vehicle.Contact{},
		},
		Meta: vehicle.Meta{
			Source:        vehicle.SourceRiyasewana,
			SourceURL:     pc.Page.URL,
			IndividualURL: raw.IndividualURL,
			ImageURL:      raw.ImageURL,
			PageID:        pc.Page.ID,
			Timestamp:     pc.FetchedAt.UTC(),
		},
	}
}

// ExtractDetail reads the "Posted by" subtitle and the table.moret rows.
// Each row carries up to two label/value pairs.
func (Adapter) ExtractDetail(doc *fetch.Document) (Detail, error) {
	var d Detail
	matched := false
	doc.Doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		m := postedBy.FindStringSubmatch(coerce.TextOrEmpty(h.Text()))
		if m == nil {
			return true
		}
		d.Owner = coerce.TextOrEmpty(m[1])
		d.Date = coerce.TextOrEmpty(m[2])
		d.Place = coerce.TextOrEmpty(m[3])
		matched = true
		return false
	})

	table := doc.Doc.Find("table.moret")
	if !matched && table.Length() == 0 {
		return d, &scrape.MalformedPageError{URL: doc.URL, Reason: "no subtitle or details table", Err: scrape.ErrMissingPayload}
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		for i := 0; i+1 < cells.Length() && i < 4; i += 2 {
			label := coerce.TextOrEmpty(cells.Eq(i).Text())
			if label == "" {
				continue
			}
			d.Fields = append(d.Fields, Field{Label: label, Value: coerce.TextOrEmpty(cells.Eq(i + 1).Text())})
		}
	})
	return d, nil
}

// Merge folds an ad page into v. The table's fields are applied through
// DetailLabels; contacts are replaced by the Contact field, if any.
func (a Adapter) Merge(v *vehicle.Vehicle, d Detail) {
	if d.Owner != "" {
		v.Owner.Name = d.Owner
	}
	if date := coerce.ParseDate(strings.ToUpper(d.Date), a.loc(), detailDateLayouts...); date != nil {
		v.Date = date
	}
	if v.Owner.Location == "" && d.Place != "" {
		v.Owner.Location = d.Place
	}

	v.Owner.Contacts = []vehicle.Contact{}
	for _, f := range d.Fields {
		if set, ok := DetailLabels[f.Label]; ok {
			set(v, f.Value)
		}
	}
}
