package fetch

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Document is a fetched, parsed HTML page.
type Document struct {
	URL        string
	StatusCode int
	FetchedAt  time.Time
	Doc        *goquery.Document
}

// Resolve makes ref absolute against the document URL. Protocol-relative
// refs ("//host/path") pick up the document's scheme. An unparsable ref is
// returned trimmed but otherwise untouched.
func (d *Document) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(d.URL)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// Link is one anchor on a page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Links returns every anchor with an href, resolved against the document URL,
// in document order.
func (d *Document) Links() []Link {
	links := []Link{}
	d.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{Href: d.Resolve(href), Text: strings.TrimSpace(s.Text())})
	})
	return links
}

// NewDocument parses html as if it had been fetched from pageURL at fetchedAt.
// Tests and offline tooling use it to feed adapters without a network.
func NewDocument(pageURL, html string, fetchedAt time.Time) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Document{URL: pageURL, StatusCode: 200, FetchedAt: fetchedAt.UTC(), Doc: doc}, nil
}
