package ikman

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
)

var initialDataAssign = regexp.MustCompile(`window\.initialData\s*=`)

// initialDataOf scans the inline scripts for an assignment to
// window.initialData and decodes the JSON object assigned. Scripts that only
// mention it, or whose payload does not decode, are skipped. Trailing script
// content after the object is ignored.
func initialDataOf(doc *fetch.Document) (initialData, error) {
	var (
		data    initialData
		lastErr error
	)
	found := false
	doc.Doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		for _, loc := range initialDataAssign.FindAllStringIndex(body, -1) {
			var d initialData
			if err := json.NewDecoder(strings.NewReader(body[loc[1]:])).Decode(&d); err != nil {
				lastErr = err
				continue
			}
			data, found = d, true
			return false
		}
		return true
	})
	if found {
		return data, nil
	}
	if lastErr != nil {
		return data, &scrape.MalformedPageError{URL: doc.URL, Reason: "decode window.initialData", Err: lastErr}
	}
	return data, &scrape.MalformedPageError{URL: doc.URL, Reason: "no window.initialData script", Err: scrape.ErrMissingPayload}
}

// individualURL builds the detail page URL of slug on the host of pageURL.
func individualURL(pageURL, slug string) string {
	if slug == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/en/ad/" + url.PathEscape(slug)
}
