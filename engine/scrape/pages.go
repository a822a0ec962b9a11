package scrape

import (
	"net/url"
	"strconv"

	"github.com/WessleyAI/wessley-listings/pkg/fn"
)

// PageParam is the query parameter both sources paginate with.
const PageParam = "page"

// PageID returns the page query parameter of rawURL as a page number, or 1
// when it is missing or not a positive integer.
func PageID(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get(PageParam))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// WithPage returns rawURL with its page query parameter set to page. Other
// parameters are kept. An unparsable URL is returned unchanged.
func WithPage(rawURL string, page int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// LinkPlan builds a plan from discovered page links, keeping the first
// occurrence of each and skipping the current page.
func LinkPlan(current string, links []string) Plan {
	return fn.FilterMap(fn.Unique(links), func(l string) (PageRef, bool) {
		return PageRef{ID: PageID(l), URL: l}, l != "" && l != current
	})
}
