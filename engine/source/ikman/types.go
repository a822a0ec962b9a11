package ikman

import (
	"bytes"
	"encoding/json"
)

// initialData is the subset of window.initialData this adapter reads.
type initialData struct {
	Serp struct {
		Ads struct {
			Data struct {
				Ads            []Ad        `json:"ads"`
				PaginationData *Pagination `json:"paginationData"`
			} `json:"data"`
		} `json:"ads"`
	} `json:"serp"`
	AdDetail struct {
		Data struct {
			Ad *DetailAd `json:"ad"`
		} `json:"data"`
	} `json:"adDetail"`
}

// Ad is one entry of a search result page.
type Ad struct {
	Slug        text `json:"slug"`
	Title       text `json:"title"`
	Description text `json:"description"`
	Details     text `json:"details"`
	Price       text `json:"price"`
	ShopName    text `json:"shopName"`
	Location    text `json:"location"`
	ImgURL      text `json:"imgUrl"`
	TimeStamp   text `json:"timeStamp"`
}

// Pagination is the result-count metadata of a search page.
type Pagination struct {
	Total      int `json:"total"`
	PageSize   int `json:"pageSize"`
	ActivePage int `json:"activePage"`
}

// DetailAd is the ad payload of a detail page.
type DetailAd struct {
	Description text        `json:"description"`
	AdDate      text        `json:"adDate"`
	Properties  []Property  `json:"properties"`
	ContactCard ContactCard `json:"contactCard"`
	Location    *named      `json:"location"`
	Shop        *named      `json:"shop"`
}

// Property is one labelled attribute of a detail ad.
type Property struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    text   `json:"value"`
	ValueKey text   `json:"value_key"`
}

// ContactCard holds the seller's name and phone numbers.
type ContactCard struct {
	Name         text          `json:"name"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers"`
}

// PhoneNumber is one raw phone token and its verification flag.
type PhoneNumber struct {
	Number   text `json:"number"`
	Verified bool `json:"verified"`
}

type named struct {
	Name text `json:"name"`
}

// text decodes a JSON string, number or null into a string. The payload
// is not strict about scalar types.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = text(n.String())
	}
	return nil
}

func (t text) String() string { return string(t) }
