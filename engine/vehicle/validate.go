package vehicle

import (
	"strconv"
	"strings"
)

// Validate checks the record invariants every normalized vehicle must hold.
func Validate(v Vehicle) error {
	if strings.TrimSpace(string(v.Meta.Source)) == "" {
		return NewValidationError("meta.source", string(v.Meta.Source), ErrMissingSource)
	}
	if strings.TrimSpace(v.Meta.SourceURL) == "" {
		return NewValidationError("meta.sourceURL", v.Meta.SourceURL, ErrMissingURL)
	}
	if v.Meta.PageID < 1 {
		return NewValidationError("meta.pageId", strconv.Itoa(v.Meta.PageID), ErrBadPageID)
	}

	for _, f := range []struct {
		name string
		n    *int64
	}{
		{"mileage", v.Mileage},
		{"extra.year", v.Extra.Year},
		{"extra.engineCapacity", v.Extra.EngineCapacity},
	} {
		if f.n != nil && *f.n <= 0 {
			return NewValidationError(f.name, strconv.FormatInt(*f.n, 10), ErrNonPositive)
		}
	}

	for _, c := range v.Owner.Contacts {
		if c.Phone <= 0 {
			return NewValidationError("owner.contacts", strconv.FormatInt(c.Phone, 10), ErrInvalidContact)
		}
	}
	return nil
}

// ValidateScraped checks a source envelope and each result in it.
func ValidateScraped(s Scraped) error {
	if s.Source == "" {
		return NewValidationError("source", "", ErrMissingSource)
	}
	if s.Count != len(s.Results) {
		return NewValidationError("count", strconv.Itoa(s.Count), ErrCountMismatch)
	}
	for _, v := range s.Results {
		if err := Validate(v); err != nil {
			return err
		}
	}
	return nil
}
