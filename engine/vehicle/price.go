package vehicle

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/WessleyAI/wessley-listings/pkg/coerce"
)

// Price is a listing price: a number when one could be extracted, otherwise
// the original text token (e.g. "Negotiable"). It marshals to a JSON number or
// string accordingly.
type Price struct {
	amount *int64
	text   string
}

// ParsePrice applies the number-or-text rule to a raw price token.
func ParsePrice(raw string) Price {
	n, text := coerce.NumberOrText(raw)
	return Price{amount: n, text: text}
}

// PriceAmount returns a numeric Price.
func PriceAmount(n int64) Price { return Price{amount: &n} }

// PriceText returns a textual Price.
func PriceText(s string) Price { return Price{text: s} }

// Amount returns the numeric value and whether the price is numeric.
func (p Price) Amount() (int64, bool) {
	if p.amount == nil {
		return 0, false
	}
	return *p.amount, true
}

// String renders the price as scraped.
func (p Price) String() string {
	if p.amount != nil {
		return strconv.FormatInt(*p.amount, 10)
	}
	return p.text
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.amount != nil {
		return strconv.AppendInt(nil, *p.amount, 10), nil
	}
	return json.Marshal(p.text)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PriceAmount(n)
	return nil
}
