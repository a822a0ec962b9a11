package riyasewana

import (
	"strings"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/coerce"
)

// Setter applies one detail table value to a vehicle.
type Setter func(v *vehicle.Vehicle, value string)

// DetailLabels is the set of detail table labels that are understood,
// matched exactly. Rows with any other label are ignored.
var DetailLabels = map[string]Setter{
	"Contact":      setContact,
	"Make":         text(func(v *vehicle.Vehicle) *string { return &v.Extra.Make }),
	"Model":        text(func(v *vehicle.Vehicle) *string { return &v.Extra.Model }),
	"YOM":          number(func(v *vehicle.Vehicle) **int64 { return &v.Extra.Year }),
	"Mileage (km)": number(func(v *vehicle.Vehicle) **int64 { return &v.Mileage }),
	"Gear":         text(func(v *vehicle.Vehicle) *string { return &v.Extra.Transmission }),
	"Fuel Type":    text(func(v *vehicle.Vehicle) *string { return &v.Extra.FuelType }),
	"Engine (cc)":  number(func(v *vehicle.Vehicle) **int64 { return &v.Extra.EngineCapacity }),
	"Options":      setOptions,
	"Price":        setPrice,
	"Details":      text(func(v *vehicle.Vehicle) *string { return &v.Description }),
}

func text(field func(*vehicle.Vehicle) *string) Setter {
	return func(v *vehicle.Vehicle, value string) {
		if value != "" {
			*field(v) = value
		}
	}
}

func number(field func(*vehicle.Vehicle) **int64) Setter {
	return func(v *vehicle.Vehicle, value string) {
		if n := coerce.PositiveOrAbsent(value); n != nil {
			*field(v) = n
		}
	}
}

// Contacts listed on the site are shown as verified.
func setContact(v *vehicle.Vehicle, value string) {
	if phone := coerce.PositiveOrAbsent(value); phone != nil {
		v.Owner.Contacts = append(v.Owner.Contacts, vehicle.Contact{Phone: *phone, Verified: true})
	}
}

func setOptions(v *vehicle.Vehicle, value string) {
	var opts []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	v.Extra.Options = opts
}

func setPrice(v *vehicle.Vehicle, value string) {
	if value != "" {
		v.Price = vehicle.ParsePrice(value)
	}
}
