package ikman

import (
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/coerce"
	"github.com/WessleyAI/wessley-listings/pkg/fn"
)

// propertySetters maps detail property keys to the vehicle field they fill.
// Keys not listed are ignored.
var propertySetters = map[string]func(v *vehicle.Vehicle, p Property){
	"brand":           func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Make, p.Value) },
	"make":            func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Make, p.Value) },
	"model":           func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Model, p.Value) },
	"edition":         func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Edition, p.Value) },
	"condition":       func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Condition, p.Value) },
	"transmission":    func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Transmission, p.Value) },
	"body":            func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.Body, p.Value) },
	"fuel_type":       func(v *vehicle.Vehicle, p Property) { setText(&v.Extra.FuelType, p.Value) },
	"model_year":      func(v *vehicle.Vehicle, p Property) { setNumber(&v.Extra.Year, p.Value) },
	"engine_capacity": func(v *vehicle.Vehicle, p Property) { setNumber(&v.Extra.EngineCapacity, p.Value) },
	"mileage":         func(v *vehicle.Vehicle, p Property) { setNumber(&v.Mileage, p.Value) },
}

func setText(dst *string, t text) {
	if s := coerce.TextOrEmpty(t.String()); s != "" {
		*dst = s
	}
}

func setNumber(dst **int64, t text) {
	if n := coerce.PositiveOrAbsent(t.String()); n != nil {
		*dst = n
	}
}

// Merge folds a detail payload into v. Description, date and owner fields
// are overridden when the detail carries them; contacts are replaced.
func (Adapter) Merge(v *vehicle.Vehicle, d Detail) {
	setText(&v.Description, d.Description)
	if date := coerce.ParseDate(d.AdDate.String(), nil, adDateLayouts...); date != nil {
		v.Date = date
	}

	v.Owner.Contacts = Contacts(d.ContactCard)
	setText(&v.Owner.Name, d.ContactCard.Name)
	if d.Location != nil {
		setText(&v.Owner.Location, d.Location.Name)
	}
	if d.Shop != nil {
		setText(&v.Owner.Company, d.Shop.Name)
	}

	for _, p := range d.Properties {
		if set, ok := propertySetters[p.Key]; ok {
			set(v, p)
		}
	}
}

// Contacts keeps the phone numbers that coerce to a positive number. The
// result is never nil.
func Contacts(card ContactCard) []vehicle.Contact {
	contacts := fn.FilterMap(card.PhoneNumbers, func(pn PhoneNumber) (vehicle.Contact, bool) {
		phone := coerce.PositiveOrAbsent(pn.Number.String())
		if phone == nil {
			return vehicle.Contact{}, false
		}
		return vehicle.Contact{Phone: *phone, Verified: pn.Verified}, true
	})
	if contacts == nil {
		contacts = []vehicle.Contact{}
	}
	return contacts
}
