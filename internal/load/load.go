// Package load sums connected appliance load.
package load

import (
	"github.com/bher20/solarquote/internal/numeric"
	"github.com/bher20/solarquote/pkg/appliances"
)

// ApplianceSelection is the user's choice for one catalog category.
type ApplianceSelection struct {
	Category string      `json:"category"`
	Option   string      `json:"selectedOption"`
	Quantity numeric.Int `json:"quantity"`
}

// AdditionalAppliance is a free-form entry whose unit wattage is user-edited.
type AdditionalAppliance struct {
	Name     string      `json:"name"`
	Watts    numeric.Int `json:"watts"`
	Quantity numeric.Int `json:"quantity"`
}

// LineItem is a resolved entry. TotalWatts is always Watts * Quantity,
// saturating rather than wrapping.
type LineItem struct {
	Category   string `json:"category,omitempty"`
	Name       string `json:"name"`
	Watts      int    `json:"watts"`
	Quantity   int    `json:"quantity"`
	TotalWatts int    `json:"totalWatts"`
}

func newLineItem(category, name string, watts, qty int) LineItem {
	if watts < 0 {
		watts = 0
	}
	if qty < 0 {
		qty = 0
	}
	return LineItem{
		Category:   category,
		Name:       name,
		Watts:      watts,
		Quantity:   qty,
		TotalWatts: numeric.MulSat(watts, qty),
	}
}

// Summary is the aggregate connected load.
type Summary struct {
	TotalWatts int        `json:"totalWatts"`
	TotalKW    float64    `json:"totalKW"`
	Items      []LineItem `json:"items,omitempty"`
}

// Resolve looks up the selection's unit wattage in cat.
func (s ApplianceSelection) Resolve(cat *appliances.Catalog) LineItem {
	return newLineItem(s.Category, s.Option, cat.Lookup(s.Category, s.Option), s.Quantity.Or(0))
}

// Resolve applies the coercion rules to a free-form entry.
func (a AdditionalAppliance) Resolve() LineItem {
	return newLineItem("", a.Name, a.Watts.Or(0), a.Quantity.Or(0))
}

// ComputeSummary sums unit wattage times quantity over every selection and
// extra. Unknown options contribute 0W. It never fails and does not retain
// its arguments.
func ComputeSummary(cat *appliances.Catalog, selections []ApplianceSelection, extras []AdditionalAppliance) Summary {
	items := make([]LineItem, 0, len(selections)+len(extras))
	for _, s := range selections {
		items = append(items, s.Resolve(cat))
	}
	for _, a := range extras {
		items = append(items, a.Resolve())
	}

	var total int
	for _, it := range items {
		total = numeric.AddSat(total, it.TotalWatts)
	}
	return Summary{
		TotalWatts: total,
		TotalKW:    float64(total) / 1000,
		Items:      items,
	}
}
