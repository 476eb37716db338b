// Package catalog holds the static deposit product table the bank offers.
// The assistant quotes these rates before proposing an open, and the
// dashboard lists them in the open-deposit form.
package catalog

import "strings"

// Product is one deposit offer. Rate is the advertised annual percentage —
// display only, no accrual is simulated anywhere.
type Product struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// Catalog is the full product table.
var Catalog = []Product{
	{Name: "Мечта", Rate: 15},
	{Name: "Лучший", Rate: 16},
	{Name: "Старт", Rate: 13},
	{Name: "Премиум", Rate: 17},
	{Name: "Надёжный", Rate: 14},
	{Name: "Семейный", Rate: 12},
	{Name: "Пенсионный", Rate: 11},
	{Name: "Максимум", Rate: 18},
}

// Lookup finds a product by name, case-insensitively.
// Returns nil when no product matches.
func Lookup(name string) *Product {
	for i := range Catalog {
		if strings.EqualFold(Catalog[i].Name, name) {
			return &Catalog[i]
		}
	}
	return nil
}

// BestRate returns the product with the highest advertised rate.
func BestRate() Product {
	best := Catalog[0]
	for _, p := range Catalog[1:] {
		if p.Rate > best.Rate {
			best = p
		}
	}
	return best
}
