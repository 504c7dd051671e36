// Package cart holds the quantity-keyed line items of the active order and
// prices them for checkout. Operations return new slices and never mutate
// their input.
package cart

import (
	"github.com/saadjs/fitfuel/internal/model"
)

// TaxRate is the flat surcharge applied at checkout.
const TaxRate = 0.05

// Item is a purchasable product as presented by a menu.
type Item struct {
	ID    string
	Name  string
	Price float64
}

// Source identifies where an item is bought from, used to group receipts.
type Source struct {
	ID   string
	Name string
}

// Add increments the quantity of an existing line or appends a new line with
// quantity 1 stamped with the source.
func Add(c []model.CartItem, item Item, src Source) []model.CartItem {
	out := clone(c)
	for i := range out {
		if out[i].ID == item.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, model.CartItem{
		ID:             item.ID,
		Name:           item.Name,
		Price:          item.Price,
		Quantity:       1,
		RestaurantID:   src.ID,
		RestaurantName: src.Name,
	})
}

// Remove deletes the line regardless of its quantity.
func Remove(c []model.CartItem, id string) []model.CartItem {
	out := make([]model.CartItem, 0, len(c))
	for _, it := range c {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// UpdateQuantity applies delta when the result stays above zero and otherwise
// leaves the line untouched. It never deletes; use Step or Remove for that.
func UpdateQuantity(c []model.CartItem, id string, delta int) []model.CartItem {
	out := clone(c)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if next := out[i].Quantity + delta; next > 0 {
			out[i].Quantity = next
		}
	}
	return out
}

// Step is UpdateQuantity with the decrement-to-zero branch folded in: a line
// whose quantity would drop to zero or below is removed.
func Step(c []model.CartItem, id string, delta int) []model.CartItem {
	for _, it := range c {
		if it.ID == id && it.Quantity+delta <= 0 {
			return Remove(c, id)
		}
	}
	return UpdateQuantity(c, id, delta)
}

func Clear() []model.CartItem {
	return []model.CartItem{}
}

func Total(c []model.CartItem) float64 {
	total := 0.0
	for _, it := range c {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func CheckoutTotal(cartTotal float64) float64 {
	return cartTotal * (1 + TaxRate)
}

// Count is the number of units across all lines.
func Count(c []model.CartItem) int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Units    int     `json:"units"`
}

func Price(c []model.CartItem) Breakdown {
	subtotal := Total(c)
	total := CheckoutTotal(subtotal)
	return Breakdown{
		Subtotal: subtotal,
		Tax:      total - subtotal,
		Total:    total,
		Units:    Count(c),
	}
}

// Restaurants returns the distinct sources in first-seen order.
func Restaurants(c []model.CartItem) []Source {
	seen := map[string]bool{}
	out := make([]Source, 0)
	for _, it := range c {
		if seen[it.RestaurantID] {
			continue
		}
		seen[it.RestaurantID] = true
		out = append(out, Source{ID: it.RestaurantID, Name: it.RestaurantName})
	}
	return out
}

func clone(c []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, len(c), len(c)+1)
	copy(out, c)
	return out
}
