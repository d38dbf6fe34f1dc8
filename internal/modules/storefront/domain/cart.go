package domain

import "math"

// TaxRate is the GST rate applied to the cart subtotal.
const TaxRate = 0.18

// CartItem is a product held in the shopper's cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price multiplied by quantity.
func (i CartItem) LineTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// CartSnapshot is the cart as seen by an event at emission time. It is never cached.
type CartSnapshot struct {
	CartID     string          `json:"cartID"`
	TotalItems int             `json:"totalItems"`
	Subtotal   int64           `json:"subtotal"`
	Tax        int64           `json:"tax"`
	Total      int64           `json:"total"`
	Currency   string          `json:"currency"`
	Products   []ProductRecord `json:"products"`
}

// Tax returns round(subtotal * TaxRate).
func Tax(subtotal int64) int64 {
	return int64(math.Round(float64(subtotal) * TaxRate))
}

// Subtotal sums the line totals of items.
func Subtotal(items []CartItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.LineTotal()
	}
	return sum
}
