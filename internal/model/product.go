package model

import "fmt"

// Product is a catalogue entry
type Product struct {
	ID            int64   `json:"id,omitempty"`
	ProductID     int64   `json:"productId,omitempty"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	FinalPrice    float64 `json:"finalPrice,omitempty"`
	Discount      float64 `json:"discount,omitempty"`
	StockQuantity int     `json:"stockQuantity"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Active        bool    `json:"active"`
}

// Key returns the identifier the API uses for cart operations. Catalogue
// listings and cart lines disagree on which field carries it.
func (p Product) Key() int64 {
	if p.ProductID != 0 {
		return p.ProductID
	}
	return p.ID
}

// UnitPrice is what one unit costs after discount
func (p Product) UnitPrice() float64 {
	if p.FinalPrice > 0 {
		return p.FinalPrice
	}
	return p.Price
}

// HasDiscount reports whether a discount applies
func (p Product) HasDiscount() bool {
	return p.Discount > 0 && p.FinalPrice > 0 && p.FinalPrice < p.Price
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// Pages returns TotalPages, never less than one
func (p Page[T]) Pages() int {
	if p.TotalPages < 1 {
		return 1
	}
	return p.TotalPages
}

// FormatPrice renders an amount in rupees
func FormatPrice(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}
