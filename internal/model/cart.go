package model

// CartItem is one line of the signed-in user's cart
type CartItem struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is quantity times unit price
func (c CartItem) Subtotal() float64 {
	return float64(c.Quantity) * c.Product.Price
}

// CartTotal sums every line of a cart
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// QuantityOf returns how many units of productID are in items
func QuantityOf(items []CartItem, productID int64) int {
	for _, item := range items {
		if item.Product.Key() == productID {
			return item.Quantity
		}
	}
	return 0
}
