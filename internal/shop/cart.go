package shop

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
)

// Cart is the signed-in user's cart
type Cart struct {
	c Doer
}

type cartLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Items returns every cart line
func (c *Cart) Items(ctx context.Context) ([]model.CartItem, error) {
	var items []model.CartItem
	err := c.c.JSON(ctx, api.Request{Path: "/cart", Fallback: "Failed to load cart"}, &items)
	if items == nil {
		items = []model.CartItem{}
	}
	return items, err
}

// Add sets the quantity of productID in the cart
func (c *Cart) Add(ctx context.Context, productID int64, quantity int) error {
	_, err := c.c.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/cart/add",
		JSON:     cartLine{ProductID: productID, Quantity: quantity},
		Fallback: "Failed to update cart",
	})
	return err
}

// Remove drops productID from the cart
func (c *Cart) Remove(ctx context.Context, productID int64) error {
	_, err := c.c.Do(ctx, api.Request{
		Method:   http.MethodDelete,
		Path:     "/cart/remove/" + strconv.FormatInt(productID, 10),
		Fallback: "Failed to update cart",
	})
	return err
}

// SetQuantity adds or, for quantity <= 0, removes
func (c *Cart) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, productID)
	}
	return c.Add(ctx, productID, quantity)
}

// Total is the sum of quantity times unit price
func Total(items []model.CartItem) float64 {
	return model.CartTotal(items)
}
