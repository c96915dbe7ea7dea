package shop

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/validate"
)

// Orders is the order resource
type Orders struct {
	c Doer
}

// List returns the signed-in user's orders
func (o *Orders) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := o.c.JSON(ctx, api.Request{Path: "/order", Fallback: "Failed to load orders."}, &orders)
	return orders, err
}

// Place checks out the cart. An empty address is rejected without a call.
func (o *Orders) Place(ctx context.Context, address string) error {
	if err := validate.Address(address); err != nil {
		return err
	}
	_, err := o.c.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/order/place",
		JSON:     map[string]string{"address": strings.TrimSpace(address)},
		Fallback: "Failed to place order",
	})
	return err
}

// Invoice downloads the PDF invoice of an order
func (o *Orders) Invoice(ctx context.Context, orderID int64) ([]byte, error) {
	resp, err := o.c.Do(ctx, api.Request{
		Path:     "/order/" + strconv.FormatInt(orderID, 10) + "/invoice",
		Header:   http.Header{"Accept": {"application/pdf"}},
		Fallback: "Invoice download failed",
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// InvoiceName is the file name an invoice is saved under
func InvoiceName(orderID int64) string {
	return fmt.Sprintf("invoice-%d.pdf", orderID)
}

// SaveInvoice downloads an invoice into dir and returns its path
func (o *Orders) SaveInvoice(ctx context.Context, orderID int64, dir string) (string, error) {
	data, err := o.Invoice(ctx, orderID)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}
	path := filepath.Join(dir, InvoiceName(orderID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}
	return path, nil
}

// All returns every order, for admins
func (o *Orders) All(ctx context.Context) ([]model.AdminOrder, error) {
	var orders []model.AdminOrder
	err := o.c.JSON(ctx, api.Request{Path: "/order/allOrders", Fallback: "Failed to load orders"}, &orders)
	return orders, err
}

// Update changes an order's status and tracking id
func (o *Orders) Update(ctx context.Context, u model.OrderUpdate) error {
	if !u.OrderStatus.Valid() {
		return validate.Errors{"orderStatus": fmt.Sprintf("Unknown order status %q", u.OrderStatus)}
	}
	u.TrackingID = strings.TrimSpace(u.TrackingID)
	_, err := o.c.Do(ctx, api.Request{
		Method:   http.MethodPut,
		Path:     "/order/update",
		JSON:     u,
		Fallback: "Failed to update order",
	})
	return err
}
