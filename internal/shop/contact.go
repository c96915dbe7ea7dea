package shop

import (
	"context"
	"net/http"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
)

// Contact is the shop contact resource
type Contact struct {
	c Doer
}

// Get returns the shop's contact details
func (c *Contact) Get(ctx context.Context) (model.Contact, error) {
	var out model.Contact
	err := c.c.JSON(ctx, api.Request{Path: "/contact", Fallback: "Failed to load contact info"}, &out)
	return out, err
}

// Update saves the shop's contact details
func (c *Contact) Update(ctx context.Context, contact model.Contact) error {
	_, err := c.c.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     "/contact/update",
		JSON:     contact,
		Fallback: "Failed to save contact information.",
	})
	return err
}
