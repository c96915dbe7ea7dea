// Package shop wraps the storefront API resources. Every call goes through
// the api pipeline, so failures have already been surfaced to the user by
// the time an error is returned here.
package shop

import (
	"context"

	"github.com/pyropark/storefront/internal/api"
)

// Doer is the part of *api.Client the resource clients use
type Doer interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
	JSON(ctx context.Context, req api.Request, out any) error
}

// Shop groups the resource clients
type Shop struct {
	Products *Products
	Cart     *Cart
	Orders   *Orders
	Contact  *Contact
}

// New builds every resource client on top of c
func New(c Doer) *Shop {
	return &Shop{
		Products: &Products{c: c},
		Cart:     &Cart{c: c},
		Orders:   &Orders{c: c},
		Contact:  &Contact{c: c},
	}
}
