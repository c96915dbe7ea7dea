package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/model"
)

const (
	// DefaultPageSize is the catalogue page size
	DefaultPageSize = 9
	// DefaultAdminPageSize is the back-office page size
	DefaultAdminPageSize = 8
)

// Products is the catalogue resource
type Products struct {
	c Doer
}

// ListActive returns a page of products visible to shoppers
func (p *Products) ListActive(ctx context.Context, page, size int, search string) (model.Page[model.Product], error) {
	var out model.Page[model.Product]
	err := p.c.JSON(ctx, api.Request{
		Path:   "/products/active",
		Query:  pageQuery(page, size, search, DefaultPageSize),
		Public: true,
	}, &out)
	return out, err
}

// List returns a page of every product, active or not
func (p *Products) List(ctx context.Context, page, size int, search string) (model.Page[model.Product], error) {
	var out model.Page[model.Product]
	err := p.c.JSON(ctx, api.Request{
		Path:     "/products",
		Query:    pageQuery(page, size, search, DefaultAdminPageSize),
		Fallback: "Failed to load products",
	}, &out)
	return out, err
}

// Get fetches one product
func (p *Products) Get(ctx context.Context, id int64) (model.Product, error) {
	var out model.Product
	err := p.c.JSON(ctx, api.Request{
		Path:     "/products/" + strconv.FormatInt(id, 10),
		Fallback: "Failed to load product",
	}, &out)
	return out, err
}

// Create adds a product. The image is required.
func (p *Products) Create(ctx context.Context, product model.Product, image *api.File) error {
	if image == nil {
		return fmt.Errorf("create product: image is required")
	}
	_, err := p.c.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      "/products",
		Multipart: productForm(product, image, true),
		Fallback:  "Failed to add product",
	})
	return err
}

// Update replaces a product's fields; image is optional
func (p *Products) Update(ctx context.Context, id int64, product model.Product, image *api.File) error {
	_, err := p.c.Do(ctx, api.Request{
		Method:    http.MethodPut,
		Path:      "/products/" + strconv.FormatInt(id, 10),
		Multipart: productForm(product, image, false),
		Fallback:  "Failed to update product",
	})
	return err
}

// Delete removes a product
func (p *Products) Delete(ctx context.Context, id int64) error {
	_, err := p.c.Do(ctx, api.Request{
		Method:   http.MethodDelete,
		Path:     "/products/" + strconv.FormatInt(id, 10),
		Fallback: "Failed to delete product",
	})
	return err
}

// LoadImage reads an image file for upload
func LoadImage(path string) (*api.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &api.File{Field: "image", Name: filepath.Base(path), Data: data}, nil
}

func productForm(p model.Product, image *api.File, withActive bool) *api.Multipart {
	m := &api.Multipart{
		Fields: []api.Field{
			{Name: "name", Value: p.Name},
			{Name: "description", Value: p.Description},
			{Name: "price", Value: strconv.FormatFloat(p.Price, 'f', -1, 64)},
			{Name: "stockQuantity", Value: strconv.Itoa(p.StockQuantity)},
		},
		File: image,
	}
	if withActive {
		m.Fields = append(m.Fields, api.Field{Name: "active", Value: strconv.FormatBool(p.Active)})
	}
	return m
}

func pageQuery(page, size int, search string, defaultSize int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("search", strings.TrimSpace(search))
	return q
}
