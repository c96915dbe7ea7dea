package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pyropark/storefront/internal/model"
)

const maxUpload = 10 << 20

// listActiveProducts handles GET /products/active
func (s *Server) listActiveProducts(w http.ResponseWriter, r *http.Request) {
	page, size, search := pageParams(r)
	writeJSON(w, http.StatusOK, s.store.listProducts(true, search, page, size))
}

// listProducts handles GET /products
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	page, size, search := pageParams(r)
	writeJSON(w, http.StatusOK, s.store.listProducts(false, search, page, size))
}

// getProduct handles GET /products/{id}
func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, found := s.store.products[id]
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// createProduct handles POST /products (multipart)
func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	p, image, err := parseProductForm(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if image == "" {
		writeError(w, http.StatusBadRequest, "Image is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p.ImageURL = "/images/" + image
	created := s.store.addProductLocked(p)
	writeJSON(w, http.StatusCreated, created)
}

// updateProduct handles PUT /products/{id} (multipart)
func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, image, err := parseProductForm(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	existing, found := s.store.products[id]
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	existing.StockQuantity = p.StockQuantity
	existing.FinalPrice = finalPrice(existing.Price, existing.Discount)
	if r.FormValue("active") != "" {
		existing.Active = p.Active
	}
	if image != "" {
		existing.ImageURL = "/images/" + image
	}
	writeJSON(w, http.StatusOK, existing)
}

// deleteProduct handles DELETE /products/{id}
func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.products[id]; !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.store.products, id)
	for email, lines := range s.store.carts {
		kept := lines[:0]
		for _, l := range lines {
			if l.productID != id {
				kept = append(kept, l)
			}
		}
		s.store.carts[email] = kept
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProductForm(r *http.Request, create bool) (model.Product, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return model.Product{}, "", fmt.Errorf("invalid form: %w", err)
	}

	p := model.Product{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		Active:      true,
	}
	if p.Name == "" {
		return p, "", fmt.Errorf("Name is required")
	}
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		return p, "", fmt.Errorf("Price must be greater than 0")
	}
	p.Price = price
	stock, err := strconv.Atoi(r.FormValue("stockQuantity"))
	if err != nil || stock < 0 {
		return p, "", fmt.Errorf("Stock quantity must be a non-negative integer")
	}
	p.StockQuantity = stock
	if v := r.FormValue("active"); v != "" {
		p.Active, _ = strconv.ParseBool(v)
	} else if !create {
		p.Active = false
	}

	var image string
	if f, hdr, err := r.FormFile("image"); err == nil {
		f.Close()
		image = hdr.Filename
	}
	return p, image, nil
}

func pageParams(r *http.Request) (page, size int, search string) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("size"))
	return page, size, q.Get("search")
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
