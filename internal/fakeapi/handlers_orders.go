package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pyropark/storefront/internal/model"
)

// listCart handles GET /cart
func (s *Server) listCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	writeJSON(w, http.StatusOK, s.store.cartItemsLocked(u.email))
}

// addToCart handles POST /cart/add. The quantity replaces the line's quantity.
func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, ok := s.store.products[req.ProductID]
	if !ok || !p.Active {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if req.Quantity > p.StockQuantity {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Only %d left in stock", p.StockQuantity))
		return
	}

	lines := s.store.carts[u.email]
	for i := range lines {
		if lines[i].productID == req.ProductID {
			lines[i].quantity = req.Quantity
			writeJSON(w, http.StatusOK, s.store.cartItemsLocked(u.email))
			return
		}
	}
	s.store.nextCartLine++
	s.store.carts[u.email] = append(lines, cartLine{id: s.store.nextCartLine, productID: req.ProductID, quantity: req.Quantity})
	writeJSON(w, http.StatusOK, s.store.cartItemsLocked(u.email))
}

// removeFromCart handles DELETE /cart/remove/{productId}
func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := idParam(w, r, "productId")
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	lines := s.store.carts[u.email]
	kept := lines[:0]
	for _, l := range lines {
		if l.productID != id {
			kept = append(kept, l)
		}
	}
	s.store.carts[u.email] = kept
	w.WriteHeader(http.StatusNoContent)
}

// listOrders handles GET /order
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	orders := []model.Order{}
	for i := len(s.store.orders) - 1; i >= 0; i-- {
		if o := s.store.orders[i]; o.email == u.email {
			orders = append(orders, s.store.customerOrder(o))
		}
	}
	writeJSON(w, http.StatusOK, orders)
}

// placeOrder handles POST /order/place
func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var req struct {
		Address string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		writeError(w, http.StatusBadRequest, "Address is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	lines := s.store.carts[u.email]
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "Your cart is empty")
		return
	}

	var items []model.OrderItem
	for _, l := range lines {
		p, ok := s.store.products[l.productID]
		if !ok {
			continue
		}
		if l.quantity > p.StockQuantity {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: only %d left in stock", p.Name, p.StockQuantity))
			return
		}
		items = append(items, model.OrderItem{ID: l.id, Product: *p, Quantity: l.quantity, Price: p.UnitPrice()})
	}
	for _, it := range items {
		s.store.products[it.Product.ID].StockQuantity -= it.Quantity
	}

	s.store.nextOrder++
	o := &order{
		id:       s.store.nextOrder,
		email:    u.email,
		placedAt: s.store.now(),
		address:  address,
		status:   model.OrderStatusPlaced,
		items:    items,
	}
	s.store.orders = append(s.store.orders, o)
	s.store.carts[u.email] = nil
	writeJSON(w, http.StatusCreated, s.store.customerOrder(o))
}

// invoice handles GET /order/{id}/invoice
func (s *Server) invoice(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, o := range s.store.orders {
		if o.id != id {
			continue
		}
		if o.email != u.email && !strings.EqualFold(u.role, "ADMIN") {
			break
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", id))
		w.WriteHeader(http.StatusOK)
		w.Write(renderInvoice(s.store.customerOrder(o), s.store.contact))
		return
	}
	writeError(w, http.StatusNotFound, "Order not found")
}

// allOrders handles GET /order/allOrders
func (s *Server) allOrders(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	orders := make([]model.AdminOrder, 0, len(s.store.orders))
	for i := len(s.store.orders) - 1; i >= 0; i-- {
		orders = append(orders, s.store.adminOrder(s.store.orders[i]))
	}
	writeJSON(w, http.StatusOK, orders)
}

// updateOrder handles PUT /order/update
func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.OrderStatus.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, o := range s.store.orders {
		if o.id == req.ID {
			o.status = req.OrderStatus
			o.tracking = req.TrackingID
			writeJSON(w, http.StatusOK, s.store.adminOrder(o))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Order not found")
}

// getContact handles GET /contact
func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.store.contact)
}

// updateContact handles POST /contact/update
func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	var req model.Contact
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.contact = req
	writeJSON(w, http.StatusOK, req)
}

// renderInvoice produces a minimal single-page PDF
func renderInvoice(o model.Order, shop model.Contact) []byte {
	var lines []string
	lines = append(lines, shop.ShopName, fmt.Sprintf("Invoice for order #%d", o.OrderID), o.OrderDate.Date())
	var total float64
	for _, it := range o.Items {
		sub := float64(it.Quantity) * it.UnitPrice()
		total += sub
		lines = append(lines, fmt.Sprintf("%s x%d  %s", it.Product.Name, it.Quantity, model.FormatPrice(sub)))
	}
	lines = append(lines, "Total: "+model.FormatPrice(total))

	var text strings.Builder
	text.WriteString("BT /F1 12 Tf 50 780 Td 16 TL\n")
	for _, l := range lines {
		l = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "₹", "Rs.").Replace(l)
		fmt.Fprintf(&text, "(%s) '\n", l)
	}
	text.WriteString("ET")
	content := text.String()

	return []byte(fmt.Sprintf(`%%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >> endobj
4 0 obj << /Length %d >> stream
%s
endstream endobj
5 0 obj << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> endobj
trailer << /Root 1 0 R >>
%%%%EOF
`, len(content), content))
}
