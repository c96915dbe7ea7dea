package fakeapi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pyropark/storefront/internal/model"
)

// Seed accounts available on a fresh server
const (
	AdminEmail       = "admin@storefront.test"
	AdminPassword    = "admin123"
	CustomerEmail    = "asha@storefront.test"
	CustomerPassword = "secret1"
)

type user struct {
	name     string
	email    string
	phone    string
	password string
	role     string
	verified bool
	otp      string
}

type cartLine struct {
	id        int64
	productID int64
	quantity  int
}

type order struct {
	id       int64
	email    string
	placedAt time.Time
	address  string
	status   model.OrderStatus
	tracking string
	items    []model.OrderItem
}

// store is the in-memory state behind the fake API
type store struct {
	mu sync.Mutex

	users    map[string]*user
	tokens   map[string]string // token -> email
	products map[int64]*model.Product
	carts    map[string][]cartLine
	orders   []*order
	contact  model.Contact

	nextProduct  int64
	nextCartLine int64
	nextOrder    int64
	now          func() time.Time
}

func newStore() *store {
	s := &store{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		products: make(map[int64]*model.Product),
		carts:    make(map[string][]cartLine),
		now:      time.Now,
		contact: model.Contact{
			ShopName:    "Pyro Park Crackers",
			Address:     "14 Bazaar Street, Sivakasi",
			PhoneNumber: "9876543210",
			MailID:      "hello@pyropark.test",
		},
	}
	s.users[AdminEmail] = &user{name: "Admin", email: AdminEmail, phone: "9000000001", password: AdminPassword, role: "ADMIN", verified: true}
	s.users[CustomerEmail] = &user{name: "Asha", email: CustomerEmail, phone: "9000000002", password: CustomerPassword, role: "USER", verified: true}

	for _, p := range []model.Product{
		{Name: "Flower Pot", Description: "Classic ground fountain", Price: 120, Discount: 10, StockQuantity: 40, Active: true},
		{Name: "Sparklers 30cm", Description: "Box of 10 sparklers", Price: 80, StockQuantity: 100, Active: true},
		{Name: "Sky Rocket", Description: "Single shot rocket", Price: 45, StockQuantity: 60, Active: true},
		{Name: "Chakkar", Description: "Ground spinner, pack of 5", Price: 150, Discount: 20, StockQuantity: 25, Active: true},
		{Name: "Atom Bomb", Description: "Discontinued", Price: 60, StockQuantity: 0, Active: false},
	} {
		s.addProductLocked(p)
	}
	return s
}

func (s *store) addProductLocked(p model.Product) model.Product {
	s.nextProduct++
	p.ID = s.nextProduct
	p.ProductID = s.nextProduct
	p.FinalPrice = finalPrice(p.Price, p.Discount)
	if p.ImageURL == "" {
		p.ImageURL = fmt.Sprintf("/images/product-%d.png", p.ID)
	}
	s.products[p.ID] = &p
	return p
}

func finalPrice(price, discount float64) float64 {
	if discount <= 0 {
		return price
	}
	return price * (100 - discount) / 100
}

func (s *store) issueToken(email string) string {
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

func (s *store) userForToken(token string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	u, ok := s.users[email]
	return u, ok
}

func (s *store) listProducts(activeOnly bool, search string, page, size int) model.Page[model.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(strings.TrimSpace(search))
	var matched []model.Product
	for _, p := range s.products {
		if activeOnly && !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if size <= 0 {
		size = 9
	}
	if page < 0 {
		page = 0
	}
	total := len(matched)
	pages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return model.Page[model.Product]{
		Content:       append([]model.Product{}, matched[start:end]...),
		TotalPages:    pages,
		TotalElements: total,
		Number:        page,
		Size:          size,
	}
}

func (s *store) cartItemsLocked(email string) []model.CartItem {
	items := []model.CartItem{}
	for _, line := range s.carts[email] {
		p, ok := s.products[line.productID]
		if !ok {
			continue
		}
		items = append(items, model.CartItem{ID: line.id, Product: *p, Quantity: line.quantity})
	}
	return items
}

func (s *store) customerOrder(o *order) model.Order {
	n := 0
	for _, it := range o.items {
		n += it.Quantity
	}
	return model.Order{
		OrderID:       o.id,
		OrderDate:     model.Timestamp{Time: o.placedAt},
		NumberOfItems: n,
		Status:        o.status,
		TrackingID:    o.tracking,
		Items:         append([]model.OrderItem{}, o.items...),
	}
}

func (s *store) adminOrder(o *order) model.AdminOrder {
	u := s.users[o.email]
	out := model.AdminOrder{
		ID:              o.id,
		OrderDate:       model.Timestamp{Time: o.placedAt},
		DeliveryAddress: o.address,
		Items:           append([]model.OrderItem{}, o.items...),
		OrderStatus:     o.status,
		TrackingID:      o.tracking,
	}
	if u != nil {
		out.UserName, out.UserEmail, out.UserPhone = u.name, u.email, u.phone
	}
	return out
}

func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "123456"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
