// Package fakeapi is an in-memory implementation of the storefront HTTP API,
// for tests and local development.
package fakeapi

import (
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Server serves the storefront API under /api
type Server struct {
	store  *store
	logger *slog.Logger
	router *chi.Mux

	mu   sync.Mutex
	hits map[string]int
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server seeded with an admin, a customer, and a few products
func New(opts ...Option) *Server {
	s := &Server{
		store:  newStore(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		hits:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(s.logger))
	r.Use(Recovery(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Unauthenticated routes
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)
		r.Post("/auth/verify-otp", s.verifyOTP)
		r.Get("/products/active", s.listActiveProducts)
		r.Get("/products/{id}", s.getProduct)
		r.Get("/contact", s.getContact)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.BearerAuth)

			r.Get("/auth/validate", s.validate)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.listCart)
				r.Post("/add", s.addToCart)
				r.Delete("/remove/{productId}", s.removeFromCart)
			})

			r.Get("/order", s.listOrders)
			r.Post("/order/place", s.placeOrder)
			r.Get("/order/{id}/invoice", s.invoice)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)

				r.Get("/products", s.listProducts)
				r.Post("/products", s.createProduct)
				r.Put("/products/{id}", s.updateProduct)
				r.Delete("/products/{id}", s.deleteProduct)
				r.Get("/order/allOrders", s.allOrders)
				r.Put("/order/update", s.updateOrder)
				r.Post("/contact/update", s.updateContact)
			})
		})
	})

	return r
}

// Hits returns how many requests reached "METHOD /path"
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// OTP returns the pending one-time code for email
func (s *Server) OTP(email string) (string, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u, ok := s.store.users[email]
	if !ok || u.verified {
		return "", false
	}
	return u.otp, true
}

// Revoke invalidates a single token, as a server-side expiry would
func (s *Server) Revoke(token string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.tokens, token)
}

// RevokeAll invalidates every issued token
func (s *Server) RevokeAll() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.tokens = make(map[string]string)
}
