package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyropark/storefront/internal/model"
)

type testClient struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newTestClient(t *testing.T, s *Server) *testClient {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &testClient{t: t, srv: srv}
}

func (c *testClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.srv.URL+"/api"+path, r)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c *testClient) login(email, password string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, status, string(body))
	var out model.LoginResult
	require.NoError(c.t, json.Unmarshal(body, &out))
	c.token = out.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := newTestClient(t, New())
	status, body := c.do(http.MethodPost, "/auth/login", map[string]string{"email": CustomerEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"message":"Invalid email or password"}`, string(body))
}

func TestRegisterVerifyLogin(t *testing.T) {
	s := New()
	c := newTestClient(t, s)

	status, _ := c.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Ravi", "email": "ravi@example.com", "phoneNumber": "9123456789", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	first, ok := s.OTP("ravi@example.com")
	require.True(t, ok)
	require.Len(t, first, 6)

	status, _ = c.do(http.MethodPost, "/auth/login", map[string]string{"email": "ravi@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodPost, "/auth/register", map[string]string{"email": "ravi@example.com"})
	require.Equal(t, http.StatusOK, status)
	otp, _ := s.OTP("ravi@example.com")

	status, _ = c.do(http.MethodPost, "/auth/verify-otp", map[string]string{"email": "ravi@example.com", "otp": "000000x"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodPost, "/auth/verify-otp", map[string]string{"email": "ravi@example.com", "otp": otp})
	require.Equal(t, http.StatusOK, status)

	c.login("ravi@example.com", "secret1")
	status, _ = c.do(http.MethodGet, "/auth/validate", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/auth/register", map[string]string{"email": "ravi@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAuthAndAdminGates(t *testing.T) {
	s := New()
	c := newTestClient(t, s)

	status, _ := c.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.login(CustomerEmail, CustomerPassword)
	status, _ = c.do(http.MethodGet, "/order/allOrders", nil)
	assert.Equal(t, http.StatusForbidden, status)

	s.Revoke(c.token)
	status, _ = c.do(http.MethodGet, "/auth/validate", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 1, s.Hits("GET /api/auth/validate"))
}

func TestProductListing(t *testing.T) {
	c := newTestClient(t, New())

	status, body := c.do(http.MethodGet, "/products/active?page=0&size=2&search=", nil)
	require.Equal(t, http.StatusOK, status)
	var page model.Page[model.Product]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Content, 2)
	assert.Equal(t, 4, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	status, body = c.do(http.MethodGet, "/products/active?search=rocket", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Sky Rocket", page.Content[0].Name)

	c.login(AdminEmail, AdminPassword)
	status, body = c.do(http.MethodGet, "/products?size=8", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 5, page.TotalElements)
}

func TestCartAndCheckout(t *testing.T) {
	c := newTestClient(t, New())
	c.login(CustomerEmail, CustomerPassword)

	status, body := c.do(http.MethodPost, "/cart/add", map[string]any{"productId": 1, "quantity": 1000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "left in stock")

	status, _ = c.do(http.MethodPost, "/cart/add", map[string]any{"productId": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodPost, "/cart/add", map[string]any{"productId": 2, "quantity": 1})
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodPost, "/cart/add", map[string]any{"productId": 1, "quantity": 3})
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	var items []model.CartItem
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 2)
	assert.Equal(t, 3, model.QuantityOf(items, 1))

	status, _ = c.do(http.MethodDelete, "/cart/remove/2", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = c.do(http.MethodPost, "/order/place", map[string]string{"address": " "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = c.do(http.MethodPost, "/order/place", map[string]string{"address": "12 MG Road"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var placed model.Order
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.Equal(t, model.OrderStatusPlaced, placed.Status)
	assert.Equal(t, 3, placed.NumberOfItems)

	status, body = c.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = c.do(http.MethodGet, "/order/1/invoice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-1.4")))
	assert.Contains(t, string(body), "Invoice for order #1")
}

func TestAdminUpdatesOrderAndContact(t *testing.T) {
	s := New()
	customer := newTestClient(t, s)
	customer.login(CustomerEmail, CustomerPassword)
	customer.do(http.MethodPost, "/cart/add", map[string]any{"productId": 3, "quantity": 1})
	status, _ := customer.do(http.MethodPost, "/order/place", map[string]string{"address": "Home"})
	require.Equal(t, http.StatusCreated, status)

	admin := newTestClient(t, s)
	admin.login(AdminEmail, AdminPassword)

	status, _ = admin.do(http.MethodPut, "/order/update", map[string]any{"id": 1, "orderStatus": "LOST"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := admin.do(http.MethodPut, "/order/update", map[string]any{"id": 1, "orderStatus": "SHIPPED", "trackingId": "TRK1"})
	require.Equal(t, http.StatusOK, status)
	var updated model.AdminOrder
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, model.OrderStatusShipped, updated.OrderStatus)
	assert.Equal(t, CustomerEmail, updated.UserEmail)

	status, _ = admin.do(http.MethodPost, "/contact/update", model.Contact{ShopName: "New Name"})
	require.Equal(t, http.StatusOK, status)
	status, body = customer.do(http.MethodGet, "/contact", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "New Name")
}
