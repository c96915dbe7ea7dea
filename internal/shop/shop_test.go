package shop

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/fakeapi"
	"github.com/pyropark/storefront/internal/model"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/validate"
)

type fixture struct {
	fake     *fakeapi.Server
	sessions *session.MemoryStore
	shop     *Shop
	client   *api.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	client, err := api.NewClient(srv.URL+"/api", sessions)
	require.NoError(t, err)
	return &fixture{fake: fake, sessions: sessions, shop: New(client), client: client}
}

func (f *fixture) signIn(t *testing.T, email, password string) {
	t.Helper()
	var out model.LoginResult
	err := f.client.JSON(context.Background(), api.Request{
		Method: "POST",
		Path:   "/auth/login",
		JSON:   model.Credentials{Email: email, Password: password},
		Public: true,
	}, &out)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Set(out.Token, session.ParseRole(out.Role), 0))
}

func TestListActiveIsPublic(t *testing.T) {
	f := newFixture(t)
	page, err := f.shop.Products.ListActive(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Content, 4)
	assert.Equal(t, 1, page.Pages())
}

func TestCartLifecycle(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	ctx := context.Background()

	require.NoError(t, f.shop.Cart.SetQuantity(ctx, 2, 2))
	require.NoError(t, f.shop.Cart.Add(ctx, 3, 1))

	items, err := f.shop.Cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 2*80+45, Total(items), 1e-9)

	require.NoError(t, f.shop.Cart.SetQuantity(ctx, 2, 0))
	items, err = f.shop.Cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Product.Key())

	err = f.shop.Cart.Add(ctx, 3, 999)
	require.Error(t, err)
	assert.Contains(t, api.Message(err, ""), "left in stock")
}

func TestPlaceOrderValidatesAddress(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	ctx := context.Background()

	err := f.shop.Orders.Place(ctx, "   ")
	var verrs validate.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, 0, f.fake.Hits("POST /api/order/place"))

	require.NoError(t, f.shop.Cart.Add(ctx, 1, 2))
	require.NoError(t, f.shop.Orders.Place(ctx, "12 MG Road"))

	orders, err := f.shop.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].NumberOfItems)

	dir := t.TempDir()
	path, err := f.shop.Orders.SaveInvoice(ctx, orders[0].OrderID, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-1.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestAdminProductManagement(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, fakeapi.AdminEmail, fakeapi.AdminPassword)
	ctx := context.Background()

	imgPath := filepath.Join(t.TempDir(), "fountain.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png"), 0o644))
	image, err := LoadImage(imgPath)
	require.NoError(t, err)

	err = f.shop.Products.Create(ctx, model.Product{Name: "Fountain", Price: 99, StockQuantity: 5, Active: true}, image)
	require.NoError(t, err)

	page, err := f.shop.Products.List(ctx, 0, 0, "fountain")
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	created := page.Content[0]
	assert.Equal(t, "/images/fountain.png", created.ImageURL)

	created.Price = 120
	require.NoError(t, f.shop.Products.Update(ctx, created.ID, created, nil))
	got, err := f.shop.Products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Price)

	require.NoError(t, f.shop.Products.Delete(ctx, created.ID))
	_, err = f.shop.Products.Get(ctx, created.ID)
	assert.Equal(t, 404, api.StatusOf(err))

	assert.Error(t, f.shop.Products.Create(ctx, model.Product{Name: "x"}, nil))
}

func TestAdminOrdersAndContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signIn(t, fakeapi.CustomerEmail, fakeapi.CustomerPassword)
	require.NoError(t, f.shop.Cart.Add(ctx, 4, 1))
	require.NoError(t, f.shop.Orders.Place(ctx, "Home"))

	f.signIn(t, fakeapi.AdminEmail, fakeapi.AdminPassword)
	all, err := f.shop.Orders.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	err = f.shop.Orders.Update(ctx, model.OrderUpdate{ID: all[0].ID, OrderStatus: "LOST"})
	var verrs validate.Errors
	assert.True(t, errors.As(err, &verrs))

	require.NoError(t, f.shop.Orders.Update(ctx, model.OrderUpdate{ID: all[0].ID, OrderStatus: model.OrderStatusDelivered, TrackingID: " TRK "}))
	all, err = f.shop.Orders.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, all[0].OrderStatus)
	assert.Equal(t, "TRK", all[0].TrackingID)

	contact, err := f.shop.Contact.Get(ctx)
	require.NoError(t, err)
	contact.PhoneNumber = "9999999999"
	require.NoError(t, f.shop.Contact.Update(ctx, contact))
	contact, err = f.shop.Contact.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9999999999", contact.PhoneNumber)
}

func TestLoadImageEmptyPath(t *testing.T) {
	f, err := LoadImage("  ")
	assert.NoError(t, err)
	assert.Nil(t, f)

	_, err = LoadImage("/does/not/exist.png")
	assert.Error(t, err)
}
