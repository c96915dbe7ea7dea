package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductKey(t *testing.T) {
	assert.Equal(t, int64(7), Product{ID: 3, ProductID: 7}.Key())
	assert.Equal(t, int64(3), Product{ID: 3}.Key())
}

func TestUnitPrice(t *testing.T) {
	p := Product{Price: 100, FinalPrice: 80, Discount: 20}
	assert.Equal(t, 80.0, p.UnitPrice())
	assert.True(t, p.HasDiscount())

	assert.Equal(t, 100.0, Product{Price: 100}.UnitPrice())
	assert.Equal(t, 55.0, OrderItem{Product: p, Price: 55}.UnitPrice())
	assert.Equal(t, 80.0, OrderItem{Product: p}.UnitPrice())
}

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{ID: 1, Product: Product{ProductID: 10, Price: 12.5}, Quantity: 2},
		{ID: 2, Product: Product{ProductID: 11, Price: 3}, Quantity: 3},
	}
	assert.InDelta(t, 34.0, CartTotal(items), 1e-9)
	assert.Equal(t, 3, QuantityOf(items, 11))
	assert.Equal(t, 0, QuantityOf(items, 99))
	assert.Equal(t, 0.0, CartTotal(nil))
}

func TestTimestampFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T10:30:00Z"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-05-01T10:30:00"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-05-01T10:30:00.123"`, time.Date(2024, 5, 1, 10, 30, 0, 123000000, time.UTC)},
		{`"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	assert.Equal(t, "-", ts.Date())
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestOrderDecodesServerShape(t *testing.T) {
	body := `{"orderId":5,"orderDate":"2024-05-01T10:30:00","numberOfItems":2,"status":"SHIPPED",
		"orderItemDto":[{"product":{"productId":10,"name":"Rocket","price":50},"quantity":2,"price":45}]}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	assert.Equal(t, int64(5), o.OrderID)
	assert.Equal(t, OrderStatusShipped, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 45.0, o.Items[0].UnitPrice())
	assert.Equal(t, "01 May 2024", o.OrderDate.Date())
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("LOST").Valid())
}

func TestContactFieldName(t *testing.T) {
	data, err := json.Marshal(Contact{PhoneNumber: "9876543210"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phoneNumner":"9876543210"`)
	assert.True(t, Contact{}.Empty())
}
