package model

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "PLACED"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusRefunded,
	OrderStatusFailed,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Icon returns a glyph for the status
func (s OrderStatus) Icon() string {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed:
		return "○"
	case OrderStatusProcessing, OrderStatusShipped:
		return "●"
	case OrderStatusDelivered:
		return "✓"
	case OrderStatusCancelled, OrderStatusFailed:
		return "⊘"
	case OrderStatusReturned, OrderStatusRefunded:
		return "⊖"
	default:
		return "○"
	}
}

// Order is a customer's view of one of their orders
type Order struct {
	OrderID       int64       `json:"orderId"`
	OrderDate     Timestamp   `json:"orderDate"`
	NumberOfItems int         `json:"numberOfItems"`
	Status        OrderStatus `json:"status"`
	TrackingID    string      `json:"trackingId,omitempty"`
	Items         []OrderItem `json:"orderItemDto"`
}

// OrderItem is one line of a placed order
type OrderItem struct {
	ID       int64   `json:"id,omitempty"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// UnitPrice prefers the price charged at order time
func (i OrderItem) UnitPrice() float64 {
	if i.Price > 0 {
		return i.Price
	}
	return i.Product.UnitPrice()
}

// AdminOrder is the back-office view of an order
type AdminOrder struct {
	ID              int64       `json:"id"`
	OrderDate       Timestamp   `json:"orderDate"`
	UserName        string      `json:"userName"`
	UserEmail       string      `json:"userEmail"`
	UserPhone       string      `json:"userPhone"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Items           []OrderItem `json:"items"`
	OrderStatus     OrderStatus `json:"orderStatus"`
	TrackingID      string      `json:"trackingId,omitempty"`
}

// OrderUpdate is what an admin may change on an order
type OrderUpdate struct {
	ID          int64       `json:"id"`
	OrderStatus OrderStatus `json:"orderStatus"`
	TrackingID  string      `json:"trackingId"`
}
