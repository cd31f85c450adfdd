package entities

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderQuoted    OrderStatus = "quoted"
	OrderAccepted  OrderStatus = "accepted"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderDirect     OrderType = "direct"
	OrderCustomList OrderType = "custom_list"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// transitions is the only source of truth for legal status edges.
// delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderQuoted, OrderAccepted, OrderCancelled},
	OrderQuoted:   {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderDelivered, OrderCancelled},
}

// CanTransition reports whether from -> to is a legal edge of the order
// state machine.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderQuoted, OrderAccepted, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// StatusUpdate carries the fields a status transition may set alongside the
// status itself.
type StatusUpdate struct {
	QuoteAmount   *int
	TotalAmount   *int
	PaymentMethod *PaymentMethod
}

// OrderItem is a snapshot of the catalog line at order-creation time.
// Later price or name edits in the catalog must not alter historical orders.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	Quantity  int
	Price     int
}

type Order struct {
	ID           string
	CustomerID   string
	CustomerName string
	ShopID       string
	ShopName     string

	Type   OrderType
	Status OrderStatus

	TotalAmount   int
	QuoteAmount   int
	PaymentMethod PaymentMethod

	// ListText is the free-text requirement of a custom_list order.
	ListText string

	IsRated   bool
	CreatedAt time.Time

	Items []OrderItem
}
