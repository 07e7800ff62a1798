package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}

	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// CANCELLED is reachable from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}

	if next == StatusCancelled {
		return true
	}

	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusPreparing
	case StatusPreparing:
		return next == StatusReady
	case StatusReady:
		return next == StatusDelivered
	}

	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}

	return false
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway || t == OrderTypeDelivery
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodPayHere      PaymentMethod = "PAYHERE"
	PaymentMethodLankaQR      PaymentMethod = "LANKAQR"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPayHere, PaymentMethodLankaQR, PaymentMethodBankTransfer:
		return true
	}

	return false
}

type OrderItem struct {
	ID                  string  `json:"id"`
	MenuItemID          string  `json:"menuItemId"`
	Name                string  `json:"name,omitempty"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
}

type Order struct {
	ID                  string        `json:"id"`
	RestaurantID        string        `json:"restaurantId"`
	TableID             string        `json:"tableId,omitempty"`
	CustomerName        string        `json:"customerName"`
	CustomerPhone       string        `json:"customerPhone"`
	Items               []OrderItem   `json:"items"`
	OrderType           OrderType     `json:"orderType"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	Status              OrderStatus   `json:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	SpecialInstructions string        `json:"specialInstructions,omitempty"`
	DeliveryAddress     string        `json:"deliveryAddress,omitempty"`
	Subtotal            float64       `json:"subtotal"`
	DeliveryFee         float64       `json:"deliveryFee"`
	Total               float64       `json:"total"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// OrderDraft is the payload of an ORDER_CREATED event, before the store has
// assigned an id and computed totals.
type OrderDraft struct {
	RestaurantID        string        `json:"restaurantId"`
	TableID             string        `json:"tableId,omitempty"`
	CustomerName        string        `json:"customerName"`
	CustomerPhone       string        `json:"customerPhone"`
	Items               []OrderItem   `json:"items"`
	OrderType           OrderType     `json:"orderType"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	SpecialInstructions string        `json:"specialInstructions,omitempty"`
	DeliveryAddress     string        `json:"deliveryAddress,omitempty"`
	DeliveryFee         float64       `json:"deliveryFee,omitempty"`
}

// Subtotal sums item prices before the delivery fee.
func (d OrderDraft) Subtotal() float64 {
	var sum float64
	for _, item := range d.Items {
		sum += item.Price * float64(item.Quantity)
	}

	return sum
}
