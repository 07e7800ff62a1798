package ws

import (
	"encoding/json"

	"orderhub/internal/domain"
)

// clientMessage is the inbound envelope: an intent name plus its payload.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	intentJoinKitchen         = "join-kitchen"
	intentJoinWaiter          = "join-waiter"
	intentNewOrder            = "new-order"
	intentUpdateOrderStatus   = "update-order-status"
	intentUpdatePaymentStatus = "update-payment-status"
	intentKitchenReady        = "kitchen-ready"
	intentDeliveryPickup      = "delivery-pickup"
)

type joinPayload struct {
	RestaurantID string `json:"restaurantId" validate:"required"`
}

type orderItemPayload struct {
	MenuItemID          string  `json:"menuItemId" validate:"required"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity" validate:"required,min=1"`
	Price               float64 `json:"price" validate:"min=0"`
	SpecialInstructions string  `json:"specialInstructions"`
}

type newOrderPayload struct {
	RestaurantID        string             `json:"restaurantId" validate:"required"`
	TableID             string             `json:"tableId"`
	CustomerName        string             `json:"customerName" validate:"required,min=2"`
	CustomerPhone       string             `json:"customerPhone" validate:"required,min=10"`
	Items               []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	OrderType           string             `json:"orderType" validate:"required,oneof=DINE_IN TAKEAWAY DELIVERY"`
	PaymentMethod       string             `json:"paymentMethod" validate:"required,oneof=CASH CARD PAYHERE LANKAQR BANK_TRANSFER"`
	SpecialInstructions string             `json:"specialInstructions"`
	DeliveryAddress     string             `json:"deliveryAddress"`
	DeliveryFee         float64            `json:"deliveryFee" validate:"min=0"`
}

func (p newOrderPayload) draft() *domain.OrderDraft {
	draft := &domain.OrderDraft{
		RestaurantID:        p.RestaurantID,
		TableID:             p.TableID,
		CustomerName:        p.CustomerName,
		CustomerPhone:       p.CustomerPhone,
		OrderType:           domain.OrderType(p.OrderType),
		PaymentMethod:       domain.PaymentMethod(p.PaymentMethod),
		SpecialInstructions: p.SpecialInstructions,
		DeliveryAddress:     p.DeliveryAddress,
		DeliveryFee:         p.DeliveryFee,
	}

	for _, item := range p.Items {
		draft.Items = append(draft.Items, domain.OrderItem{
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			Price:               item.Price,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	return draft
}

type statusUpdatePayload struct {
	OrderID      string `json:"orderId" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required"`
	Status       string `json:"status" validate:"required"`
}

type paymentUpdatePayload struct {
	OrderID       string `json:"orderId" validate:"required"`
	RestaurantID  string `json:"restaurantId" validate:"required"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

type readyPayload struct {
	OrderID      string `json:"orderId" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required"`
}

type pickupPayload struct {
	OrderID      string `json:"orderId" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required"`
	RiderID      string `json:"riderId" validate:"required"`
}
