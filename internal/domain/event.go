package domain

import "fmt"

type Role string

const (
	RoleKitchen Role = "kitchen"
	RoleWaiter  Role = "waiter"
)

func (r Role) Valid() bool {
	return r == RoleKitchen || r == RoleWaiter
}

// RoomKey identifies a multicast room: one restaurant, one consumer role.
type RoomKey struct {
	RestaurantID string
	Role         Role
}

func (k RoomKey) String() string {
	return fmt.Sprintf("%s-%s", k.Role, k.RestaurantID)
}

type EventType string

const (
	EventOrderCreated         EventType = "ORDER_CREATED"
	EventOrderStatusChanged   EventType = "ORDER_STATUS_CHANGED"
	EventPaymentStatusChanged EventType = "PAYMENT_STATUS_CHANGED"
	EventKitchenReady         EventType = "KITCHEN_READY"
	EventDeliveryPickup       EventType = "DELIVERY_PICKUP"
)

func (t EventType) Valid() bool {
	switch t {
	case EventOrderCreated, EventOrderStatusChanged, EventPaymentStatusChanged, EventKitchenReady, EventDeliveryPickup:
		return true
	}

	return false
}

// Informational reports whether the event carries no state mutation of its
// own. KITCHEN_READY and DELIVERY_PICKUP are supplementary notifications; the
// underlying status change is captured by ORDER_STATUS_CHANGED.
func (t EventType) Informational() bool {
	return t == EventKitchenReady || t == EventDeliveryPickup
}

// TargetRoles resolves the rooms an event fans out to. Most events reach both
// roles; KITCHEN_READY only reaches waiters and DELIVERY_PICKUP only reaches
// the kitchen.
func (t EventType) TargetRoles() []Role {
	switch t {
	case EventKitchenReady:
		return []Role{RoleWaiter}
	case EventDeliveryPickup:
		return []Role{RoleKitchen}
	default:
		return []Role{RoleKitchen, RoleWaiter}
	}
}

// Event is a transient order-lifecycle event. It is never persisted; its
// effect is the persisted order mutation plus the delivered notifications.
type Event struct {
	Type          EventType     `json:"type"`
	OrderID       string        `json:"orderId,omitempty"`
	RestaurantID  string        `json:"restaurantId"`
	Status        OrderStatus   `json:"status,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	RiderID       string        `json:"riderId,omitempty"`
	Draft         *OrderDraft   `json:"draft,omitempty"`
}

func (e Event) Validate() error {
	if !e.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", string(e.Type))}
	}

	if e.RestaurantID == "" {
		return &ValidationError{Field: "restaurantId", Reason: "must not be empty"}
	}

	switch e.Type {
	case EventOrderCreated:
		if e.Draft == nil {
			return &ValidationError{Field: "draft", Reason: "must not be empty"}
		}

		return e.Draft.Validate()
	case EventOrderStatusChanged:
		if e.OrderID == "" {
			return &ValidationError{Field: "orderId", Reason: "must not be empty"}
		}

		if !e.Status.Valid() {
			return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", string(e.Status))}
		}

		if e.Status == StatusPending {
			return &ValidationError{Field: "status", Reason: "no order transitions back to PENDING"}
		}
	case EventPaymentStatusChanged:
		if e.OrderID == "" {
			return &ValidationError{Field: "orderId", Reason: "must not be empty"}
		}

		if !e.PaymentStatus.Valid() {
			return &ValidationError{Field: "paymentStatus", Reason: fmt.Sprintf("unknown payment status %q", string(e.PaymentStatus))}
		}
	default:
		if e.OrderID == "" {
			return &ValidationError{Field: "orderId", Reason: "must not be empty"}
		}
	}

	return nil
}

func (d OrderDraft) Validate() error {
	if d.RestaurantID == "" {
		return &ValidationError{Field: "restaurantId", Reason: "must not be empty"}
	}

	if d.CustomerName == "" {
		return &ValidationError{Field: "customerName", Reason: "must not be empty"}
	}

	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must not be empty"}
	}

	if !d.OrderType.Valid() {
		return &ValidationError{Field: "orderType", Reason: fmt.Sprintf("unknown order type %q", string(d.OrderType))}
	}

	if !d.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Reason: fmt.Sprintf("unknown payment method %q", string(d.PaymentMethod))}
	}

	return nil
}

// Notification is the server-to-client message produced by one event, shared
// by every room the event targets.
type Notification struct {
	Channel string
	Type    string
	Order   *Order
	Orders  []Order
	OrderID string
	RiderID string
	Message string
}

const (
	ChannelOrderReceived        = "order-received"
	ChannelOrderUpdated         = "order-updated"
	ChannelPaymentUpdated       = "payment-updated"
	ChannelKitchenNotification  = "kitchen-notification"
	ChannelDeliveryNotification = "delivery-notification"
	ChannelOrdersSnapshot       = "orders-snapshot"
	ChannelOrderError           = "order-error"
	ChannelServerClosing        = "server-closing"
)

// NotificationFor builds the outbound notification for a committed event.
func NotificationFor(e Event, order Order) Notification {
	switch e.Type {
	case EventOrderCreated:
		return Notification{Channel: ChannelOrderReceived, Type: "NEW_ORDER", Order: &order}
	case EventOrderStatusChanged:
		return Notification{Channel: ChannelOrderUpdated, Type: "STATUS_UPDATE", Order: &order}
	case EventPaymentStatusChanged:
		return Notification{Channel: ChannelPaymentUpdated, Type: "PAYMENT_UPDATE", Order: &order}
	case EventKitchenReady:
		return Notification{
			Channel: ChannelKitchenNotification,
			Type:    "ORDER_READY",
			OrderID: order.ID,
			Message: fmt.Sprintf("Order #%s is ready for pickup", order.ID),
		}
	case EventDeliveryPickup:
		return Notification{
			Channel: ChannelDeliveryNotification,
			Type:    "DELIVERY_PICKUP",
			OrderID: order.ID,
			RiderID: e.RiderID,
			Message: fmt.Sprintf("Order #%s picked up by rider %s", order.ID, e.RiderID),
		}
	}

	return Notification{}
}

// Envelope wraps a committed event for the cross-node broadcast channel. The
// origin node id lets subscribers drop their own publications.
type Envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
	Order  Order  `json:"order"`
}
