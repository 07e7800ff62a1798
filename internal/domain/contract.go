package domain

import (
	"context"

	"github.com/google/uuid"
)

// Connection is one live client session. The registry owns it exclusively;
// delivery goes through its Messenger.
type Connection struct {
	ID        uuid.UUID
	Messenger Messenger
}

type Registry interface {
	Register(ctx context.Context, conn Connection) error
	// Join is idempotent and a silent no-op for unknown connections.
	Join(ctx context.Context, connID uuid.UUID, restaurantID string, role Role) error
	Leave(ctx context.Context, connID uuid.UUID, restaurantID string, role Role) error
	// Unregister removes the connection from every room. Safe to call twice.
	Unregister(ctx context.Context, connID uuid.UUID) error
	Get(ctx context.Context, connID uuid.UUID) (Connection, error)
	// MembersOf returns a snapshot copy, safe to iterate during delivery.
	MembersOf(ctx context.Context, restaurantID string, role Role) ([]Connection, error)
	Connections(ctx context.Context) ([]Connection, error)
}

type Messenger interface {
	Send(ctx context.Context, n Notification) error
	SendError(ctx context.Context, message string) error
	SendServerClosing(ctx context.Context) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (Order, error)
	UpdateOrderPaymentStatus(ctx context.Context, orderID string, status PaymentStatus) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	GetOpenOrders(ctx context.Context, restaurantID string) ([]Order, error)
}

// Broadcaster publishes committed events to the cross-node channel so hubs on
// other nodes can deliver to their local rooms.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel string, envelope Envelope) error
}

// AuditPublisher streams committed events to the analytics pipeline,
// best-effort.
type AuditPublisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}
