package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Hub is the single writer-and-broadcaster for order events: it validates an
// event, persists the underlying mutation, then fans the event out to the
// rooms it targets. It is constructed once at startup and injected into the
// transport handlers.
type Hub struct {
	registry    Registry
	orders      OrderStore
	broadcaster Broadcaster
	audit       AuditPublisher

	nodeID  string
	channel string
	locks   *keyedMutex
}

type HubOption func(*Hub)

// WithBroadcaster wires the cross-node broadcast channel.
func WithBroadcaster(b Broadcaster, channel string) HubOption {
	return func(h *Hub) {
		h.broadcaster = b
		h.channel = channel
	}
}

// WithAuditPublisher wires the best-effort analytics stream.
func WithAuditPublisher(p AuditPublisher) HubOption {
	return func(h *Hub) {
		h.audit = p
	}
}

func NewHub(registry Registry, orders OrderStore, opts ...HubOption) *Hub {
	h := &Hub{
		registry: registry,
		orders:   orders,
		nodeID:   uuid.NewString(),
		locks:    newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Hub) Register(ctx context.Context, conn Connection) error {
	if err := h.registry.Register(ctx, conn); err != nil {
		return fmt.Errorf("registry.Register: %w", err)
	}

	return nil
}

// Join adds the connection to the (restaurant, role) room and backfills it
// with the restaurant's open orders, so a reconnecting client converges to
// the current state instead of depending on having caught every event.
func (h *Hub) Join(ctx context.Context, connID uuid.UUID, restaurantID string, role Role) error {
	if restaurantID == "" {
		return &ValidationError{Field: "restaurantId", Reason: "must not be empty"}
	}

	if !role.Valid() {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", string(role))}
	}

	if err := h.registry.Join(ctx, connID, restaurantID, role); err != nil {
		return fmt.Errorf("registry.Join: %w", err)
	}

	conn, err := h.registry.Get(ctx, connID)
	if err != nil {
		if errors.Is(err, ErrUnknownConnection) {
			return nil
		}

		return fmt.Errorf("registry.Get: %w", err)
	}

	orders, err := h.orders.GetOpenOrders(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("orders.GetOpenOrders: %w", err)
	}

	snapshot := Notification{Channel: ChannelOrdersSnapshot, Type: "SNAPSHOT", Orders: orders}
	if err := conn.Messenger.Send(ctx, snapshot); err != nil {
		slog.WarnContext(ctx, "failed to deliver backfill snapshot", "connection_id", connID, "error", err)
	}

	return nil
}

func (h *Hub) Leave(ctx context.Context, connID uuid.UUID, restaurantID string, role Role) error {
	if err := h.registry.Leave(ctx, connID, restaurantID, role); err != nil {
		return fmt.Errorf("registry.Leave: %w", err)
	}

	return nil
}

func (h *Hub) Disconnect(ctx context.Context, connID uuid.UUID) error {
	if err := h.registry.Unregister(ctx, connID); err != nil {
		return fmt.Errorf("registry.Unregister: %w", err)
	}

	return nil
}

// Dispatch validates the event, persists the underlying mutation, then fans
// the event out. Persistence failure aborts before any delivery; consumers
// never observe a notification for state that was not saved. Dispatches for
// the same order are serialized so rooms observe mutations in commit order.
func (h *Hub) Dispatch(ctx context.Context, event Event) (Order, error) {
	if err := event.Validate(); err != nil {
		return Order{}, err
	}

	unlock := h.locks.Lock(h.lockKey(event))
	defer unlock()

	order, err := h.persist(ctx, event)
	if err != nil {
		return Order{}, err
	}

	event.OrderID = order.ID
	event.RestaurantID = order.RestaurantID

	h.deliverLocal(ctx, event, order)

	envelope := Envelope{Origin: h.nodeID, Event: event, Order: order}

	if h.broadcaster != nil {
		if err := h.broadcaster.Broadcast(ctx, h.channel, envelope); err != nil {
			slog.ErrorContext(ctx, "failed to broadcast event to other nodes", "event_type", event.Type, "error", err)
		}
	}

	if h.audit != nil {
		if err := h.audit.Publish(ctx, envelope); err != nil {
			slog.ErrorContext(ctx, "failed to publish event to audit stream", "event_type", event.Type, "error", err)
		}
	}

	return order, nil
}

// HandleRemote delivers an event committed on another node to local rooms.
// Own publications come back on the channel and are dropped by origin.
func (h *Hub) HandleRemote(ctx context.Context, envelope Envelope) error {
	if envelope.Origin == h.nodeID {
		return nil
	}

	h.deliverLocal(ctx, envelope.Event, envelope.Order)
	return nil
}

// OpenOrders exposes the backfill query to the REST surface.
func (h *Hub) OpenOrders(ctx context.Context, restaurantID string) ([]Order, error) {
	if restaurantID == "" {
		return nil, &ValidationError{Field: "restaurantId", Reason: "must not be empty"}
	}

	orders, err := h.orders.GetOpenOrders(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("orders.GetOpenOrders: %w", err)
	}

	return orders, nil
}

// Close notifies every connected client that the server is going away.
func (h *Hub) Close(ctx context.Context) error {
	conns, err := h.registry.Connections(ctx)
	if err != nil {
		return fmt.Errorf("registry.Connections: %w", err)
	}

	for _, conn := range conns {
		if err := conn.Messenger.SendServerClosing(ctx); err != nil {
			slog.WarnContext(ctx, "failed to notify connection of shutdown", "connection_id", conn.ID, "error", err)
		}
	}

	return nil
}

func (h *Hub) lockKey(event Event) string {
	// New orders have no id yet; serialize those per restaurant.
	if event.OrderID == "" {
		return "restaurant:" + event.RestaurantID
	}

	return "order:" + event.OrderID
}

func (h *Hub) persist(ctx context.Context, event Event) (Order, error) {
	switch event.Type {
	case EventOrderCreated:
		order, err := h.orders.CreateOrder(ctx, *event.Draft)
		if err != nil {
			return Order{}, fmt.Errorf("orders.CreateOrder: %w", err)
		}

		return order, nil
	case EventOrderStatusChanged:
		order, err := h.orders.UpdateOrderStatus(ctx, event.OrderID, event.Status)
		if err != nil {
			return Order{}, fmt.Errorf("orders.UpdateOrderStatus: %w", err)
		}

		return order, nil
	case EventPaymentStatusChanged:
		order, err := h.orders.UpdateOrderPaymentStatus(ctx, event.OrderID, event.PaymentStatus)
		if err != nil {
			return Order{}, fmt.Errorf("orders.UpdateOrderPaymentStatus: %w", err)
		}

		return order, nil
	default:
		// Informational events mutate nothing but still require the order
		// to exist.
		order, err := h.orders.GetOrder(ctx, event.OrderID)
		if err != nil {
			return Order{}, fmt.Errorf("orders.GetOrder: %w", err)
		}

		return order, nil
	}
}

// deliverLocal fans the event out to every member of its target rooms.
// Delivery is best-effort per connection: one dead socket must not block the
// rest of the room.
func (h *Hub) deliverLocal(ctx context.Context, event Event, order Order) {
	notification := NotificationFor(event, order)

	for _, role := range event.Type.TargetRoles() {
		members, err := h.registry.MembersOf(ctx, order.RestaurantID, role)
		if err != nil {
			slog.ErrorContext(ctx, "failed to resolve room members", "restaurant_id", order.RestaurantID, "role", role, "error", err)
			continue
		}

		for _, conn := range members {
			if err := conn.Messenger.Send(ctx, notification); err != nil {
				slog.WarnContext(ctx, "failed to deliver notification",
					"connection_id", conn.ID, "restaurant_id", order.RestaurantID, "role", role, "error", err)
			}
		}
	}
}
