package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"orderhub/internal/adapters/primary/ws"
	"orderhub/internal/domain"
)

type joinCall struct {
	connID       uuid.UUID
	restaurantID string
	role         domain.Role
}

type fakeHub struct {
	joins       chan joinCall
	events      chan domain.Event
	disconnects chan uuid.UUID
	dispatchErr error
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		joins:       make(chan joinCall, 8),
		events:      make(chan domain.Event, 8),
		disconnects: make(chan uuid.UUID, 8),
	}
}

func (h *fakeHub) Register(ctx context.Context, conn domain.Connection) error {
	return nil
}

func (h *fakeHub) Join(ctx context.Context, connID uuid.UUID, restaurantID string, role domain.Role) error {
	h.joins <- joinCall{connID: connID, restaurantID: restaurantID, role: role}
	return nil
}

func (h *fakeHub) Dispatch(ctx context.Context, event domain.Event) (domain.Order, error) {
	if h.dispatchErr != nil {
		return domain.Order{}, h.dispatchErr
	}

	h.events <- event
	return domain.Order{ID: "order-1", RestaurantID: event.RestaurantID}, nil
}

func (h *fakeHub) Disconnect(ctx context.Context, connID uuid.UUID) error {
	h.disconnects <- connID
	return nil
}

func dial(t *testing.T, hub ws.HubService) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(ws.NewHandler(hub, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func expectJoin(t *testing.T, hub *fakeHub) joinCall {
	t.Helper()

	select {
	case call := <-hub.joins:
		return call
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for join")
		return joinCall{}
	}
}

func expectEvent(t *testing.T, hub *fakeHub) domain.Event {
	t.Helper()

	select {
	case event := <-hub.events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

type receivedMessage struct {
	Event string `json:"event"`
	Data  struct {
		Message string `json:"message"`
	} `json:"data"`
}

func expectMessage(t *testing.T, conn *websocket.Conn) receivedMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	var msg receivedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHandler_Join(t *testing.T) {
	t.Parallel()

	hub := newFakeHub()
	conn := dial(t, hub)

	t.Run("it should join the kitchen room", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "join-kitchen",
			"data":  map[string]any{"restaurantId": "restaurant-1"},
		}))

		call := expectJoin(t, hub)
		require.Equal(t, "restaurant-1", call.restaurantID)
		require.Equal(t, domain.RoleKitchen, call.role)
	})

	t.Run("it should join the waiter room", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "join-waiter",
			"data":  map[string]any{"restaurantId": "restaurant-1"},
		}))

		call := expectJoin(t, hub)
		require.Equal(t, domain.RoleWaiter, call.role)
	})

	t.Run("it should reject a join without a restaurant id", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "join-kitchen",
			"data":  map[string]any{},
		}))

		msg := expectMessage(t, conn)
		require.Equal(t, "order-error", msg.Event)
	})
}

func TestHandler_Intents(t *testing.T) {
	t.Parallel()

	hub := newFakeHub()
	conn := dial(t, hub)

	t.Run("it should dispatch a new order", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "new-order",
			"data": map[string]any{
				"restaurantId":  "restaurant-1",
				"customerName":  "amara",
				"customerPhone": "0771234567",
				"orderType":     "DINE_IN",
				"paymentMethod": "CASH",
				"items": []map[string]any{
					{"menuItemId": "item-1", "quantity": 2, "price": 1200},
				},
			},
		}))

		event := expectEvent(t, hub)
		require.Equal(t, domain.EventOrderCreated, event.Type)
		require.Equal(t, "restaurant-1", event.RestaurantID)
		require.NotNil(t, event.Draft)
		require.Len(t, event.Draft.Items, 1)
	})

	t.Run("it should dispatch a status update", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "update-order-status",
			"data": map[string]any{
				"orderId":      "order-1",
				"restaurantId": "restaurant-1",
				"status":       "CONFIRMED",
			},
		}))

		event := expectEvent(t, hub)
		require.Equal(t, domain.EventOrderStatusChanged, event.Type)
		require.Equal(t, domain.StatusConfirmed, event.Status)
	})

	t.Run("it should dispatch a payment update", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "update-payment-status",
			"data": map[string]any{
				"orderId":       "order-1",
				"restaurantId":  "restaurant-1",
				"paymentStatus": "PAID",
			},
		}))

		event := expectEvent(t, hub)
		require.Equal(t, domain.EventPaymentStatusChanged, event.Type)
		require.Equal(t, domain.PaymentPaid, event.PaymentStatus)
	})

	t.Run("it should dispatch a delivery pickup with the rider id", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "delivery-pickup",
			"data": map[string]any{
				"orderId":      "order-1",
				"restaurantId": "restaurant-1",
				"riderId":      "rider-7",
			},
		}))

		event := expectEvent(t, hub)
		require.Equal(t, domain.EventDeliveryPickup, event.Type)
		require.Equal(t, "rider-7", event.RiderID)
	})
}

func TestHandler_Errors(t *testing.T) {
	t.Parallel()

	t.Run("it should report an incomplete order to the sender only", func(t *testing.T) {
		hub := newFakeHub()
		conn := dial(t, hub)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "new-order",
			"data":  map[string]any{"restaurantId": "restaurant-1"},
		}))

		msg := expectMessage(t, conn)
		require.Equal(t, "order-error", msg.Event)
		require.Empty(t, hub.events)
	})

	t.Run("it should report a dispatch failure to the sender", func(t *testing.T) {
		hub := newFakeHub()
		hub.dispatchErr = &domain.PersistenceError{Op: "update order status", Err: domain.ErrOrderNotFound}
		conn := dial(t, hub)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "update-order-status",
			"data": map[string]any{
				"orderId":      "order-9",
				"restaurantId": "restaurant-1",
				"status":       "CONFIRMED",
			},
		}))

		msg := expectMessage(t, conn)
		require.Equal(t, "order-error", msg.Event)
		require.Contains(t, msg.Data.Message, "order not found")
	})

	t.Run("it should report an unknown intent", func(t *testing.T) {
		hub := newFakeHub()
		conn := dial(t, hub)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "make-coffee",
			"data":  map[string]any{},
		}))

		msg := expectMessage(t, conn)
		require.Equal(t, "order-error", msg.Event)
	})
}

func TestHandler_Disconnect(t *testing.T) {
	t.Parallel()

	hub := newFakeHub()
	conn := dial(t, hub)

	require.NoError(t, conn.Close())

	select {
	case <-hub.disconnects:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for disconnect")
	}
}
