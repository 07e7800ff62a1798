package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"orderhub/internal/adapters/secondary/messenger"
	"orderhub/internal/domain"
)

type HubService interface {
	Register(ctx context.Context, conn domain.Connection) error
	Join(ctx context.Context, connID uuid.UUID, restaurantID string, role domain.Role) error
	Dispatch(ctx context.Context, event domain.Event) (domain.Order, error)
	Disconnect(ctx context.Context, connID uuid.UUID) error
}

// Handler upgrades client connections and translates inbound intents into hub
// calls. Validation and persistence failures go back to the originating
// connection only; they are never broadcast.
type Handler struct {
	hub      HubService
	upgrader websocket.Upgrader
	validate *validator.Validate
}

func NewHandler(hub HubService, allowedOrigins []string) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}

				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "error upgrading connection", "error", err)
		return
	}
	defer socket.Close()

	ctx := r.Context()

	conn := domain.Connection{
		ID:        uuid.New(),
		Messenger: messenger.NewMessenger(socket),
	}

	if err := h.hub.Register(ctx, conn); err != nil {
		slog.ErrorContext(ctx, "error registering connection", "error", err)
		return
	}

	slog.DebugContext(ctx, "client connected", "connection_id", conn.ID)

	defer func() {
		// Disconnect must survive request-context cancellation.
		if err := h.hub.Disconnect(context.WithoutCancel(ctx), conn.ID); err != nil {
			slog.ErrorContext(ctx, "error disconnecting client", "connection_id", conn.ID, "error", err)
		}

		slog.DebugContext(ctx, "client disconnected", "connection_id", conn.ID)
	}()

	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.Messenger.SendError(ctx, "malformed message")
			continue
		}

		if err := h.handle(ctx, conn, msg); err != nil {
			_ = conn.Messenger.SendError(ctx, err.Error())
		}
	}
}

func (h *Handler) handle(ctx context.Context, conn domain.Connection, msg clientMessage) error {
	switch msg.Event {
	case intentJoinKitchen:
		return h.join(ctx, conn, msg.Data, domain.RoleKitchen)
	case intentJoinWaiter:
		return h.join(ctx, conn, msg.Data, domain.RoleWaiter)
	case intentNewOrder:
		var p newOrderPayload
		if err := h.decode(msg.Data, &p); err != nil {
			return err
		}

		_, err := h.hub.Dispatch(ctx, domain.Event{
			Type:         domain.EventOrderCreated,
			RestaurantID: p.RestaurantID,
			Draft:        p.draft(),
		})
		return err
	case intentUpdateOrderStatus:
		var p statusUpdatePayload
		if err := h.decode(msg.Data, &p); err != nil {
			return err
		}

		_, err := h.hub.Dispatch(ctx, domain.Event{
			Type:         domain.EventOrderStatusChanged,
			OrderID:      p.OrderID,
			RestaurantID: p.RestaurantID,
			Status:       domain.OrderStatus(p.Status),
		})
		return err
	case intentUpdatePaymentStatus:
		var p paymentUpdatePayload
		if err := h.decode(msg.Data, &p); err != nil {
			return err
		}

		_, err := h.hub.Dispatch(ctx, domain.Event{
			Type:          domain.EventPaymentStatusChanged,
			OrderID:       p.OrderID,
			RestaurantID:  p.RestaurantID,
			PaymentStatus: domain.PaymentStatus(p.PaymentStatus),
		})
		return err
	case intentKitchenReady:
		var p readyPayload
		if err := h.decode(msg.Data, &p); err != nil {
			return err
		}

		_, err := h.hub.Dispatch(ctx, domain.Event{
			Type:         domain.EventKitchenReady,
			OrderID:      p.OrderID,
			RestaurantID: p.RestaurantID,
		})
		return err
	case intentDeliveryPickup:
		var p pickupPayload
		if err := h.decode(msg.Data, &p); err != nil {
			return err
		}

		_, err := h.hub.Dispatch(ctx, domain.Event{
			Type:         domain.EventDeliveryPickup,
			OrderID:      p.OrderID,
			RestaurantID: p.RestaurantID,
			RiderID:      p.RiderID,
		})
		return err
	default:
		return fmt.Errorf("unknown intent %q", msg.Event)
	}
}

func (h *Handler) join(ctx context.Context, conn domain.Connection, data json.RawMessage, role domain.Role) error {
	var p joinPayload
	if err := h.decode(data, &p); err != nil {
		return err
	}

	return h.hub.Join(ctx, conn.ID, p.RestaurantID, role)
}

func (h *Handler) decode(data json.RawMessage, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	return nil
}
