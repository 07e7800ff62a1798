package messenger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"orderhub/internal/domain"
)

// Messenger pushes server messages down one WebSocket connection. Writes are
// serialized with a mutex; gorilla/websocket allows a single writer at a time.
type Messenger struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewMessenger(conn *websocket.Conn) *Messenger {
	return &Messenger{conn: conn}
}

type serverMessage struct {
	Event string  `json:"event"`
	Data  payload `json:"data"`
}

type payload struct {
	Type    string          `json:"type,omitempty"`
	Order   *domain.Order   `json:"order,omitempty"`
	Orders  []domain.Order  `json:"orders,omitempty"`
	OrderID string          `json:"orderId,omitempty"`
	RiderID string          `json:"riderId,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (m *Messenger) Send(ctx context.Context, n domain.Notification) error {
	return m.write(serverMessage{
		Event: n.Channel,
		Data: payload{
			Type:    n.Type,
			Order:   n.Order,
			Orders:  n.Orders,
			OrderID: n.OrderID,
			RiderID: n.RiderID,
			Message: n.Message,
		},
	})
}

// SendError is unicast to the originating connection only.
func (m *Messenger) SendError(ctx context.Context, message string) error {
	return m.write(serverMessage{
		Event: domain.ChannelOrderError,
		Data:  payload{Message: message},
	})
}

func (m *Messenger) SendServerClosing(ctx context.Context) error {
	return m.write(serverMessage{
		Event: domain.ChannelServerClosing,
		Data:  payload{Message: "server is closing"},
	})
}

func (m *Messenger) write(msg serverMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("conn.WriteJSON: %w", err)
	}

	return nil
}
