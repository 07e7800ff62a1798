package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"orderhub/internal/domain"
)

// Publisher streams committed order events to Kafka for the analytics
// pipeline. Messages are keyed by order id so consumers see one order's
// events in order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

type auditRecord struct {
	Type          domain.EventType     `json:"type"`
	OrderID       string               `json:"order_id"`
	RestaurantID  string               `json:"restaurant_id"`
	Status        domain.OrderStatus   `json:"status,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
	RiderID       string               `json:"rider_id,omitempty"`
	Total         float64              `json:"total"`
}

func (p *Publisher) Publish(ctx context.Context, envelope domain.Envelope) error {
	record := auditRecord{
		Type:          envelope.Event.Type,
		OrderID:       envelope.Order.ID,
		RestaurantID:  envelope.Order.RestaurantID,
		Status:        envelope.Order.Status,
		PaymentStatus: envelope.Order.PaymentStatus,
		RiderID:       envelope.Event.RiderID,
		Total:         envelope.Order.Total,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(envelope.Order.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}
