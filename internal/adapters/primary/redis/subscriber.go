package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"orderhub/internal/domain"
	"orderhub/internal/infrastructure/redis"
)

// RemoteDeliverer fans an event committed on another node out to local rooms.
type RemoteDeliverer interface {
	HandleRemote(ctx context.Context, envelope domain.Envelope) error
}

type Subscriber struct {
	redisClient *redis.Client
	hub         RemoteDeliverer
}

func NewSubscriber(redisClient *redis.Client, hub RemoteDeliverer) *Subscriber {
	return &Subscriber{
		redisClient: redisClient,
		hub:         hub,
	}
}

func (s *Subscriber) Subscribe(ctx context.Context, channel string) error {
	subscriber := s.redisClient.Subscribe(ctx, channel)

	if err := subscriber(func(msg redis.Message) error {
		var envelope domain.Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			return fmt.Errorf("json.Unmarshal: %w", err)
		}

		if err := s.hub.HandleRemote(ctx, envelope); err != nil {
			return fmt.Errorf("hub.HandleRemote: %w", err)
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "error subscribing to redis", "error", err)
		return fmt.Errorf("subscriber: %w", err)
	}

	return nil
}
