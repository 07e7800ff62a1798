package broadcaster

import (
	"context"

	"orderhub/internal/domain"
	"orderhub/internal/infrastructure/redis"
)

// Broadcaster publishes committed order events on a redis pub/sub channel so
// hubs on other nodes can deliver them to their local rooms.
type Broadcaster struct {
	redisClient *redis.Client
}

func NewBroadcaster(redisClient *redis.Client) *Broadcaster {
	return &Broadcaster{redisClient: redisClient}
}

func (b *Broadcaster) Broadcast(ctx context.Context, channel string, envelope domain.Envelope) error {
	return b.redisClient.Publish(ctx, channel, envelope)
}
