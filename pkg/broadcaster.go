package loadstate

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// UpdatesChannel is the Pub/Sub channel every status update is published on.
const UpdatesChannel = "loadstate:updates"

// Broadcaster fans status records out to live subscribers via Redis Pub/Sub.
type Broadcaster struct {
	RedisClient *redis.Client
	Logger      *zap.Logger
}

func NewBroadcaster(redisClient *redis.Client, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		RedisClient: redisClient,
		Logger:      logger,
	}
}

func (b *Broadcaster) Publish(ctx context.Context, rec StatusRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		b.Logger.Error("Failed to marshal status record", zap.Error(err))
		return ErrFailedToMarshal
	}

	if err := b.RedisClient.Publish(ctx, UpdatesChannel, data).Err(); err != nil {
		b.Logger.Error("Failed to publish status update", zap.Error(err))
		return ErrFailedToPublishUpdate
	}

	b.Logger.Debug("Status update published",
		zap.String("operation", rec.Name),
		zap.String("update_id", rec.UpdateID))
	return nil
}

// Subscribe relays every published record into ch until ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, ch chan<- StatusRecord) error {
	pubsub := b.RedisClient.Subscribe(ctx, UpdatesChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-pubsub.Channel():
			var rec StatusRecord
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				b.Logger.Error("Failed to unmarshal status update", zap.Error(err))
				continue
			}

			ch <- rec
		}
	}
}
