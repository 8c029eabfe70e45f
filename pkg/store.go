// store.go
package loadstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	statusKeyPrefix = "loadstate:ops:"
	recentKey       = "loadstate:recent"

	// DefaultRecentCap bounds the recent-updates list.
	DefaultRecentCap = 100
)

// StatusStore persists operation status records in Redis: one document per
// operation name plus a capped list of the most recent updates.
type StatusStore struct {
	RedisClient *redis.Client
	Logger      *zap.Logger
	RecentCap   int64
}

func NewStatusStore(redisClient *redis.Client, logger *zap.Logger) *StatusStore {
	return &StatusStore{
		RedisClient: redisClient,
		Logger:      logger,
		RecentCap:   DefaultRecentCap,
	}
}

// SaveChange persists the record for a state change under a fresh update ID
// and pushes it onto the recent-updates list, trimming the list to the cap.
func (s *StatusStore) SaveChange(ctx context.Context, change StateChange) (*StatusRecord, error) {
	rec := change.Record()
	rec.UpdateID = uuid.New().String()

	data, err := json.Marshal(rec)
	if err != nil {
		s.Logger.Error("Failed to marshal status record", zap.Error(err))
		return nil, ErrFailedToMarshal
	}

	key := statusKeyPrefix + rec.Name
	if err := s.RedisClient.Set(ctx, key, data, 0).Err(); err != nil {
		s.Logger.Error("Failed to save status record to Redis", zap.Error(err))
		return nil, ErrFailedToSaveStatus
	}

	if err := s.RedisClient.LPush(ctx, recentKey, data).Err(); err != nil {
		s.Logger.Error("Failed to push status record to recent list", zap.Error(err))
		return nil, ErrFailedToSaveStatus
	}
	if err := s.RedisClient.LTrim(ctx, recentKey, 0, s.RecentCap-1).Err(); err != nil {
		s.Logger.Error("Failed to trim recent list", zap.Error(err))
		return nil, ErrFailedToSaveStatus
	}

	return &rec, nil
}

// GetStatus retrieves the persisted record for one operation name.
func (s *StatusStore) GetStatus(ctx context.Context, name string) (*StatusRecord, error) {
	key := statusKeyPrefix + name
	val, err := s.RedisClient.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.Logger.Error("Failed to read status record", zap.Error(err))
		}
		return nil, ErrOperationNotFound
	}

	var rec StatusRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		s.Logger.Error("Failed to unmarshal status record", zap.Error(err))
		return nil, ErrFailedToUnmarshal
	}

	return &rec, nil
}

// ListStatuses returns the persisted record of every known operation.
func (s *StatusStore) ListStatuses(ctx context.Context) ([]StatusRecord, error) {
	pattern := fmt.Sprintf("%s*", statusKeyPrefix)
	keys, err := s.RedisClient.Keys(ctx, pattern).Result()
	if err != nil {
		s.Logger.Error("Failed to retrieve status keys", zap.Error(err))
		return nil, ErrFailedToRetrieveKeys
	}

	var records []StatusRecord
	for _, key := range keys {
		val, err := s.RedisClient.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var rec StatusRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// RecentUpdates returns up to n of the most recently persisted records,
// newest first.
func (s *StatusStore) RecentUpdates(ctx context.Context, n int64) ([]StatusRecord, error) {
	if n <= 0 || n > s.RecentCap {
		n = s.RecentCap
	}

	vals, err := s.RedisClient.LRange(ctx, recentKey, 0, n-1).Result()
	if err != nil {
		s.Logger.Error("Failed to retrieve recent updates", zap.Error(err))
		return nil, ErrFailedToRetrieveUpdates
	}

	var records []StatusRecord
	for _, val := range vals {
		var rec StatusRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// DeleteStatus removes the persisted record for one operation name. Entries
// already on the recent list are left in place.
func (s *StatusStore) DeleteStatus(ctx context.Context, name string) error {
	key := statusKeyPrefix + name
	if err := s.RedisClient.Del(ctx, key).Err(); err != nil {
		s.Logger.Error("Failed to delete status record", zap.Error(err))
		return ErrFailedToSaveStatus
	}
	return nil
}

// DeleteAll removes every persisted status record and the recent list.
func (s *StatusStore) DeleteAll(ctx context.Context) error {
	pattern := fmt.Sprintf("%s*", statusKeyPrefix)
	keys, err := s.RedisClient.Keys(ctx, pattern).Result()
	if err != nil {
		s.Logger.Error("Failed to retrieve status keys", zap.Error(err))
		return ErrFailedToRetrieveKeys
	}

	keys = append(keys, recentKey)
	if err := s.RedisClient.Del(ctx, keys...).Err(); err != nil {
		s.Logger.Error("Failed to delete status records", zap.Error(err))
		return ErrFailedToSaveStatus
	}

	return nil
}
