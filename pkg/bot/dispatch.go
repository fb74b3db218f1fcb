package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taxidispatch/config"
)

const (
	dispatchKeyPrefix = "notify:order:%d"
	// Orders should resolve well within 7 days.
	dispatchKeyTTL = 7 * 24 * time.Hour
)

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
}

// DispatchStore remembers which orders were already announced to the driver
// channel, so restarts and retries do not double-post.
type DispatchStore struct {
	redis *redis.Client
}

func NewDispatchStore(rdb *redis.Client) *DispatchStore {
	return &DispatchStore{redis: rdb}
}

func (s *DispatchStore) AlreadyDispatched(ctx context.Context, orderID int64) (bool, error) {
	_, err := s.redis.Get(ctx, dispatchKey(orderID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *DispatchStore) RecordDispatch(ctx context.Context, orderID int64) error {
	return s.redis.Set(ctx, dispatchKey(orderID), time.Now().UTC().Format(time.RFC3339), dispatchKeyTTL).Err()
}

func dispatchKey(orderID int64) string {
	return fmt.Sprintf(dispatchKeyPrefix, orderID)
}
