package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ctxKeyPrefix = "followup:ctx:"
	runKeyPrefix = "followup:run:"
)

// redisState is the StateStore for deployments with more than one process.
// The throttle reservation is a SETNX with TTL equal to the minimum
// interval, so the slot frees itself exactly when the window closes.
type redisState struct {
	rdb *redis.Client
}

func NewRedisState(rdb *redis.Client) StateStore {
	return &redisState{rdb: rdb}
}

func (s *redisState) IngestContext(ctx context.Context, leadID int64, text string) error {
	if err := s.rdb.Set(ctx, fmt.Sprintf("%s%d", ctxKeyPrefix, leadID), text, 0).Err(); err != nil {
		return fmt.Errorf("state SET: %w", err)
	}
	return nil
}

func (s *redisState) Context(ctx context.Context, leadID int64) (string, bool, error) {
	v, err := s.rdb.Get(ctx, fmt.Sprintf("%s%d", ctxKeyPrefix, leadID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("state GET: %w", err)
	}
	return v, true, nil
}

func (s *redisState) BeginRun(ctx context.Context, leadID int64, minInterval time.Duration) (bool, error) {
	key := fmt.Sprintf("%s%d", runKeyPrefix, leadID)
	set, err := s.rdb.SetNX(ctx, key, time.Now().Unix(), minInterval).Result()
	if err != nil {
		return false, fmt.Errorf("throttle SETNX: %w", err)
	}
	return set, nil
}

func (s *redisState) FailRun(ctx context.Context, leadID int64) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf("%s%d", runKeyPrefix, leadID)).Err(); err != nil {
		return fmt.Errorf("throttle DEL: %w", err)
	}
	return nil
}
