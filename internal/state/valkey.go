package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const valkeyKeyPrefix = "source:"

type ValkeyStore struct {
	client *redis.Client
}

func NewValkeyStore(addr, password string) (*ValkeyStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return &ValkeyStore{client: rdb}, nil
}

func (s *ValkeyStore) GetLastRun(ctx context.Context, sourceURL string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := s.client.Get(ctx, valkeyKeyPrefix+sourceURL).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, fmt.Errorf("failed to read last run: %w", err)
	}

	return parseTimestamp(val)
}

func (s *ValkeyStore) RecordRun(ctx context.Context, sourceURL string, t time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, valkeyKeyPrefix+sourceURL, formatTimestamp(t), 0).Err(); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Close() error {
	return s.client.Close()
}
