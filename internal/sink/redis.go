// v1
// redis.go

package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisSink caches the latest envelope per device so dashboards can
// read current values without replaying the stream.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisSink{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = deviceKey
	value, err := json.Marshal(Envelope{DeviceID: deviceID, SentAt: at, Readings: snap})
	if err != nil {
		return fail(fmt.Errorf("encode envelope: %w", err))
	}
	if err := s.client.Set(ctx, latestKey(deviceID), value, s.ttl).Err(); err != nil {
		return fail(fmt.Errorf("set latest reading: %w", err))
	}
	return ok("")
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

func latestKey(deviceID string) string {
	return "hydrosim:latest:" + deviceID
}
