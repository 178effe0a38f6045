package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/config"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/funnel"
	"github.com/redis/go-redis/v9"
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

type RedisCache struct {
	client      redis.Cmdable
	vehiclesTTL time.Duration
}

func NewRedisCache(client redis.Cmdable, vehiclesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		vehiclesTTL: vehiclesTTL,
	}
}

// GetVehicles returns nil, nil on a cache miss.
func (c *RedisCache) GetVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	data, err := c.client.Get(ctx, vehiclesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var vehicles []domain.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *RedisCache) SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	payload, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vehiclesKey(), payload, c.vehiclesTTL).Err()
}

func (c *RedisCache) InvalidateVehicles(ctx context.Context) error {
	return c.client.Del(ctx, vehiclesKey()).Err()
}

// SessionStore keeps funnel sessions in Redis. Every save refreshes the TTL,
// so an idle flow expires on its own.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ funnel.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*funnel.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, funnel.ErrSessionNotFound
		}
		return nil, err
	}

	var session funnel.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, session *funnel.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func vehiclesKey() string {
	return "cache:vehicles"
}

func sessionKey(id string) string {
	return fmt.Sprintf("funnel:session:%s", id)
}
