package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/funnel"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/gallery"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the cache uses.
type fakeRedis struct {
	redis.Cmdable
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache_Vehicles(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	c := NewRedisCache(client, time.Minute)

	cached, err := c.GetVehicles(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)

	v := domain.Vehicle{ID: 1, Make: "Toyota", Model: "Vios", DailyRateCents: 250000}
	v.Images = gallery.FromItems([]gallery.Item{{ID: "a", URL: "https://cdn/a.jpg", Status: gallery.StatusCommitted}})
	require.NoError(t, c.SetVehicles(ctx, []domain.Vehicle{v}))
	assert.Equal(t, time.Minute, client.ttls[vehiclesKey()])

	cached, err = c.GetVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Vios", cached[0].Model)
	assert.Equal(t, v.Images.Items(), cached[0].Images.Items())

	require.NoError(t, c.InvalidateVehicles(ctx))
	cached, err = c.GetVehicles(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewSessionStore(client, 2*time.Hour)

	_, err := store.Load(ctx, "s1")
	assert.True(t, errors.Is(err, funnel.ErrSessionNotFound))

	session := funnel.NewSession("s1")
	session.Advance(funnel.AtCheckout)
	session.Draft.VehicleID = 3
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, 2*time.Hour, client.ttls[sessionKey("s1")])

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, funnel.AtCheckout, loaded.Progress)
	assert.Equal(t, int64(3), loaded.Draft.VehicleID)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.True(t, errors.Is(err, funnel.ErrSessionNotFound))
}

func TestSessionStore_ConnectionError(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("dial tcp: connection refused")
	store := NewSessionStore(client, time.Hour)

	_, err := store.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, funnel.ErrSessionNotFound))
}
