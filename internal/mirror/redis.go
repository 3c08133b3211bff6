package mirror

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/saathigo/internal/models"
)

// RedisMirror mirrors the active pool into Redis: pickup coordinates go
// into a GEO key, request metadata into per-request hashes. Monitoring
// dashboards read it; the matching engine only ever writes. Every call is
// best-effort, errors are swallowed.
type RedisMirror struct {
	client *redis.Client
	key    string
}

func NewRedisMirror(addr, password, key string) *RedisMirror {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisMirror{client: c, key: key}
}

func (m *RedisMirror) Upsert(req models.RideRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = m.client.GeoAdd(ctx, m.key, &redis.GeoLocation{
		Longitude: req.PickupCoords.Lon,
		Latitude:  req.PickupCoords.Lat,
		Name:      req.ID,
	}).Result()
	_ = m.client.HSet(ctx, metaKey(req.ID), map[string]interface{}{
		"user":       req.UserName,
		"status":     string(req.Status),
		"women_only": strconv.FormatBool(req.WomenOnly),
		"luggage":    strconv.FormatBool(req.Luggage),
		"created":    req.CreatedAt.Format(time.RFC3339),
	}).Err()
}

func (m *RedisMirror) Remove(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = m.client.ZRem(ctx, m.key, id).Result()
	_, _ = m.client.Del(ctx, metaKey(id)).Result()
}

func (m *RedisMirror) Close() error { return m.client.Close() }

func metaKey(id string) string { return "request:meta:" + id }
