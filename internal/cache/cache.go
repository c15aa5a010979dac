package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager is a small JSON cache-aside layer over redis. When disabled it
// behaves as an always-miss cache.
type Manager struct {
	client  *redis.Client
	enabled bool
}

func NewManager(addr, password string, db int, enabled bool) *Manager {
	var client *redis.Client
	if enabled {
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
	}
	return &Manager{client: client, enabled: enabled}
}

// Miss is returned by Get when the key is absent or caching is disabled
var Miss = redis.Nil

func (m *Manager) Get(ctx context.Context, key string, out any) error {
	if !m.enabled {
		return Miss
	}
	data, err := m.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), out)
}

func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !m.enabled {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, key, data, ttl).Err()
}

func (m *Manager) Key(parts ...string) string {
	return "orianna:" + strings.Join(parts, ":")
}
