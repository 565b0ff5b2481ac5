package quotecart

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/dvalenzuela/retrade-backend/pkg/redis"
)

// RedisAdapter persists cart snapshots in a session-scoped redis slot with a
// rolling TTL, so abandoned carts age out on their own.
type RedisAdapter struct {
	client    *pkgredis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisAdapter(client *pkgredis.Client, sessionID string, ttl time.Duration) (*RedisAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return &RedisAdapter{client: client, sessionID: sessionID, ttl: ttl}, nil
}

func (a *RedisAdapter) Load(ctx context.Context) ([]QuoteItem, error) {
	raw, err := a.client.Get(ctx, a.client.CartSnapshotKey(a.sessionID))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return decodeSnapshot([]byte(raw))
}

func (a *RedisAdapter) Save(ctx context.Context, items []QuoteItem) error {
	payload, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	if err := a.client.Set(ctx, a.client.CartSnapshotKey(a.sessionID), string(payload), a.ttl); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
