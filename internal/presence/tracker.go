package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker records which users currently hold live connections. Purely
// advisory: room membership itself lives in the hub, in process memory.
type Tracker interface {
	Connected(ctx context.Context, userID, connID string) error
	Disconnected(ctx context.Context, userID, connID string) error
}

// NewTracker builds a Redis tracker or a noop tracker when Redis is not
// configured or unreachable.
func NewTracker(addr, prefix string, ttl time.Duration) Tracker {
	if addr == "" {
		log.Printf("presence disabled, using noop: empty redis addr")
		return noopTracker{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("presence disabled, using noop: %v", err)
		_ = client.Close()
		return noopTracker{}
	}

	log.Printf("presence connected addr=%s", addr)
	return &redisTracker{client: client, prefix: prefix, ttl: ttl}
}

type redisTracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (t *redisTracker) key(userID string) string {
	return fmt.Sprintf("%s:conn:%s", t.prefix, userID)
}

func (t *redisTracker) Connected(ctx context.Context, userID, connID string) error {
	key := t.key(userID)
	if err := t.client.SAdd(ctx, key, connID).Err(); err != nil {
		return err
	}
	return t.client.Expire(ctx, key, t.ttl).Err()
}

func (t *redisTracker) Disconnected(ctx context.Context, userID, connID string) error {
	return t.client.SRem(ctx, t.key(userID), connID).Err()
}

type noopTracker struct{}

func (noopTracker) Connected(ctx context.Context, userID, connID string) error    { return nil }
func (noopTracker) Disconnected(ctx context.Context, userID, connID string) error { return nil }
