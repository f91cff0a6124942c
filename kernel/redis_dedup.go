package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedupWindow shares a dedup window across kernel restarts by
// recording envelope IDs in Redis with a TTL, rather than the fixed-count
// ring buffer DedupWindow uses in memory. The TTL substitutes for a strict
// last-K bound: envelopes rarely re-arrive after ttl has elapsed, and
// bounding by time avoids an unbounded Redis key count under bursty load.
type RedisDedupWindow struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDedupWindow builds a RedisDedupWindow. keyPrefix namespaces keys
// per agent (e.g. "dedup:<agent_id>"); ttl defaults to 10 minutes if <= 0.
func NewRedisDedupWindow(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisDedupWindow {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisDedupWindow{client: client, prefix: keyPrefix, ttl: ttl}
}

// SeenOrRecord reports whether id was already recorded; if not, records it
// with the configured TTL and returns false.
func (d *RedisDedupWindow) SeenOrRecord(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	key := fmt.Sprintf("%s:%s", d.prefix, id)
	ok, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("kernel: redis dedup: %w", err)
	}
	// SetNX returns true when the key was newly set (not previously seen).
	return !ok, nil
}
