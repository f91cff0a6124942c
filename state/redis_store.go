package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agentmesh/core/envelope"
)

// RedisStore is a fast, non-event-sourced state cache backed by go-redis.
// It implements the plain Store contract only: Redis keys carry no
// built-in optimistic-concurrency primitive cheap enough to expose here, so
// version-sensitive agents should use DocumentStore or MongoDocumentStore
// instead.
type RedisStore[S any] struct {
	client    *redis.Client
	stateType string
	keyPrefix string
}

// NewRedisStore creates a RedisStore for stateType. keyPrefix namespaces all
// keys this store touches (e.g. "core").
func NewRedisStore[S any](client *redis.Client, stateType, keyPrefix string) *RedisStore[S] {
	return &RedisStore[S]{client: client, stateType: stateType, keyPrefix: keyPrefix}
}

func (r *RedisStore[S]) key(id envelope.AgentID) string {
	return fmt.Sprintf("%s:state:%s:%s", r.keyPrefix, r.stateType, id.String())
}

func (r *RedisStore[S]) Load(ctx context.Context, id envelope.AgentID) (S, bool, error) {
	var zero S

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("state: redis load: %w", err)
	}

	out, err := decodeState[S](data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (r *RedisStore[S]) Save(ctx context.Context, id envelope.AgentID, st S) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(id), data, 0).Err(); err != nil {
		return fmt.Errorf("state: redis save: %w", err)
	}
	return nil
}

func (r *RedisStore[S]) Delete(ctx context.Context, id envelope.AgentID) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("state: redis delete: %w", err)
	}
	return nil
}

func (r *RedisStore[S]) Exists(ctx context.Context, id envelope.AgentID) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("state: redis exists: %w", err)
	}
	return n > 0, nil
}

var _ Store[struct{}] = (*RedisStore[struct{}])(nil)
