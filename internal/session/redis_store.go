package session

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/redisclient"
	"storefront/internal/util"

	"go.uber.org/zap"
)

const (
	lockTTL      = 10 * time.Second
	lockRetry    = 25 * time.Millisecond
	lockWaitMax  = 5 * time.Second
	sessionScope = "session"
)

// RedisStore keeps JSON session snapshots in Redis with an idle TTL, so
// several storefront replicas can serve the same visitor.
type RedisStore struct {
	client *redisclient.Client
	menu   *catalog.Catalog
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store; decoded sessions use menu
func NewRedisStore(client *redisclient.Client, menu *catalog.Catalog, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, menu: menu, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.client.Key(sessionScope, id)
}

// Load fetches and decodes the session
func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, r.key(id))
	if redisclient.IsNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return Decode(data, r.menu)
}

// Save writes the snapshot and refreshes its TTL
func (r *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := state.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", state.ID(), err)
	}
	if err := r.client.Set(ctx, r.key(state.ID()), data, r.ttl); err != nil {
		return fmt.Errorf("failed to save session %s: %w", state.ID(), err)
	}
	return nil
}

// Delete removes the session
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id))
}

// Lock takes the per-session distributed lock, polling until it is free or
// ctx is done.
func (r *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockWaitMax)
	defer cancel()

	for {
		token, ok, err := r.client.AcquireLock(ctx, id, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock session %s: %w", id, err)
		}
		if ok {
			return func() {
				releaseCtx, releaseCancel := context.WithTimeout(context.Background(), time.Second)
				defer releaseCancel()
				released, err := r.client.ReleaseLock(releaseCtx, id, token)
				if err != nil || !released {
					util.GetLogger().Warn("Session lock lost before release",
						zap.String("session_id", id),
						zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to lock session %s: %w", id, ctx.Err())
		case <-time.After(lockRetry):
		}
	}
}
