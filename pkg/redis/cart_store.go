package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/redis/go-redis/v9"
)

// CartSnapshotStore keeps the latest cart snapshot of each session under
// cart:<session_id>, expiring with the session.
type CartSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartSnapshotStore(c *redis.Client, ttl time.Duration) *CartSnapshotStore {
	return &CartSnapshotStore{client: c, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *CartSnapshotStore) Save(ctx context.Context, sessionID string, state cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	return s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err()
}

// Load reports found=false when nothing is saved for the session
func (s *CartSnapshotStore) Load(ctx context.Context, sessionID string) (cart.State, bool, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return cart.State{}, false, nil
	}
	if err != nil {
		return cart.State{}, false, err
	}

	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return cart.State{}, false, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return state, true, nil
}

func (s *CartSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}
