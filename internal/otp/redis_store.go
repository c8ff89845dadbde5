package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "otp:v1:"

	// evictionGrace keeps the record alive slightly past its logical expiry
	// so a stale-but-present code is rejected by the explicit timestamp
	// comparison rather than silently vanishing at the exact boundary.
	evictionGrace = 5 * time.Second
)

// RedisStore persists OTP records in Redis. The key TTL provides the
// unconditional store-level eviction; once it lapses the record is
// indistinguishable from one that never existed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed OTP store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func storeKey(channel Channel, key string) string {
	return keyPrefix + string(channel) + ":" + key
}

// Issue writes the record, replacing any live record for the same key. SET
// overwrites atomically, which is what enforces the one-live-code invariant.
func (s *RedisStore) Issue(ctx context.Context, rec Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("otp: encode record: %w", err)
	}
	if err := s.client.Set(ctx, storeKey(rec.Channel, rec.Key()), payload, ttl+evictionGrace).Err(); err != nil {
		return fmt.Errorf("otp: store record: %w", err)
	}
	return nil
}

// Find looks up the live record for a channel key. An evicted record reports
// ok=false, same as one never issued.
func (s *RedisStore) Find(ctx context.Context, channel Channel, key string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, storeKey(channel, key)).Bytes()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("otp: lookup record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("otp: decode record: %w", err)
	}
	return rec, true, nil
}

// Consume deletes the record after a successful verification.
func (s *RedisStore) Consume(ctx context.Context, channel Channel, key string) error {
	if err := s.client.Del(ctx, storeKey(channel, key)).Err(); err != nil {
		return fmt.Errorf("otp: consume record: %w", err)
	}
	return nil
}
