package siwe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-errors"
)

const redisNoncePrefix = "siwe:nonce:"

// RedisNonceStore keeps challenge nonces in Redis so multiple instances can
// share the issuance/verification flow. Expiry rides on the Redis TTL.
type RedisNonceStore struct {
	client *redis.Client
	now    func() time.Time
}

// RedisNonceStoreOption customizes store construction.
type RedisNonceStoreOption func(*RedisNonceStore)

// WithRedisNonceClock injects a custom clock (useful for tests).
func WithRedisNonceClock(clock func() time.Time) RedisNonceStoreOption {
	return func(s *RedisNonceStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewRedisNonceStore wraps an existing Redis client.
func NewRedisNonceStore(client *redis.Client, opts ...RedisNonceStoreOption) *RedisNonceStore {
	s := &RedisNonceStore{
		client: client,
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Save stores the record under the nonce key with a TTL matching its expiry.
func (s *RedisNonceStore) Save(ctx context.Context, nonce string, record NonceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode nonce record")
	}

	ttl := record.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		ttl = NonceTTL
	}

	if err := s.client.Set(ctx, redisNoncePrefix+nonce, data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to persist nonce record")
	}

	return nil
}

// Get returns the record for a nonce; a missing key means unknown or expired.
func (s *RedisNonceStore) Get(ctx context.Context, nonce string) (NonceRecord, error) {
	data, err := s.client.Get(ctx, redisNoncePrefix+nonce).Bytes()
	if err == redis.Nil {
		return NonceRecord{}, ErrUnknownNonce
	}
	if err != nil {
		return NonceRecord{}, errors.Wrap(err, errors.CategoryExternal, "failed to read nonce record")
	}

	var record NonceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return NonceRecord{}, errors.Wrap(err, errors.CategoryInternal, "failed to decode nonce record")
	}

	if s.now().After(record.ExpiresAt) {
		return NonceRecord{}, ErrNonceExpired
	}

	return record, nil
}

// MarkUsed rewrites the record with the used flag, keeping the original TTL.
func (s *RedisNonceStore) MarkUsed(ctx context.Context, nonce string) error {
	record, err := s.Get(ctx, nonce)
	if err != nil {
		return err
	}

	record.Used = true
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode nonce record")
	}

	if err := s.client.Set(ctx, redisNoncePrefix+nonce, data, redis.KeepTTL).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to update nonce record")
	}

	return nil
}

var _ NonceStore = (*RedisNonceStore)(nil)
