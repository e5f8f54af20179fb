package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// Redis key prefix for OTP challenges.
const challengeKeyPrefix = "otp:phone:"

// RedisStore persists challenges in Redis with a TTL matching the challenge
// expiry, so stale records clean themselves up. Recommended when more than
// one instance serves OTP traffic.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, challenge Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal otp challenge: %w", err)
	}
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		// Expired on arrival; storing it would be a no-op with extra steps.
		return s.Delete(ctx, challenge.Phone)
	}
	key := challengeKeyPrefix + challenge.Phone.String()
	return s.client.Set(ctx, key, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, phone id.Phone) (Challenge, error) {
	key := challengeKeyPrefix + phone.String()
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Challenge{}, fmt.Errorf("get otp challenge: %w", err)
	}
	var challenge Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return Challenge{}, fmt.Errorf("unmarshal otp challenge: %w", err)
	}
	return challenge, nil
}

func (s *RedisStore) Delete(ctx context.Context, phone id.Phone) error {
	key := challengeKeyPrefix + phone.String()
	return s.client.Del(ctx, key).Err()
}
