package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

var _ ChallengeStore = (*RedisChallengeStore)(nil)

// RedisChallengeStore keeps verification challenges in Redis. The key
// TTL tracks the challenge expiry, so stale challenges disappear on
// their own; the issuer still performs its own expiry check for
// deterministic error reporting.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client, prefix: "challenge:"}
}

func (s *RedisChallengeStore) key(kind domain.IdentifierKind, identifier string) string {
	return s.prefix + string(kind) + ":" + identifier
}

func (s *RedisChallengeStore) Save(ctx context.Context, challenge domain.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, s.key(challenge.Kind, challenge.Identifier), data, ttl).Err(); err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

func (s *RedisChallengeStore) Get(ctx context.Context, kind domain.IdentifierKind, identifier string) (domain.Challenge, error) {
	val, err := s.client.Get(ctx, s.key(kind, identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Challenge{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}

	var challenge domain.Challenge
	if err := json.Unmarshal([]byte(val), &challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return challenge, nil
}

func (s *RedisChallengeStore) Delete(ctx context.Context, kind domain.IdentifierKind, identifier string) error {
	if err := s.client.Del(ctx, s.key(kind, identifier)).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
