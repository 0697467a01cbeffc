// Package rediscache implements the ephemeral auth/contact stores on Redis,
// making lockout, revocation and rate-limit state shared across server
// instances.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
)

func Open(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// AttemptStore tracks failed-login state per client IP.
type AttemptStore struct {
	rdb *redis.Client
}

var _ auth.AttemptStore = (*AttemptStore)(nil)

func NewAttemptStore(rdb *redis.Client) *AttemptStore {
	return &AttemptStore{rdb: rdb}
}

func (s *AttemptStore) LockedFor(ctx context.Context, ip string) (time.Duration, error) {
	// the lock key expires on its own; expiry also clears the failure counter
	// because failures share the lock's lifetime (set below)
	ttl, err := s.rdb.PTTL(ctx, "login:lock:"+ip).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 {
		return ttl, nil
	}
	return 0, nil
}

func (s *AttemptStore) RegisterFailure(ctx context.Context, ip string) error {
	failKey := "login:fail:" + ip

	failures, err := s.rdb.Incr(ctx, failKey).Result()
	if err != nil {
		return err
	}
	// counter lives for a day at most
	if failures == 1 {
		if err := s.rdb.Expire(ctx, failKey, 24*time.Hour).Err(); err != nil {
			return err
		}
	}
	if failures < auth.MaxLoginFailures {
		return nil
	}

	count, err := s.rdb.Incr(ctx, "login:lockcount:"+ip).Result()
	if err != nil {
		return err
	}
	duration := auth.BaseLockout << uint(count-1)
	if err := s.rdb.Set(ctx, "login:lock:"+ip, 1, duration).Err(); err != nil {
		return err
	}
	return s.rdb.Del(ctx, failKey).Err()
}

func (s *AttemptStore) RegisterSuccess(ctx context.Context, ip string) error {
	// the lockout counter deliberately survives
	return s.rdb.Del(ctx, "login:fail:"+ip).Err()
}

// RevocationStore remembers revoked refresh tokens until they expire anyway.
type RevocationStore struct {
	rdb *redis.Client
}

var _ auth.RevocationStore = (*RevocationStore)(nil)

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, revocationKey(token), 1, ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RateStore counts hits per key inside a fixed window.
type RateStore struct {
	rdb *redis.Client
}

var _ contact.RateStore = (*RateStore)(nil)

func NewRateStore(rdb *redis.Client) *RateStore {
	return &RateStore{rdb: rdb}
}

func (s *RateStore) Allow(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "contact:rate:" + ip
	hits, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if hits == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return hits <= int64(limit), nil
}
