// Package memorycache holds the in-process implementations of the ephemeral
// auth/contact stores. They are safe for concurrent use within one server
// instance; multi-instance deployments use the redis implementations instead.
package memorycache

import (
	"context"
	"sync"
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
)

var NowFunc = time.Now // mockable

// AttemptStore tracks failed-login state per client IP.
type AttemptStore struct {
	mu    sync.Mutex
	state map[string]*attemptState
}

type attemptState struct {
	failures     int
	lockoutCount int // never reset: each lockout doubles the next
	lockedUntil  time.Time
}

var _ auth.AttemptStore = (*AttemptStore)(nil)

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{state: make(map[string]*attemptState)}
}

func (s *AttemptStore) LockedFor(_ context.Context, ip string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[ip]
	if !ok {
		return 0, nil
	}
	if st.lockedUntil.IsZero() {
		return 0, nil
	}
	if remaining := st.lockedUntil.Sub(NowFunc()); remaining > 0 {
		return remaining, nil
	}
	// window exceeded: back to open, attempt counter zeroed
	st.lockedUntil = time.Time{}
	st.failures = 0
	return 0, nil
}

func (s *AttemptStore) RegisterFailure(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[ip]
	if !ok {
		st = &attemptState{}
		s.state[ip] = st
	}
	st.failures++
	if st.failures >= auth.MaxLoginFailures {
		st.lockedUntil = NowFunc().Add(auth.BaseLockout << uint(st.lockoutCount))
		st.lockoutCount++
		st.failures = 0
	}
	return nil
}

func (s *AttemptStore) RegisterSuccess(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.state[ip]; ok {
		st.failures = 0 // lockoutCount survives
	}
	return nil
}

// RevocationStore remembers revoked refresh tokens until they expire anyway.
type RevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token -> expiry of the revocation entry
}

var _ auth.RevocationStore = (*RevocationStore)(nil)

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{revoked: make(map[string]time.Time)}
}

func (s *RevocationStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = NowFunc().Add(ttl)
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.revoked[token]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if NowFunc().After(exp) {
		s.mu.Lock()
		delete(s.revoked, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// RateStore counts hits per key inside a sliding window.
type RateStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

var _ contact.RateStore = (*RateStore)(nil)

func NewRateStore() *RateStore {
	return &RateStore{hits: make(map[string][]time.Time)}
}

func (s *RateStore) Allow(_ context.Context, ip string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := NowFunc()
	cutoff := now.Add(-window)
	kept := s.hits[ip][:0]
	for _, t := range s.hits[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= limit {
		s.hits[ip] = kept
		return false, nil
	}
	s.hits[ip] = append(kept, now)
	return true, nil
}
