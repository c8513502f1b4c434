package token

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store issues and validates ephemeral opaque tokens with a fixed TTL.
// Safe for concurrent use by request handlers and the background sweeper.
type Store struct {
	mu        sync.Mutex
	tokens    map[string]time.Time // value -> expiry
	ttl       time.Duration
	singleUse bool
	now       func() time.Time
}

// NewStore creates a token store. When singleUse is set, a token is
// consumed by its first successful validation.
func NewStore(ttl time.Duration, singleUse bool) *Store {
	return &Store{
		tokens:    make(map[string]time.Time),
		ttl:       ttl,
		singleUse: singleUse,
		now:       time.Now,
	}
}

// Issue creates a new token and returns its opaque value.
func (s *Store) Issue() string {
	value := uuid.NewString()

	s.mu.Lock()
	s.tokens[value] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return value
}

// Validate reports whether the token exists and has not expired.
func (s *Store) Validate(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[value]
	if !ok || !s.now().Before(expiry) {
		return false
	}
	if s.singleUse {
		delete(s.tokens, value)
	}
	return true
}

// TTL returns the configured token lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Sweep removes expired tokens and returns how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for value, expiry := range s.tokens {
		if !now.Before(expiry) {
			delete(s.tokens, value)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a fixed interval until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					log.Printf("Tokens: swept %d expired", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
