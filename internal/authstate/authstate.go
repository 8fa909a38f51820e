// Package authstate holds short-lived OAuth state tokens for CSRF protection.
// Tokens are single use: consuming one deletes it.
package authstate

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultTTL is how long an issued state token stays valid.
const DefaultTTL = 10 * time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// Store is an in-memory, expiring, delete-on-read token store.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Store. A non-positive ttl uses DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a random state token, stores the associated value, and
// returns the token.
func (s *Store) Issue(value string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", eris.Wrap(err, "authstate: generate token")
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[token] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

// Consume validates and deletes a token, returning the value stored with it.
// Unknown and expired tokens both report ok=false; callers cannot tell the
// difference, which is intentional.
func (s *Store) Consume(token string) (value string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[token]
	if !found {
		return "", false
	}
	delete(s.entries, token)

	if s.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// sweepLocked drops expired entries. Called under the mutex on each Issue so
// the map cannot grow unboundedly from abandoned flows.
func (s *Store) sweepLocked() {
	now := s.now()
	for token, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, token)
		}
	}
}
