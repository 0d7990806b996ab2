// Package auth implements the password login and the in-memory auth-session
// store that guards every privileged gateway route.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"
)

// Session is an issued auth token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Store issues, validates, and revokes auth sessions. Tokens are opaque
// random strings; sessions live in memory only and expire after the
// configured TTL.
type Store struct {
	password []byte
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewStore creates a Store guarding access with the given password.
func NewStore(password string, ttl time.Duration) *Store {
	return &Store{
		password: []byte(password),
		ttl:      ttl,
		sessions: make(map[string]time.Time),
	}
}

// CheckPassword reports whether the candidate matches the configured
// password. Both sides are hashed first so the comparison is constant-time
// regardless of length.
func (s *Store) CheckPassword(candidate string) bool {
	want := sha256.Sum256(s.password)
	got := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// Create issues a new session token.
func (s *Store) Create() Session {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	token := hex.EncodeToString(buf)
	expiresAt := time.Now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[token] = expiresAt
	s.mu.Unlock()

	return Session{Token: token, ExpiresAt: expiresAt}
}

// Validate reports whether the token names a live session. Expired tokens
// are removed as a side effect.
func (s *Store) Validate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.sessions[token]
	if !ok {
		return false
	}
	if !expiresAt.After(time.Now()) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Revoke removes a session token. No-op for unknown tokens.
func (s *Store) Revoke(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Sweep removes all expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for token, expiresAt := range s.sessions {
		if !expiresAt.After(now) {
			delete(s.sessions, token)
			dropped++
		}
	}
	return dropped
}

// Count returns the number of live (possibly expired but unswept) sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
