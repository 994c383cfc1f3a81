// Package session stores credentials for editing maps on a remote server.
//
// A session holds the server URL and the bearer token the HTTP client store
// authenticates with, written as a 0600 JSON file under the user's config
// directory. Issuing and validating tokens is the server operator's concern;
// this package only keeps them. Viewport state is never part of a session.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when no session is stored for the requested id.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session exists but has exceeded its TTL.
	// The backing file is removed before the error is returned.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// Session stores the credentials for one remote server.
type Session struct {
	ID        string    `json:"id"`
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	User      string    `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the session has expired. Sessions with a zero
// ExpiresAt never expire.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns ErrNotFound when absent and
	// ErrExpired when the stored session has passed its expiry.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting an absent session succeeds.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given server and token. A zero ttl produces
// a session that never expires.
func New(server, token, user string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:        id,
		Server:    server,
		Token:     token,
		User:      user,
		CreatedAt: now,
	}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess, nil
}
