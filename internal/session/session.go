// Package session answers "is a shopper signed in, and who" for the client.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in shopper, or nobody. The zero value is anonymous.
type Session struct {
	token     string
	userID    string
	name      string
	expiresAt time.Time
}

// Anonymous returns a session with no shopper.
func Anonymous() *Session {
	return &Session{}
}

// FromToken reads the shopper out of a bearer token without verifying its
// signature; the API verifies it on every call. An empty token is anonymous.
func FromToken(token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Anonymous(), nil
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("read access token: missing subject")
	}

	s := &Session{token: token, userID: claims.Subject, name: claims.Name}
	if claims.ExpiresAt != nil {
		s.expiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Present reports whether a shopper is signed in.
func (s *Session) Present() bool {
	return s != nil && s.userID != ""
}

// UserID returns the shopper's id, empty when anonymous.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.userID
}

// Name returns the shopper's display name.
func (s *Session) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Token returns the raw bearer token, empty when anonymous.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// Expired reports whether the token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s.Present() && !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}
