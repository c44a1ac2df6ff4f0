package auth

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// CredentialSlot is the settable, clearable bearer token read on every
// request. It is written on login and logout and read concurrently by every
// call, so it never takes a lock.
type CredentialSlot struct {
	store    *TokenStore
	fallback TokenSource
	touched  atomic.Bool
}

// NewCredentialSlot creates a slot seeded with token. An empty token leaves
// the slot empty.
func NewCredentialSlot(token string) *CredentialSlot {
	slot := &CredentialSlot{store: NewTokenStore()}

	if token != "" {
		slot.store.Set(&Token{AccessToken: token, TokenType: "bearer"})
	}

	return slot
}

// WithFallback makes the slot consult source while it is empty and has never
// been set or cleared. It must be called before the slot is shared.
func (s *CredentialSlot) WithFallback(source TokenSource) *CredentialSlot {
	s.fallback = source

	return s
}

// GetToken returns the current token, or an empty string when there is none
// or the stored one has expired. An expired token stays stored.
func (s *CredentialSlot) GetToken(ctx context.Context) (string, error) {
	if token := s.store.Get(); token != nil {
		if !token.Valid() {
			return "", nil
		}

		return token.AccessToken, nil
	}

	if s.fallback == nil || s.touched.Load() {
		return "", nil
	}

	token, err := s.fallback.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fallback token source: %w", err)
	}

	return token, nil
}

// SetToken stores token without an expiry. An empty token clears the slot.
func (s *CredentialSlot) SetToken(token string) {
	s.SetTokenWithExpiry(token, time.Time{})
}

// SetTokenWithExpiry stores token with its expiry.
func (s *CredentialSlot) SetTokenWithExpiry(token string, expiresAt time.Time) {
	s.touched.Store(true)

	if token == "" {
		s.store.Clear()

		return
	}

	s.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}

// ClearToken empties the slot. The fallback source is not consulted again.
func (s *CredentialSlot) ClearToken() {
	s.touched.Store(true)
	s.store.Clear()
}

// Token returns the stored token or nil.
func (s *CredentialSlot) Token() *Token {
	return s.store.Get()
}
