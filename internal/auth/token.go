// Package auth holds the bearer credential the transport attaches to every
// request.
package auth

import (
	"context"
	"sync/atomic"
	"time"
)

// expiryBuffer treats a token as expired slightly before its deadline.
const expiryBuffer = 30 * time.Second

// TokenSource supplies a bearer token.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Token is a bearer credential with an optional expiry.
type Token struct {
	AccessToken string    `json:"token"     yaml:"token"`
	TokenType   string    `json:"tokenType" yaml:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt" yaml:"expiresAt"`
}

// Valid reports whether the token is present and not about to expire. A zero
// ExpiresAt never expires.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore is a lock-free single-token slot.
type TokenStore struct {
	token atomic.Pointer[Token]
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token or nil.
func (s *TokenStore) Get() *Token {
	return s.token.Load()
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.token.Store(token)
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.token.Store(nil)
}
