package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister saves the session token for an API endpoint, typically in
// the CLI config file. An empty token removes it.
type TokenPersister interface {
	UpdateAPIToken(apiDomain, token string, expiresAt time.Time) error
}

// PersistingTokenStore is a CredentialSlot that writes every token change
// through to a TokenPersister, so a login survives the process.
type PersistingTokenStore struct {
	slot      *CredentialSlot
	persister TokenPersister
	apiDomain string
	onError   func(error)
}

// NewPersistingTokenStore creates a store for apiDomain seeded with
// initialToken.
func NewPersistingTokenStore(persister TokenPersister, apiDomain, initialToken string, initialExpiry time.Time) *PersistingTokenStore {
	slot := NewCredentialSlot("")
	if initialToken != "" {
		slot.store.Set(&Token{AccessToken: initialToken, TokenType: "bearer", ExpiresAt: initialExpiry})
	}

	return &PersistingTokenStore{
		slot:      slot,
		persister: persister,
		apiDomain: apiDomain,
		onError: func(err error) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist token: %v\n", err)
		},
	}
}

// OnPersistError replaces the handler for persistence failures. They never
// fail the token change itself.
func (p *PersistingTokenStore) OnPersistError(fn func(error)) {
	p.onError = fn
}

// GetToken returns the current token.
func (p *PersistingTokenStore) GetToken(ctx context.Context) (string, error) {
	return p.slot.GetToken(ctx)
}

// SetToken stores and persists token.
func (p *PersistingTokenStore) SetToken(token string) {
	p.SetTokenWithExpiry(token, time.Time{})
}

// SetTokenWithExpiry stores and persists token with its expiry.
func (p *PersistingTokenStore) SetTokenWithExpiry(token string, expiresAt time.Time) {
	p.slot.SetTokenWithExpiry(token, expiresAt)
	p.persist(token, expiresAt)
}

// ClearToken clears the slot and removes the persisted token.
func (p *PersistingTokenStore) ClearToken() {
	p.slot.ClearToken()
	p.persist("", time.Time{})
}

func (p *PersistingTokenStore) persist(token string, expiresAt time.Time) {
	err := p.persistToken(token, expiresAt)
	if err != nil && p.onError != nil {
		p.onError(err)
	}
}

func (p *PersistingTokenStore) persistToken(token string, expiresAt time.Time) error {
	if p.persister == nil {
		return ErrNoTokenPersister
	}

	err := p.persister.UpdateAPIToken(p.apiDomain, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update API token: %w", err)
	}

	return nil
}
