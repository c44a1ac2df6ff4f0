package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/bizapi/internal/auth"
	"github.com/fivetwenty-io/bizapi/internal/constants"
)

// ConfigPersister implements the auth.TokenPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

var _ auth.TokenPersister = (*ConfigPersister)(nil)

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateAPIToken updates the token of apiDomain in the config file. An empty
// token signs the API out.
func (p *ConfigPersister) UpdateAPIToken(apiDomain, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	apiConfig, exists := config.APIs[apiDomain]
	if !exists {
		return fmt.Errorf("API configuration for '%s': %w", apiDomain, constants.ErrAPIConfigNotFound)
	}

	apiConfig.Token = token
	apiConfig.TokenExpiresAt = nil

	if token != "" && !expiresAt.IsZero() {
		expiry := expiresAt.UTC()
		apiConfig.TokenExpiresAt = &expiry
	}

	return saveConfigStruct(config)
}
