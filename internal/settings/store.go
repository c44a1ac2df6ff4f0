// Package settings persists pagination preferences between runs.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// StoreType selects a settings backend.
type StoreType string

const (
	// StoreTypeFile keeps settings in a YAML file.
	StoreTypeFile StoreType = "file"

	// StoreTypeMemory keeps settings for the life of the process.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeNATS keeps settings in a NATS JetStream key-value bucket.
	StoreTypeNATS StoreType = "nats"
)

// Static errors for err113 compliance.
var (
	ErrFilePathRequired    = errors.New("settings file path required for file store")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS store")
	ErrUnsupportedStore    = errors.New("unsupported settings store type")
	ErrKeyValueRequired    = errors.New("key-value bucket is required")
	ErrCorruptSettingsData = errors.New("stored pagination settings are corrupt")
)

// Config configures a settings backend.
type Config struct {
	Type StoreType

	// Path of the YAML file for StoreTypeFile.
	Path string

	// NATS configuration for StoreTypeNATS.
	NATS *NATSConfig
}

// NewStoreFromConfig creates a settings store from configuration. The
// returned close function releases any connection the store holds.
func NewStoreFromConfig(ctx context.Context, config *Config) (bizapi.SettingsStore, func(), error) {
	if config == nil {
		return NewMemoryStore(), func() {}, nil
	}

	switch config.Type {
	case StoreTypeMemory:
		return NewMemoryStore(), func() {}, nil

	case StoreTypeFile, "":
		if config.Path == "" {
			return nil, nil, ErrFilePathRequired
		}

		return NewFileStore(config.Path), func() {}, nil

	case StoreTypeNATS:
		if config.NATS == nil {
			return nil, nil, ErrNATSConfigRequired
		}

		store, closeFn, err := ConnectNATSStore(ctx, config.NATS)
		if err != nil {
			return nil, nil, err
		}

		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, config.Type)
	}
}

// MemoryStore holds settings in memory. It starts empty, so Get reports
// bizapi.ErrSettingsNotFound until the first Save.
type MemoryStore struct {
	mutex    sync.RWMutex
	settings *bizapi.PaginationSettings
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the saved settings.
func (s *MemoryStore) Get(ctx context.Context) (bizapi.PaginationSettings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.settings == nil {
		return bizapi.PaginationSettings{}, bizapi.ErrSettingsNotFound
	}

	return *s.settings, nil
}

// Save replaces the saved settings.
func (s *MemoryStore) Save(ctx context.Context, settings bizapi.PaginationSettings) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.settings = &settings

	return nil
}
