package bizapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fivetwenty-io/bizapi/internal/constants"
)

// EntityType selects which page-size preference applies to a list.
type EntityType int

// Entity types with their own page size.
const (
	EntityDefault EntityType = iota
	EntityProducts
	EntityOrders
	EntityCustomers
	EntityUsers
	EntityAgentRequests
	EntityCommissions
)

var entityNames = map[EntityType]string{
	EntityDefault:       "default",
	EntityProducts:      "products",
	EntityOrders:        "orders",
	EntityCustomers:     "customers",
	EntityUsers:         "users",
	EntityAgentRequests: "agent-requests",
	EntityCommissions:   "commissions",
}

// String implements fmt.Stringer.
func (e EntityType) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}

	return fmt.Sprintf("entity(%d)", int(e))
}

// EntityTypes lists every entity type in declaration order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityDefault,
		EntityProducts,
		EntityOrders,
		EntityCustomers,
		EntityUsers,
		EntityAgentRequests,
		EntityCommissions,
	}
}

// ParseEntityType resolves a name such as "orders" or "agentRequests".
func ParseEntityType(name string) (EntityType, error) {
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))

	for _, entity := range EntityTypes() {
		if strings.ReplaceAll(entityNames[entity], "-", "") == normalized {
			return entity, nil
		}
	}

	return EntityDefault, fmt.Errorf("%w: %q", constants.ErrUnknownEntityType, name)
}

// PaginationSettings is the persisted form of the registry.
type PaginationSettings struct {
	Default       int `json:"default"       yaml:"default"`
	Products      int `json:"products"      yaml:"products"`
	Orders        int `json:"orders"        yaml:"orders"`
	Customers     int `json:"customers"     yaml:"customers"`
	Users         int `json:"users"         yaml:"users"`
	AgentRequests int `json:"agentRequests" yaml:"agentRequests"`
	Commissions   int `json:"commissions"   yaml:"commissions"`
	MaxPageSize   int `json:"maxPageSize"   yaml:"maxPageSize"`
}

// DefaultPaginationSettings returns the built-in defaults.
func DefaultPaginationSettings() PaginationSettings {
	return PaginationSettings{
		Default:       constants.DefaultPageSize,
		Products:      constants.DefaultPageSize,
		Orders:        constants.DefaultPageSize,
		Customers:     constants.DefaultPageSize,
		Users:         constants.DefaultPageSize,
		AgentRequests: constants.DefaultPageSize,
		Commissions:   constants.DefaultPageSize,
		MaxPageSize:   constants.DefaultMaxPageSize,
	}
}

// PageSize returns the stored size for entity. Unknown entity types read the
// default slot.
func (s PaginationSettings) PageSize(entity EntityType) int {
	switch entity {
	case EntityProducts:
		return s.Products
	case EntityOrders:
		return s.Orders
	case EntityCustomers:
		return s.Customers
	case EntityUsers:
		return s.Users
	case EntityAgentRequests:
		return s.AgentRequests
	case EntityCommissions:
		return s.Commissions
	default:
		return s.Default
	}
}

func (s *PaginationSettings) setPageSize(entity EntityType, value int) {
	switch entity {
	case EntityDefault:
		s.Default = value
	case EntityProducts:
		s.Products = value
	case EntityOrders:
		s.Orders = value
	case EntityCustomers:
		s.Customers = value
	case EntityUsers:
		s.Users = value
	case EntityAgentRequests:
		s.AgentRequests = value
	case EntityCommissions:
		s.Commissions = value
	}
}

// normalized clamps every page size into [1, MaxPageSize]. A non-positive
// MaxPageSize falls back to the default bound.
func (s PaginationSettings) normalized() PaginationSettings {
	if s.MaxPageSize < constants.MinPageSize {
		s.MaxPageSize = constants.DefaultMaxPageSize
	}

	for _, entity := range EntityTypes() {
		s.setPageSize(entity, clampPageSize(s.PageSize(entity), s.MaxPageSize))
	}

	return s
}

func clampPageSize(value, maxPageSize int) int {
	return max(constants.MinPageSize, min(value, maxPageSize))
}

// SettingsStore persists pagination settings between runs. Get returns
// ErrSettingsNotFound when nothing has been saved yet.
type SettingsStore interface {
	Get(ctx context.Context) (PaginationSettings, error)
	Save(ctx context.Context, settings PaginationSettings) error
}

// Registry holds the page size for each entity type. It is shared by every
// list call site and safe for concurrent use; writes are rare, reads are on
// every list request.
type Registry struct {
	mutex       sync.RWMutex
	settings    PaginationSettings
	initialized bool
}

// NewRegistry returns an uninitialized registry. Until Initialize is called it
// serves the built-in defaults.
func NewRegistry() *Registry {
	return &Registry{settings: DefaultPaginationSettings()}
}

// Initialize seeds the registry from settings. It may be called once.
func (r *Registry) Initialize(settings PaginationSettings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.initialized {
		return ErrRegistryInitialized
	}

	r.settings = settings.normalized()
	r.initialized = true

	return nil
}

// IsInitialized reports whether Initialize has run.
func (r *Registry) IsInitialized() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.initialized
}

// GetPageSize returns the page size for entity.
func (r *Registry) GetPageSize(entity EntityType) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.settings.PageSize(entity)
}

// SetPageSize stores value for entity, clamped to [1, MaxPageSize]. Out of
// range input is clamped rather than rejected.
func (r *Registry) SetPageSize(entity EntityType, value int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.settings.setPageSize(entity, clampPageSize(value, r.settings.MaxPageSize))
}

// MaxPageSize returns the current upper bound.
func (r *Registry) MaxPageSize() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.settings.MaxPageSize
}

// Apply replaces all values with a committed settings object.
func (r *Registry) Apply(settings PaginationSettings) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.settings = settings.normalized()
}

// Reset restores the built-in defaults.
func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.settings = DefaultPaginationSettings()
}

// GetSettings returns a snapshot suitable for persistence.
func (r *Registry) GetSettings() PaginationSettings {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.settings
}

// Commit persists the current snapshot to store.
func (r *Registry) Commit(ctx context.Context, store SettingsStore) error {
	err := store.Save(ctx, r.GetSettings())
	if err != nil {
		return fmt.Errorf("saving pagination settings: %w", err)
	}

	return nil
}

// LoadRegistry initializes registry from store at startup. Missing settings
// mean defaults. A read failure still initializes the registry with defaults
// and is returned so the caller can report it.
func LoadRegistry(ctx context.Context, store SettingsStore, registry *Registry) error {
	settings, err := store.Get(ctx)

	switch {
	case errors.Is(err, ErrSettingsNotFound):
		settings = DefaultPaginationSettings()
		err = nil
	case err != nil:
		settings = DefaultPaginationSettings()
		err = fmt.Errorf("loading pagination settings: %w", err)
	}

	initErr := registry.Initialize(settings)
	if initErr != nil {
		return initErr
	}

	return err
}
