package bizapi_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var errStoreOffline = errors.New("store offline")

type fakeSettingsStore struct {
	settings *bizapi.PaginationSettings
	getErr   error
	saveErr  error
	saved    []bizapi.PaginationSettings
}

func (s *fakeSettingsStore) Get(ctx context.Context) (bizapi.PaginationSettings, error) {
	if s.getErr != nil {
		return bizapi.PaginationSettings{}, s.getErr
	}

	if s.settings == nil {
		return bizapi.PaginationSettings{}, bizapi.ErrSettingsNotFound
	}

	return *s.settings, nil
}

func (s *fakeSettingsStore) Save(ctx context.Context, settings bizapi.PaginationSettings) error {
	if s.saveErr != nil {
		return s.saveErr
	}

	s.saved = append(s.saved, settings)

	return nil
}

func TestRegistry_Defaults(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()

	assert.False(t, registry.IsInitialized())
	assert.Equal(t, 100, registry.MaxPageSize())

	for _, entity := range bizapi.EntityTypes() {
		assert.Equal(t, 10, registry.GetPageSize(entity), entity.String())
	}

	assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityType(42)))
}

func TestRegistry_Initialize(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()
	settings := bizapi.DefaultPaginationSettings()
	settings.Orders = 25
	settings.Products = 500
	settings.Users = 0

	require.NoError(t, registry.Initialize(settings))
	assert.True(t, registry.IsInitialized())
	assert.Equal(t, 25, registry.GetPageSize(bizapi.EntityOrders))
	assert.Equal(t, 100, registry.GetPageSize(bizapi.EntityProducts))
	assert.Equal(t, 1, registry.GetPageSize(bizapi.EntityUsers))

	err := registry.Initialize(bizapi.DefaultPaginationSettings())
	require.ErrorIs(t, err, bizapi.ErrRegistryInitialized)
	assert.Equal(t, 25, registry.GetPageSize(bizapi.EntityOrders))
}

func TestRegistry_InitializeZeroMax(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()
	require.NoError(t, registry.Initialize(bizapi.PaginationSettings{Orders: 30}))

	assert.Equal(t, 100, registry.MaxPageSize())
	assert.Equal(t, 30, registry.GetPageSize(bizapi.EntityOrders))
	assert.Equal(t, 1, registry.GetPageSize(bizapi.EntityDefault))
}

func TestRegistry_SetPageSizeClamps(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()

	registry.SetPageSize(bizapi.EntityProducts, 0)
	assert.Equal(t, 1, registry.GetPageSize(bizapi.EntityProducts))

	registry.SetPageSize(bizapi.EntityProducts, 1000)
	assert.Equal(t, 100, registry.GetPageSize(bizapi.EntityProducts))

	registry.SetPageSize(bizapi.EntityProducts, -5)
	assert.Equal(t, 1, registry.GetPageSize(bizapi.EntityProducts))

	registry.SetPageSize(bizapi.EntityProducts, 42)
	assert.Equal(t, 42, registry.GetPageSize(bizapi.EntityProducts))

	// Other entities untouched.
	assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityOrders))

	// Unknown entity is ignored.
	registry.SetPageSize(bizapi.EntityType(42), 50)
	assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityDefault))
}

func TestRegistry_Reset(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()
	settings := bizapi.DefaultPaginationSettings()
	settings.MaxPageSize = 50
	registry.Apply(settings)

	for _, entity := range bizapi.EntityTypes() {
		registry.SetPageSize(entity, 37)
	}

	registry.Reset()

	assert.Equal(t, bizapi.DefaultPaginationSettings(), registry.GetSettings())

	for _, entity := range bizapi.EntityTypes() {
		assert.Equal(t, 10, registry.GetPageSize(entity))
	}

	assert.Equal(t, 100, registry.MaxPageSize())
}

func TestRegistry_ApplyAndSnapshot(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()

	settings := bizapi.DefaultPaginationSettings()
	settings.MaxPageSize = 20
	settings.Commissions = 50
	settings.AgentRequests = 15
	registry.Apply(settings)

	snapshot := registry.GetSettings()
	assert.Equal(t, 20, snapshot.MaxPageSize)
	assert.Equal(t, 20, snapshot.Commissions)
	assert.Equal(t, 15, snapshot.AgentRequests)

	// Snapshot is a copy.
	snapshot.Orders = 99
	assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityOrders))
}

func TestRegistry_Commit(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()
	registry.SetPageSize(bizapi.EntityCustomers, 30)

	store := &fakeSettingsStore{}
	require.NoError(t, registry.Commit(context.Background(), store))
	require.Len(t, store.saved, 1)
	assert.Equal(t, 30, store.saved[0].Customers)

	err := registry.Commit(context.Background(), &fakeSettingsStore{saveErr: errStoreOffline})
	require.ErrorIs(t, err, errStoreOffline)
}

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	t.Run("stored settings", func(t *testing.T) {
		t.Parallel()

		settings := bizapi.DefaultPaginationSettings()
		settings.Orders = 40

		registry := bizapi.NewRegistry()
		require.NoError(t, bizapi.LoadRegistry(context.Background(), &fakeSettingsStore{settings: &settings}, registry))
		assert.True(t, registry.IsInitialized())
		assert.Equal(t, 40, registry.GetPageSize(bizapi.EntityOrders))
	})

	t.Run("nothing stored", func(t *testing.T) {
		t.Parallel()

		registry := bizapi.NewRegistry()
		require.NoError(t, bizapi.LoadRegistry(context.Background(), &fakeSettingsStore{}, registry))
		assert.True(t, registry.IsInitialized())
		assert.Equal(t, bizapi.DefaultPaginationSettings(), registry.GetSettings())
	})

	t.Run("store failure still initializes", func(t *testing.T) {
		t.Parallel()

		registry := bizapi.NewRegistry()
		err := bizapi.LoadRegistry(context.Background(), &fakeSettingsStore{getErr: errStoreOffline}, registry)
		require.ErrorIs(t, err, errStoreOffline)
		assert.True(t, registry.IsInitialized())
		assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityProducts))
	})

	t.Run("already initialized", func(t *testing.T) {
		t.Parallel()

		registry := bizapi.NewRegistry()
		require.NoError(t, registry.Initialize(bizapi.DefaultPaginationSettings()))

		err := bizapi.LoadRegistry(context.Background(), &fakeSettingsStore{}, registry)
		require.ErrorIs(t, err, bizapi.ErrRegistryInitialized)
	})
}

func TestParseEntityType(t *testing.T) {
	t.Parallel()

	tests := map[string]bizapi.EntityType{
		"default":        bizapi.EntityDefault,
		"Products":       bizapi.EntityProducts,
		"orders":         bizapi.EntityOrders,
		"agent-requests": bizapi.EntityAgentRequests,
		"agentRequests":  bizapi.EntityAgentRequests,
		"agent_requests": bizapi.EntityAgentRequests,
		"commissions":    bizapi.EntityCommissions,
	}

	for name, expected := range tests {
		entity, err := bizapi.ParseEntityType(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, entity, name)
	}

	_, err := bizapi.ParseEntityType("invoices")
	require.Error(t, err)
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	registry := bizapi.NewRegistry()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range 200 {
				if i%2 == 0 {
					registry.SetPageSize(bizapi.EntityOrders, j)
				} else {
					size := registry.GetPageSize(bizapi.EntityOrders)
					assert.GreaterOrEqual(t, size, 1)
					assert.LessOrEqual(t, size, 100)
				}
			}
		}()
	}

	wg.Wait()
}
