package bizclient_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/internal/fakeapi"
	"github.com/fivetwenty-io/bizapi/internal/settings"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
	"github.com/fivetwenty-io/bizapi/pkg/bizclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := bizclient.New(context.Background(), nil)
		require.ErrorIs(t, err, bizapi.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := bizclient.New(context.Background(), &bizapi.Config{})
		require.ErrorIs(t, err, bizapi.ErrAPIEndpointRequired)
	})

	t.Run("normalizes the endpoint without touching config", func(t *testing.T) {
		t.Parallel()

		config := &bizapi.Config{APIEndpoint: "shop.example.com/"}

		client, err := bizclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example.com", client.Requests().BaseURL())
		assert.Equal(t, "shop.example.com/", config.APIEndpoint)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"shop.example.com":          "https://shop.example.com",
		"https://shop.example.com/": "https://shop.example.com",
		"http://localhost:8080":     "http://localhost:8080",
		" shop.example.com/api/ ":   "https://shop.example.com/api",
	}

	for input, want := range tests {
		assert.Equal(t, want, bizclient.NormalizeEndpoint(input), input)
	}
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := bizclient.NewWithEndpoint(context.Background(), "https://shop.example.com")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(fakeapi.New(fakeapi.SeedDataset(3), fakeapi.WithStaticToken("abc")))
	defer server.Close()

	client, err := bizclient.NewWithToken(context.Background(), server.URL, "abc")
	require.NoError(t, err)

	page, ok := client.Customers().List(context.Background(), 1).Value()
	require.True(t, ok)
	assert.Equal(t, 3, page.TotalCount)
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(fakeapi.New(nil))
	defer server.Close()

	client, err := bizclient.NewWithPassword(context.Background(), server.URL, "admin", "secret")
	require.NoError(t, err)

	user, ok := client.Session().CurrentUser(context.Background()).Value()
	require.True(t, ok)
	assert.Equal(t, "admin", user.Username)

	_, err = bizclient.NewWithPassword(context.Background(), server.URL, "admin", "wrong")
	require.ErrorIs(t, err, bizclient.ErrLoginFailed)
	assert.True(t, bizapi.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid username or password")
}

func TestNewWithSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := settings.NewMemoryStore()

	saved := bizapi.DefaultPaginationSettings()
	saved.Orders = 25
	require.NoError(t, store.Save(ctx, saved))

	client, err := bizclient.NewWithSettings(ctx, &bizapi.Config{APIEndpoint: "shop.example.com"}, store)
	require.NoError(t, err)

	registry := client.Pagination()
	assert.True(t, registry.IsInitialized())
	assert.Equal(t, 25, registry.GetPageSize(bizapi.EntityOrders))
	assert.Equal(t, 10, registry.GetPageSize(bizapi.EntityProducts))
}
