package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/internal/client"
	"github.com/fivetwenty-io/bizapi/internal/fakeapi"
	bizhttp "github.com/fivetwenty-io/bizapi/internal/http"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

const testToken = "test-token"

// newFakeBackend starts the fixture backend seeded with n records per
// collection. testToken is accepted as an admin credential.
func newFakeBackend(t *testing.T, n int, opts ...fakeapi.Option) *httptest.Server {
	t.Helper()

	opts = append([]fakeapi.Option{fakeapi.WithStaticToken(testToken)}, opts...)
	server := httptest.NewServer(fakeapi.New(fakeapi.SeedDataset(n), opts...))
	t.Cleanup(server.Close)

	return server
}

// NewTestClient creates a client for baseURL without retries.
func NewTestClient(t *testing.T, baseURL string, configure ...func(*bizapi.Config)) *client.Client {
	t.Helper()

	config := &bizapi.Config{
		APIEndpoint: baseURL,
		AccessToken: testToken,
	}

	for _, fn := range configure {
		fn(config)
	}

	c, err := client.New(context.Background(), config, bizhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	return c
}

func withoutToken(config *bizapi.Config) {
	config.AccessToken = ""
}

// requireValue unwraps a successful result or fails the test with its
// message.
func requireValue[T any](t *testing.T, result bizapi.Result[T]) T {
	t.Helper()

	value, ok := result.Value()
	require.Truef(t, ok, "expected success, got failure: %s (%v)", result.Message(), result.Cause())

	return value
}
