package bizclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/bizapi/internal/client"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// ErrLoginFailed is returned by NewWithPassword when the sign-in fails.
var ErrLoginFailed = errors.New("login failed")

// New creates a new backend client. config is not modified.
func New(ctx context.Context, config *bizapi.Config) (bizapi.Client, error) {
	if config == nil {
		return nil, bizapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, bizapi.ErrAPIEndpointRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims a trailing slash and adds "https://" when endpoint
// has no scheme.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithSettings creates a client whose pagination registry is loaded from
// store. Unreadable settings fall back to the defaults and are reported to
// config.Logger; they never prevent the client from being built.
func NewWithSettings(ctx context.Context, config *bizapi.Config, store bizapi.SettingsStore) (bizapi.Client, error) {
	if config == nil {
		return nil, bizapi.ErrConfigRequired
	}

	registry := config.Pagination
	if registry == nil {
		registry = bizapi.NewRegistry()
	}

	err := bizapi.LoadRegistry(ctx, store, registry)
	if err != nil && !errors.Is(err, bizapi.ErrRegistryInitialized) && config.Logger != nil {
		config.Logger.Warn("using default page sizes", map[string]interface{}{"error": err.Error()})
	}

	withRegistry := *config
	withRegistry.Pagination = registry

	return New(ctx, &withRegistry)
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (bizapi.Client, error) {
	return New(ctx, &bizapi.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (bizapi.Client, error) {
	return New(ctx, &bizapi.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithPassword creates a new client and signs in with username and
// password.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (bizapi.Client, error) {
	c, err := NewWithEndpoint(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	result := c.Session().Login(ctx, username, password)
	if result.IsFailure() {
		if result.Cause() == nil {
			return nil, fmt.Errorf("%w: %s", ErrLoginFailed, result.Message())
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrLoginFailed, result.Message(), result.Cause())
	}

	return c, nil
}
