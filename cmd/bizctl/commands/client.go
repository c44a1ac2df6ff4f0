package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/bizapi/internal/auth"
	"github.com/fivetwenty-io/bizapi/internal/client"
	"github.com/fivetwenty-io/bizapi/internal/constants"
	bizhttp "github.com/fivetwenty-io/bizapi/internal/http"
	"github.com/fivetwenty-io/bizapi/internal/logging"
	"github.com/fivetwenty-io/bizapi/internal/settings"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
	"github.com/fivetwenty-io/bizapi/pkg/bizclient"
)

// newLogger builds the command logger. --verbose lowers the level to debug.
func newLogger(cmd *cobra.Command, config *Config) zerolog.Logger {
	level := config.LogLevel
	if viper.GetBool("verbose") {
		level = "debug"
	}

	return logging.New(logging.Config{
		Level:   level,
		Format:  config.LogFormat,
		NoColor: config.NoColor,
		Out:     cmd.ErrOrStderr(),
	})
}

// resolveTarget picks the API a command talks to: --api first, then the
// current API from the config file.
func resolveTarget(config *Config) (string, *APIConfig, error) {
	if endpoint := viper.GetString("api"); endpoint != "" {
		normalized := bizclient.NormalizeEndpoint(endpoint)
		domain := extractDomainFromEndpoint(normalized)

		if apiConfig, ok := config.APIs[domain]; ok {
			return domain, apiConfig, nil
		}

		return domain, &APIConfig{Endpoint: normalized}, nil
	}

	if config.CurrentAPI == "" {
		return "", nil, constants.ErrNoAPIConfigured
	}

	apiConfig, ok := config.APIs[config.CurrentAPI]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", constants.ErrAPIConfigNotFound, config.CurrentAPI)
	}

	return config.CurrentAPI, apiConfig, nil
}

// openSettingsStore opens the configured pagination settings store.
func openSettingsStore(ctx context.Context, config *Config) (bizapi.SettingsStore, func(), error) {
	storeConfig, err := config.Settings.storeConfig()
	if err != nil {
		return nil, nil, err
	}

	store, closeFn, err := settings.NewStoreFromConfig(ctx, storeConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("opening settings store: %w", err)
	}

	return store, closeFn, nil
}

// loadPagination loads the page-size registry. Settings that cannot be read
// fall back to the defaults with a warning.
func loadPagination(ctx context.Context, config *Config, logger zerolog.Logger) *bizapi.Registry {
	registry := bizapi.NewRegistry()

	store, closeFn, err := openSettingsStore(ctx, config)
	if err != nil {
		logger.Warn().Err(err).Msg("using default page sizes")

		_ = registry.Initialize(bizapi.DefaultPaginationSettings())

		return registry
	}
	defer closeFn()

	err = bizapi.LoadRegistry(ctx, store, registry)
	if err != nil && !errors.Is(err, bizapi.ErrRegistryInitialized) {
		logger.Warn().Err(err).Msg("using default page sizes")
	}

	return registry
}

// CreateClient creates a backend client for the current API. Tokens set by
// login and logout are written back to the config file unless --token was
// given.
func CreateClient(ctx context.Context, cmd *cobra.Command) (bizapi.Client, error) {
	config := loadConfig()

	domain, apiConfig, err := resolveTarget(config)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd, config)

	clientConfig := &bizapi.Config{
		APIEndpoint: bizclient.NormalizeEndpoint(apiConfig.Endpoint),
		Logger:      logging.NewAdapter(logger),
		Debug:       viper.GetBool("verbose"),
		UserAgent:   constants.DefaultUserAgent,
		RetryMax:    constants.DefaultRetryMax,
		RateLimit:   config.RateLimit,
		Pagination:  loadPagination(ctx, config, logger),
	}

	if token := viper.GetString("token"); token != "" {
		clientConfig.AccessToken = token
	} else {
		var expiresAt time.Time
		if apiConfig.TokenExpiresAt != nil {
			expiresAt = *apiConfig.TokenExpiresAt
		}

		store := auth.NewPersistingTokenStore(NewConfigPersister(), domain, apiConfig.Token, expiresAt)
		store.OnPersistError(func(err error) {
			logger.Warn().Err(err).Str("api", domain).Msg("failed to persist token")
		})

		clientConfig.TokenSource = store
	}

	cli, err := client.New(ctx, clientConfig, bizhttp.WithRetryLogger(logging.NewRetryLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return cli, nil
}
