package commands

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/internal/settings"
)

// Config represents the CLI configuration.
type Config struct {
	APIs       map[string]*APIConfig `json:"apis,omitempty"        yaml:"apis,omitempty"`
	CurrentAPI string                `json:"current_api,omitempty" yaml:"current_api,omitempty"`

	// Global settings
	Output    string         `json:"output"               yaml:"output"`
	NoColor   bool           `json:"no_color"             yaml:"no_color"`
	LogLevel  string         `json:"log_level,omitempty"  yaml:"log_level,omitempty"`
	LogFormat string         `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	RateLimit int            `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	Settings  SettingsConfig `json:"settings"             yaml:"settings"`
}

// APIConfig represents configuration for a single backend endpoint.
type APIConfig struct {
	Endpoint       string     `json:"endpoint"                   yaml:"endpoint"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
}

// SettingsConfig selects where page-size preferences are kept.
type SettingsConfig struct {
	Store string `json:"store,omitempty" yaml:"store,omitempty"`
	Path  string `json:"path,omitempty"  yaml:"path,omitempty"`

	NATSURL    string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`
	NATSBucket string `json:"nats_bucket,omitempty" yaml:"nats_bucket,omitempty"`
	NATSKey    string `json:"nats_key,omitempty"    yaml:"nats_key,omitempty"`
}

// storeConfig converts the CLI settings section into a settings.Config.
func (s SettingsConfig) storeConfig() (*settings.Config, error) {
	storeType := settings.StoreType(strings.ToLower(s.Store))

	switch storeType {
	case settings.StoreTypeNATS:
		natsConfig := &settings.NATSConfig{
			URL:    s.NATSURL,
			Bucket: s.NATSBucket,
			Key:    s.NATSKey,
		}

		return &settings.Config{Type: storeType, NATS: natsConfig}, nil

	case settings.StoreTypeMemory:
		return &settings.Config{Type: storeType}, nil

	default:
		path := s.Path
		if path == "" {
			defaultPath, err := settings.DefaultFilePath()
			if err != nil {
				return nil, fmt.Errorf("resolving settings file: %w", err)
			}

			path = defaultPath
		}

		return &settings.Config{Type: settings.StoreTypeFile, Path: path}, nil
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage bizctl configuration including API endpoints and settings storage",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration. Tokens are masked in table output.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			renderer := &OutputRenderer[*Config]{
				RenderTable: displayConfigTable,
			}

			return renderer.Render(cmd.OutOrStdout(), config, outputFormat())
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a global configuration value.

Keys: output, no_color, log_level, log_format, rate_limit, current_api,
settings.store, settings.path, settings.nats_url, settings.nats_bucket,
settings.nats_key

Values starting with "-" must follow "--" so they are not read as flags.`,
		Example: `  bizctl config set output json
  bizctl config set rate_limit 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a global configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "output":
		config.Output = value
	case "no_color", "no-color":
		config.NoColor = value == "true" || value == Yes
	case "log_level", "log-level":
		config.LogLevel = value
	case "log_format", "log-format":
		config.LogFormat = value
	case "rate_limit", "rate-limit":
		if value == "" {
			config.RateLimit = 0

			return nil
		}

		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidRateLimit, value)
		}

		config.RateLimit = limit
	case "current_api", "current-api":
		if value != "" {
			if _, ok := config.APIs[value]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrAPIConfigNotFound, value)
			}
		}

		config.CurrentAPI = value
	case "settings.store":
		config.Settings.Store = value
	case "settings.path":
		config.Settings.Path = value
	case "settings.nats_url":
		config.Settings.NATSURL = value
	case "settings.nats_bucket":
		config.Settings.NATSBucket = value
	case "settings.nats_key":
		config.Settings.NATSKey = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig reads the configuration from viper.
func loadConfig() *Config {
	config := &Config{
		APIs:       make(map[string]*APIConfig),
		CurrentAPI: viper.GetString("current_api"),
		Output:     viper.GetString("output"),
		NoColor:    viper.GetBool("no_color"),
		LogLevel:   viper.GetString("log_level"),
		LogFormat:  viper.GetString("log_format"),
		RateLimit:  viper.GetInt("rate_limit"),
		Settings: SettingsConfig{
			Store:      viper.GetString("settings.store"),
			Path:       viper.GetString("settings.path"),
			NATSURL:    viper.GetString("settings.nats_url"),
			NATSBucket: viper.GetString("settings.nats_bucket"),
			NATSKey:    viper.GetString("settings.nats_key"),
		},
	}

	for domain, apiRaw := range viper.GetStringMap("apis") {
		if apiMap, ok := apiRaw.(map[string]interface{}); ok {
			config.APIs[domain] = parseAPIConfig(apiMap)
		}
	}

	return config
}

// parseAPIConfig parses API configuration from a map.
func parseAPIConfig(apiMap map[string]interface{}) *APIConfig {
	apiConfig := &APIConfig{}

	if endpoint, ok := apiMap["endpoint"].(string); ok {
		apiConfig.Endpoint = endpoint
	}

	if token, ok := apiMap["token"].(string); ok {
		apiConfig.Token = token
	}

	if username, ok := apiMap["username"].(string); ok {
		apiConfig.Username = username
	}

	switch expiresAt := apiMap["token_expires_at"].(type) {
	case time.Time:
		apiConfig.TokenExpiresAt = &expiresAt
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, expiresAt)
		if err == nil {
			apiConfig.TokenExpiresAt = &parsed
		}
	}

	return apiConfig
}

// configFilePath returns the file configuration is written to.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = viper.GetString("config")
	}

	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

// saveConfigStruct writes config to the config file and reloads viper from it.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

// extractDomainFromEndpoint returns the host of endpoint, used as the key of
// its API configuration.
func extractDomainFromEndpoint(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSuffix(endpoint, "/"))
	}

	return strings.ToLower(parsed.Host)
}

func displayConfigTable(w io.Writer, config *Config) error {
	err := renderProperties(w,
		[]string{
			"Output", "No Color", "Log Level", "Log Format", "Rate Limit", "Current API",
			"Settings Store", "Settings Path", "NATS URL", "NATS Bucket", "NATS Key",
		},
		[]string{
			config.Output, strconv.FormatBool(config.NoColor), config.LogLevel, config.LogFormat,
			strconv.Itoa(config.RateLimit), config.CurrentAPI,
			config.Settings.Store, config.Settings.Path,
			config.Settings.NATSURL, config.Settings.NATSBucket, config.Settings.NATSKey,
		},
	)
	if err != nil {
		return err
	}

	if len(config.APIs) == 0 {
		return nil
	}

	domains := make([]string, 0, len(config.APIs))
	for domain := range config.APIs {
		domains = append(domains, domain)
	}

	sort.Strings(domains)

	rows := make([][]string, 0, len(domains))

	for _, domain := range domains {
		api := config.APIs[domain]

		expires := NotAvailable
		if api.TokenExpiresAt != nil {
			expires = formatTime(*api.TokenExpiresAt)
		}

		current := ""
		if domain == config.CurrentAPI {
			current = "*"
		}

		rows = append(rows, []string{current, domain, api.Endpoint, api.Username, maskToken(api.Token), expires})
	}

	_, _ = io.WriteString(w, "\nAPIs:\n")

	return renderTable(w, []string{"", "Domain", "Endpoint", "Username", "Token", "Expires"}, rows)
}
