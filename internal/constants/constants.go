package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Configuration locations.
const (
	// ConfigDirName is the directory under $HOME holding bizctl state.
	ConfigDirName = ".bizctl"

	// ConfigFileName is the base name of the main config file.
	ConfigFileName = "config.yml"

	// PaginationFileName is the base name of the persisted pagination settings.
	PaginationFileName = "pagination.yml"

	// EnvPrefix is the prefix for environment overrides.
	EnvPrefix = "BIZCTL"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// ServerReadHeaderTimeout bounds header reads on the fixture backend.
	ServerReadHeaderTimeout = 5 * time.Second

	// DefaultFakeServerAddr is where "bizctl fake-server" listens.
	DefaultFakeServerAddr = "127.0.0.1:8080"

	// ShutdownTimeout bounds graceful shutdown of the fixture backend.
	ShutdownTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination defaults.
const (
	// DefaultPageSize is the page size every entity type starts with.
	DefaultPageSize = 10

	// DefaultMaxPageSize is the upper bound page sizes are clamped to.
	DefaultMaxPageSize = 100

	// MinPageSize is the lower bound page sizes are clamped to.
	MinPageSize = 1

	// FirstPage is the number of the first page.
	FirstPage = 1
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent fan-out requests.
	DefaultConcurrencyLimit = 4
)

// Circuit breaker defaults.
const (
	// StatusClosed indicates a closed circuit.
	StatusClosed = "closed"

	// StatusOpen indicates an open circuit.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit.
	StatusHalfOpen = "half-open"

	// CircuitBreakerThreshold is the failure threshold for circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// Output formatting.
const (
	// FormatTable renders rows with tablewriter.
	FormatTable = "table"

	// FormatJSON renders indented JSON.
	FormatJSON = "json"

	// FormatYAML renders YAML.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON and YAML indentation.
	JSONIndentSize = 2

	// DateFormat is the layout for report date parameters.
	DateFormat = "2006-01-02"

	// DateTimeFormat is the layout for timestamps in table output.
	DateTimeFormat = "2006-01-02 15:04:05"

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "bizapi-go/1"
)

// Settings storage.
const (
	// DefaultSettingsBucket is the NATS KV bucket for shared settings.
	DefaultSettingsBucket = "bizctl_settings"

	// DefaultSettingsKey is the key pagination settings are stored under.
	DefaultSettingsKey = "pagination"
)
