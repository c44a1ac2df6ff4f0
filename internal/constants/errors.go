package constants

import "errors"

// Configuration errors.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrNoAPIConfigured     = errors.New("no API endpoint configured, use --api or set api in the config file")
	ErrConfigDirUnknown    = errors.New("could not determine configuration directory")
	ErrAPIConfigNotFound   = errors.New("API configuration not found")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Session errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated, use 'bizctl login' first")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
)

// Validation errors.
var (
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrInvalidPageSize   = errors.New("page size must be a positive integer")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrIDRequired        = errors.New("id is required")
	ErrReasonRequired    = errors.New("a reason is required to reject a request")
	ErrInputFileRequired = errors.New("an input file is required (--from-file)")
)
