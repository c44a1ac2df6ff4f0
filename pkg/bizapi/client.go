package bizapi

import (
	"context"
	"time"
)

// ResourceClient is the CRUD surface shared by every entity facade. List
// reads its page size from the pagination registry for the facade's entity
// type; ListWithSize overrides it for a single call.
type ResourceClient[T any] interface {
	List(ctx context.Context, page int) Result[PagedList[T]]
	ListWithSize(ctx context.Context, page, pageSize int) Result[PagedList[T]]
	Get(ctx context.Context, id string) Result[T]
	Create(ctx context.Context, item *T) Result[T]
	Update(ctx context.Context, id string, item *T) Result[T]
	Delete(ctx context.Context, id string) Result[Void]
}

// ProductsClient defines operations for catalog products.
type ProductsClient interface {
	ResourceClient[Product]
	Search(ctx context.Context, query string, page int) Result[PagedList[Product]]
}

// OrdersClient defines operations for orders.
type OrdersClient interface {
	ResourceClient[Order]
	Cancel(ctx context.Context, id string) Result[Order]
	ListByCustomer(ctx context.Context, customerID string, page int) Result[PagedList[Order]]
}

// CustomersClient defines operations for customers.
type CustomersClient interface {
	ResourceClient[Customer]
}

// UsersClient defines operations for back-office users.
type UsersClient interface {
	ResourceClient[User]
}

// AgentRequestsClient defines operations for agent applications.
type AgentRequestsClient interface {
	ResourceClient[AgentRequest]
	Approve(ctx context.Context, id string) Result[AgentRequest]
	Reject(ctx context.Context, id, reason string) Result[AgentRequest]
}

// CommissionsClient defines operations for agent commissions.
type CommissionsClient interface {
	ResourceClient[Commission]
	ListByAgent(ctx context.Context, agentID string, page int) Result[PagedList[Commission]]
}

// ReportsClient defines reporting operations.
type ReportsClient interface {
	Sales(ctx context.Context, from, to time.Time) Result[SalesReport]
}

// SessionClient signs in and out. A successful Login stores the returned
// token in the request client's credential slot; Logout clears it even when
// the server call fails.
type SessionClient interface {
	Login(ctx context.Context, username, password string) Result[Session]
	Logout(ctx context.Context) Result[Void]
	CurrentUser(ctx context.Context) Result[User]
}

// Client is the full backend client.
type Client interface {
	Products() ProductsClient
	Orders() OrdersClient
	Customers() CustomersClient
	Users() UsersClient
	AgentRequests() AgentRequestsClient
	Commissions() CommissionsClient
	Reports() ReportsClient
	Session() SessionClient

	// Summary fetches the total of every collection concurrently.
	Summary(ctx context.Context) Result[Summary]
	// Pagination returns the registry every List call reads from.
	Pagination() *Registry
	// Requests exposes the underlying request client for endpoints without
	// a facade.
	Requests() *RequestClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// TokenSource supplies the bearer token for each request. An empty token
// means no Authorization header is sent.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Credentials is a TokenSource whose token can be replaced at any time.
type Credentials interface {
	TokenSource
	SetToken(token string)
	ClearToken()
}

// Config represents client configuration for building a bizapi.Client.
//
// # Authentication
//
// AccessToken seeds the credential slot. TokenSource, when set, is consulted
// until the first SetToken or ClearToken; a TokenSource that also implements
// Credentials is used as the slot itself. Session().Login replaces the token
// on success and Session().Logout clears it.
//
// # Pagination
//
// Pagination is the page-size registry shared by every List call. When nil a
// fresh registry serving the built-in defaults is created; callers that
// persist preferences load one with LoadRegistry and pass it here.
type Config struct {
	// APIEndpoint: base URL of the backend (e.g., "https://shop.example.com").
	// bizclient.New trims a trailing slash and adds "https://" if no scheme
	// is present.
	APIEndpoint string

	AccessToken string
	TokenSource TokenSource

	// HTTPTimeout bounds a single attempt. Zero uses the default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). If 0, a sensible default is used by the client.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug     bool
	Logger    Logger
	UserAgent string

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit int
	// Headers are added to every request.
	Headers map[string]string
	// Metrics, when set, collects per-endpoint call statistics.
	Metrics *MetricsCollector
	// CircuitBreaker, when set, rejects calls after repeated server failures.
	CircuitBreaker *CircuitBreakerConfig

	Pagination *Registry
}
