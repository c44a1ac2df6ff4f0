package client

import (
	"context"

	"github.com/fivetwenty-io/bizapi/internal/auth"
	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/internal/http"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// Client implements the bizapi.Client interface.
type Client struct {
	requests   *bizapi.RequestClient
	pagination *bizapi.Registry
	logger     bizapi.Logger

	// Resource clients
	products      bizapi.ProductsClient
	orders        bizapi.OrdersClient
	customers     bizapi.CustomersClient
	users         bizapi.UsersClient
	agentRequests bizapi.AgentRequestsClient
	commissions   bizapi.CommissionsClient
	reports       bizapi.ReportsClient
	session       bizapi.SessionClient
}

// createCredentials picks the credential slot based on config.
func createCredentials(config *bizapi.Config) bizapi.Credentials {
	if credentials, ok := config.TokenSource.(bizapi.Credentials); ok {
		return credentials
	}

	slot := auth.NewCredentialSlot(config.AccessToken)
	if config.TokenSource != nil {
		slot.WithFallback(config.TokenSource)
	}

	return slot
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *bizapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// createInterceptorChain assembles the interceptors config asks for. Logging
// runs first so it sees every call, the circuit breaker last so open-circuit
// rejections are still logged and counted.
func createInterceptorChain(config *bizapi.Config) *bizapi.InterceptorChain {
	chain := bizapi.NewInterceptorChain()

	if config.Logger != nil {
		chain.AddRequestInterceptor(bizapi.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(bizapi.LoggingResponseInterceptor(config.Logger))
	}

	if len(config.Headers) > 0 {
		chain.AddRequestInterceptor(bizapi.HeaderInterceptor(config.Headers))
	}

	if config.RateLimit > 0 {
		chain.AddRequestInterceptor(bizapi.RateLimitInterceptor(config.RateLimit))
	}

	if config.Metrics != nil {
		chain.AddRequestInterceptor(bizapi.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(bizapi.MetricsResponseInterceptor(config.Metrics))
	}

	if config.CircuitBreaker != nil {
		breaker := bizapi.NewCircuitBreaker(config.CircuitBreaker)
		chain.AddRequestInterceptor(bizapi.CircuitBreakerRequestInterceptor(breaker))
		chain.AddResponseInterceptor(bizapi.CircuitBreakerResponseInterceptor(breaker))
	}

	return chain
}

// New creates a new backend client. Extra transport options are applied after
// the ones derived from config.
func New(_ context.Context, config *bizapi.Config, transportOpts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, bizapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, bizapi.ErrAPIEndpointRequired
	}

	pagination := config.Pagination
	if pagination == nil {
		pagination = bizapi.NewRegistry()
	}

	requestOpts := []bizapi.RequestClientOption{
		bizapi.WithTransportOptions(append(createHTTPClientOptions(config), transportOpts...)...),
		bizapi.WithInterceptors(createInterceptorChain(config)),
	}

	if config.Logger != nil {
		requestOpts = append(requestOpts, bizapi.WithRequestLogger(config.Logger))
	}

	client := &Client{
		requests:   bizapi.NewRequestClient(config.APIEndpoint, createCredentials(config), requestOpts...),
		pagination: pagination,
		logger:     config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.products = NewProductsClient(c.requests, c.pagination)
	c.orders = NewOrdersClient(c.requests, c.pagination)
	c.customers = NewCustomersClient(c.requests, c.pagination)
	c.users = NewUsersClient(c.requests, c.pagination)
	c.agentRequests = NewAgentRequestsClient(c.requests, c.pagination)
	c.commissions = NewCommissionsClient(c.requests, c.pagination)
	c.reports = NewReportsClient(c.requests)
	c.session = NewSessionClient(c.requests)
}

// Resource client accessors

// Products implements bizapi.Client.Products.
func (c *Client) Products() bizapi.ProductsClient {
	return c.products
}

// Orders implements bizapi.Client.Orders.
func (c *Client) Orders() bizapi.OrdersClient {
	return c.orders
}

// Customers implements bizapi.Client.Customers.
func (c *Client) Customers() bizapi.CustomersClient {
	return c.customers
}

// Users implements bizapi.Client.Users.
func (c *Client) Users() bizapi.UsersClient {
	return c.users
}

// AgentRequests implements bizapi.Client.AgentRequests.
func (c *Client) AgentRequests() bizapi.AgentRequestsClient {
	return c.agentRequests
}

// Commissions implements bizapi.Client.Commissions.
func (c *Client) Commissions() bizapi.CommissionsClient {
	return c.commissions
}

// Reports implements bizapi.Client.Reports.
func (c *Client) Reports() bizapi.ReportsClient {
	return c.reports
}

// Session implements bizapi.Client.Session.
func (c *Client) Session() bizapi.SessionClient {
	return c.session
}

// Pagination implements bizapi.Client.Pagination.
func (c *Client) Pagination() *bizapi.Registry {
	return c.pagination
}

// Requests implements bizapi.Client.Requests.
func (c *Client) Requests() *bizapi.RequestClient {
	return c.requests
}

var _ bizapi.Client = (*Client)(nil)
