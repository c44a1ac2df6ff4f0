package bizapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/bizapi/internal/auth"
	bizhttp "github.com/fivetwenty-io/bizapi/internal/http"
)

// RequestClient issues calls against the backend and turns every outcome
// into a Result. Nothing it does returns an error or panics past its public
// operations; transport, status and decoding failures all become Failures.
//
// Typed calls are package functions (GetAs, PostAs, PutAs, DeleteAs,
// GetPage) because Go methods cannot take type parameters. Calls without a
// result are methods (Get, Post, Put, Delete).
type RequestClient struct {
	transport    *bizhttp.Client
	credentials  Credentials
	interceptors *InterceptorChain
	logger       Logger
}

// RequestClientOption configures a RequestClient.
type RequestClientOption func(*requestClientOptions)

type requestClientOptions struct {
	transportOpts []bizhttp.Option
	interceptors  *InterceptorChain
	logger        Logger
}

// WithTransportOptions passes options through to the HTTP transport. The
// option type lives in an internal package, so this is only usable from
// inside this module; other callers use WithTimeout, WithRetry,
// WithHTTPClient and WithUserAgent.
func WithTransportOptions(opts ...bizhttp.Option) RequestClientOption {
	return func(o *requestClientOptions) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}

// WithTimeout bounds a single attempt.
func WithTimeout(timeout time.Duration) RequestClientOption {
	return WithTransportOptions(bizhttp.WithTimeout(timeout))
}

// WithRetry sets how often transient failures are retried and the backoff
// bounds between attempts. retryMax 0 disables retries.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) RequestClientOption {
	return WithTransportOptions(bizhttp.WithRetryConfig(retryMax, waitMin, waitMax))
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) RequestClientOption {
	return WithTransportOptions(bizhttp.WithHTTPClient(httpClient))
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) RequestClientOption {
	return WithTransportOptions(bizhttp.WithUserAgent(userAgent))
}

// WithInterceptors sets the chain run around every call.
func WithInterceptors(chain *InterceptorChain) RequestClientOption {
	return func(o *requestClientOptions) {
		o.interceptors = chain
	}
}

// WithRequestLogger sets the logger failed calls are reported to.
func WithRequestLogger(logger Logger) RequestClientOption {
	return func(o *requestClientOptions) {
		o.logger = logger
	}
}

// NewRequestClient creates a client for baseURL. credentials may be nil, in
// which case an empty credential slot is created.
func NewRequestClient(baseURL string, credentials Credentials, opts ...RequestClientOption) *RequestClient {
	options := &requestClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if credentials == nil {
		credentials = auth.NewCredentialSlot("")
	}

	if options.interceptors == nil {
		options.interceptors = NewInterceptorChain()
	}

	if options.logger == nil {
		options.logger = noopLogger{}
	}

	return &RequestClient{
		transport:    bizhttp.NewClient(baseURL, credentials, options.transportOpts...),
		credentials:  credentials,
		interceptors: options.interceptors,
		logger:       options.logger,
	}
}

// BaseURL returns the normalized base address.
func (c *RequestClient) BaseURL() string {
	return c.transport.BaseURL()
}

// SetToken sets the bearer credential attached to subsequent calls.
func (c *RequestClient) SetToken(token string) {
	c.credentials.SetToken(token)
}

// ClearToken removes the bearer credential; the Authorization header is
// omitted from subsequent calls.
func (c *RequestClient) ClearToken() {
	c.credentials.ClearToken()
}

// Credentials returns the credential slot.
func (c *RequestClient) Credentials() Credentials {
	return c.credentials
}

// Get performs a GET whose envelope carries no result.
func (c *RequestClient) Get(ctx context.Context, path string, query url.Values) Result[Void] {
	return send(ctx, c, http.MethodGet, path, query, nil, HandleEmptyResponse)
}

// Post performs a POST whose envelope carries no result.
func (c *RequestClient) Post(ctx context.Context, path string, body interface{}) Result[Void] {
	return send(ctx, c, http.MethodPost, path, nil, body, HandleEmptyResponse)
}

// Put performs a PUT whose envelope carries no result.
func (c *RequestClient) Put(ctx context.Context, path string, body interface{}) Result[Void] {
	return send(ctx, c, http.MethodPut, path, nil, body, HandleEmptyResponse)
}

// Delete performs a DELETE whose envelope carries no result.
func (c *RequestClient) Delete(ctx context.Context, path string) Result[Void] {
	return send(ctx, c, http.MethodDelete, path, nil, nil, HandleEmptyResponse)
}

// GetAs performs a GET and decodes the envelope result as T.
func GetAs[T any](ctx context.Context, c *RequestClient, path string, query url.Values) Result[T] {
	return send(ctx, c, http.MethodGet, path, query, nil, HandleResponse[T])
}

// PostAs performs a POST with body and decodes the envelope result as T.
func PostAs[T any](ctx context.Context, c *RequestClient, path string, body interface{}) Result[T] {
	return send(ctx, c, http.MethodPost, path, nil, body, HandleResponse[T])
}

// PutAs performs a PUT with body and decodes the envelope result as T.
func PutAs[T any](ctx context.Context, c *RequestClient, path string, body interface{}) Result[T] {
	return send(ctx, c, http.MethodPut, path, nil, body, HandleResponse[T])
}

// DeleteAs performs a DELETE and decodes the envelope result as T.
func DeleteAs[T any](ctx context.Context, c *RequestClient, path string) Result[T] {
	return send(ctx, c, http.MethodDelete, path, nil, nil, HandleResponse[T])
}

// GetPage fetches one server-paginated page. The page is adopted as the
// server cut it; it is never re-paginated.
func GetPage[T any](ctx context.Context, c *RequestClient, path string, query url.Values) Result[PagedList[T]] {
	return Bind(GetAs[PaginatedEnvelope[T]](ctx, c, path, query), func(envelope PaginatedEnvelope[T]) Result[PagedList[T]] {
		list, err := PagedListFromEnvelope(envelope)
		if err != nil {
			return ParseFailure[PagedList[T]](http.StatusOK, nil, err)
		}

		return Success(list)
	})
}

// PageQuery builds the page/pageSize query for a list call, merged into
// extra when given.
func PageQuery(page, pageSize int, extra url.Values) url.Values {
	query := url.Values{}
	for key, values := range extra {
		query[key] = append([]string(nil), values...)
	}

	query.Set("page", fmt.Sprint(page))
	query.Set("pageSize", fmt.Sprint(pageSize))

	return query
}

func send[T any](
	ctx context.Context,
	c *RequestClient,
	method, path string,
	query url.Values,
	body interface{},
	handle func(statusCode int, body []byte) Result[T],
) Result[T] {
	result := roundTrip(ctx, c, method, path, query, body, handle)

	if result.IsFailure() {
		c.logger.Warn("API call failed", map[string]interface{}{
			"method":  method,
			"path":    path,
			"kind":    KindOf(result.Cause()).String(),
			"message": result.Message(),
		})
	}

	return result
}

func roundTrip[T any](
	ctx context.Context,
	c *RequestClient,
	method, path string,
	query url.Values,
	body interface{},
	handle func(statusCode int, body []byte) Result[T],
) Result[T] {
	encoded, err := encodeRequestBody(body)
	if err != nil {
		return Failure[T]("failed to encode request: "+err.Error(), err)
	}

	req := &Request{
		Method:  method,
		Path:    path,
		Headers: make(http.Header),
		Body:    encoded,
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return interceptorFailure[T](ctx, err)
	}

	transportReq := &bizhttp.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   query,
		Headers: flattenHeaders(req.Headers),
	}

	if req.Body != nil {
		transportReq.Body = req.Body
	}

	resp, transportErr := c.transport.Do(ctx, transportReq)

	intercepted := &Response{Error: transportErr}
	if resp != nil {
		intercepted.StatusCode = resp.StatusCode
		intercepted.Headers = resp.Headers
		intercepted.Body = resp.Body
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, intercepted)
	if err != nil {
		return interceptorFailure[T](ctx, err)
	}

	if transportErr != nil {
		return TransportFailure[T](transportErr)
	}

	return handle(intercepted.StatusCode, intercepted.Body)
}

// interceptorFailure classifies an interceptor rejection. A cancelled or
// expired context is a transport failure, as it would have been without the
// interceptor. An open circuit is a server error the caller may retry.
func interceptorFailure[T any](ctx context.Context, err error) Result[T] {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return TransportFailure[T](err)
	case ctx.Err() != nil:
		return TransportFailure[T](fmt.Errorf("%w: %w", ctx.Err(), err))
	case errors.Is(err, ErrCircuitBreakerOpen):
		return Failure[T](MessageServerError, &ClassifiedError{
			Kind:    ErrorKindServerError,
			Message: MessageServerError,
			Cause:   err,
		})
	default:
		return FailureFrom[T](err)
	}
}

func encodeRequestBody(body interface{}) ([]byte, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return typed, nil
	case json.RawMessage:
		return typed, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return encoded, nil
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}

	flat := make(map[string]string, len(headers))
	for key := range headers {
		flat[key] = headers.Get(key)
	}

	return flat
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
