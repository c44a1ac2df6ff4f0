package bizapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/internal/auth"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

type widget struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unitPrice"`
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, envelope interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(envelope))
}

func noRetry() bizapi.RequestClientOption {
	return bizapi.WithRetry(0, time.Millisecond, time.Millisecond)
}

func TestRequestClient_GetAs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/widgets/1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		writeEnvelope(t, w, http.StatusOK, bizapi.NewEnvelope(200, "ok", widget{ID: 1, Name: "bolt", UnitPrice: 3}))
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, auth.NewCredentialSlot("secret"))

	result := bizapi.GetAs[widget](context.Background(), client, "/api/widgets/1", nil)

	value, ok := result.Value()
	require.True(t, ok, result.Message())
	assert.Equal(t, widget{ID: 1, Name: "bolt", UnitPrice: 3}, value)
}

func TestRequestClient_Credentials(t *testing.T) {
	t.Parallel()

	var headers []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		if present {
			headers = append(headers, r.Header.Get("Authorization"))
		} else {
			headers = append(headers, "<none>")
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, nil)
	ctx := context.Background()

	require.True(t, client.Get(ctx, "/api/ping", nil).IsSuccess())

	client.SetToken("abc")
	require.True(t, client.Get(ctx, "/api/ping", nil).IsSuccess())

	client.ClearToken()
	require.True(t, client.Get(ctx, "/api/ping", nil).IsSuccess())

	assert.Equal(t, []string{"<none>", "Bearer abc", "<none>"}, headers)
}

func TestRequestClient_BodiesAndMethods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"id":0,"name":"nut","unitPrice":2}`, string(body))

			var in widget
			assert.NoError(t, json.Unmarshal(body, &in))
			in.ID = 9

			writeEnvelope(t, w, http.StatusCreated, bizapi.NewEnvelope(201, "created", in))
		case http.MethodDelete:
			writeEnvelope(t, w, http.StatusOK, bizapi.Envelope[bizapi.Void]{Code: 200, Message: "deleted", Success: true})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, nil)
	ctx := context.Background()
	input := widget{Name: "nut", UnitPrice: 2}

	created, err := bizapi.PostAs[widget](ctx, client, "/api/widgets", input).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 9, created.ID)

	updated, err := bizapi.PutAs[widget](ctx, client, "/api/widgets/9", &input).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "nut", updated.Name)

	assert.True(t, client.Post(ctx, "/api/widgets", input).IsSuccess())
	assert.True(t, client.Put(ctx, "/api/widgets/9", input).IsSuccess())
	assert.True(t, client.Delete(ctx, "/api/widgets/9").IsSuccess())

	// DeleteAs expects a result; a void envelope is a parse failure.
	deleted := bizapi.DeleteAs[widget](ctx, client, "/api/widgets/9")
	assert.ErrorIs(t, deleted.Cause(), bizapi.ErrMissingResult)
}

func TestRequestClient_QueryEncoding(t *testing.T) {
	t.Parallel()

	var rawQueries []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQueries = append(rawQueries, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, nil)
	ctx := context.Background()

	client.Get(ctx, "/api/products", bizapi.PageQuery(1, 10, map[string][]string{"q": {"red shoes & socks"}}))
	client.Get(ctx, "/api/products", nil)

	assert.Equal(t, []string{"page=1&pageSize=10&q=red%20shoes%20%26%20socks", ""}, rawQueries)
}

func TestRequestClient_NoUncaughtFailures(t *testing.T) {
	t.Parallel()

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := bizapi.NewRequestClient(url, nil, noRetry())

		var result bizapi.Result[widget]

		require.NotPanics(t, func() {
			result = bizapi.GetAs[widget](context.Background(), client, "/api/widgets/1", nil)
		})
		require.True(t, result.IsFailure())
		assert.Contains(t, result.Message(), "unable to reach the server")
		assert.True(t, bizapi.IsServerError(result.Cause()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
		}))
		defer server.Close()

		result := bizapi.GetAs[widget](context.Background(), bizapi.NewRequestClient(server.URL, nil), "/api/widgets/1", nil)

		require.True(t, result.IsFailure())
		assert.Equal(t, bizapi.MessageUnauthorized, result.Message())
		assert.True(t, bizapi.IsUnauthorized(result.Cause()))
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":200,"result":{"id":`))
		}))
		defer server.Close()

		result := bizapi.GetAs[widget](context.Background(), bizapi.NewRequestClient(server.URL, nil), "/api/widgets/1", nil)

		require.True(t, result.IsFailure())
		assert.Contains(t, result.Message(), "failed to parse server response")
		assert.True(t, bizapi.IsServerError(result.Cause()))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := bizapi.NewRequestClient(server.URL, nil, noRetry()).Get(ctx, "/api/ping", nil)

		require.True(t, result.IsFailure())
		require.ErrorIs(t, result.Cause(), context.Canceled)
	})

	t.Run("unencodable body", func(t *testing.T) {
		t.Parallel()

		client := bizapi.NewRequestClient("http://127.0.0.1:1", nil)
		result := client.Post(context.Background(), "/api/widgets", map[string]interface{}{"bad": make(chan int)})

		require.True(t, result.IsFailure())
		assert.Contains(t, result.Message(), "failed to encode request")
	})
}

func TestRequestClient_Interceptors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "tenant-a", r.Header.Get("X-Tenant"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	collector := bizapi.NewMetricsCollector()
	breaker := bizapi.NewCircuitBreaker(&bizapi.CircuitBreakerConfig{Threshold: 2, Timeout: time.Hour, SuccessThreshold: 1})

	chain := bizapi.NewInterceptorChain()
	chain.AddRequestInterceptor(bizapi.HeaderInterceptor(map[string]string{"X-Tenant": "tenant-a"}))
	chain.AddRequestInterceptor(bizapi.CircuitBreakerRequestInterceptor(breaker))
	chain.AddRequestInterceptor(bizapi.MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(bizapi.MetricsResponseInterceptor(collector))
	chain.AddResponseInterceptor(bizapi.CircuitBreakerResponseInterceptor(breaker))

	logger := &recordingLogger{}
	client := bizapi.NewRequestClient(server.URL, nil, noRetry(), bizapi.WithInterceptors(chain), bizapi.WithRequestLogger(logger))
	ctx := context.Background()

	for range 2 {
		result := client.Get(ctx, "/api/orders", nil)
		assert.True(t, bizapi.IsServerError(result.Cause()))
	}

	rejected := client.Get(ctx, "/api/orders", nil)
	require.True(t, rejected.IsFailure())
	require.ErrorIs(t, rejected.Cause(), bizapi.ErrCircuitBreakerOpen)

	assert.Equal(t, int32(2), calls.Load())

	metrics, ok := collector.GetMetrics("GET /api/orders")
	require.True(t, ok)
	assert.Equal(t, int64(2), metrics.TotalErrors)

	assert.Equal(t, []string{"warn", "warn", "warn"}, logger.levels())
}

func TestGetPage_EndToEnd(t *testing.T) {
	t.Parallel()

	collection := make([]widget, 25)
	for i := range collection {
		collection[i] = widget{ID: i + 1, Name: "w" + strconv.Itoa(i+1)}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		list, err := bizapi.NewPagedList(collection, page, pageSize)
		if err != nil {
			writeEnvelope(t, w, http.StatusBadRequest, bizapi.NewFailureEnvelope(400, err.Error()))

			return
		}

		writeEnvelope(t, w, http.StatusOK, bizapi.NewEnvelope(200, "ok", bizapi.NewPaginatedEnvelope(list)))
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, nil)
	ctx := context.Background()

	page2, err := bizapi.GetPage[widget](ctx, client, "/api/widgets", bizapi.PageQuery(2, 10, nil)).Unwrap()
	require.NoError(t, err)
	assert.Len(t, page2.Items, 10)
	assert.Equal(t, 2, page2.PageNumber)
	assert.Equal(t, 3, page2.TotalPages())
	assert.True(t, page2.HasPrevious())
	assert.True(t, page2.HasNext())
	assert.Equal(t, 11, page2.Items[0].ID)

	page3, err := bizapi.GetPage[widget](ctx, client, "/api/widgets", bizapi.PageQuery(3, 10, nil)).Unwrap()
	require.NoError(t, err)
	assert.Len(t, page3.Items, 5)
	assert.False(t, page3.HasNext())

	invalid := bizapi.GetPage[widget](ctx, client, "/api/widgets", bizapi.PageQuery(0, 10, nil))
	assert.True(t, bizapi.IsBadRequest(invalid.Cause()))
}

func TestRequestClient_InterceptorRejectionsAreClassified(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(t, w, http.StatusOK, bizapi.NewEnvelope(200, "ok", widget{ID: 1}))
	}))
	defer server.Close()

	t.Run("cancelled while rate limited", func(t *testing.T) {
		chain := bizapi.NewInterceptorChain()
		chain.AddRequestInterceptor(bizapi.RateLimitInterceptor(1))

		client := bizapi.NewRequestClient(server.URL, nil, noRetry(), bizapi.WithInterceptors(chain))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := bizapi.GetAs[widget](ctx, client, "/x", nil)
		require.True(t, result.IsFailure())
		assert.Equal(t, bizapi.ErrorKindServerError, bizapi.KindOf(result.Cause()))
		assert.Contains(t, result.Message(), "unable to reach the server")
		require.ErrorIs(t, result.Cause(), context.Canceled)
	})

	t.Run("open circuit", func(t *testing.T) {
		breaker := bizapi.NewCircuitBreaker(&bizapi.CircuitBreakerConfig{Threshold: 1, Timeout: time.Hour, SuccessThreshold: 1})

		chain := bizapi.NewInterceptorChain()
		chain.AddRequestInterceptor(bizapi.CircuitBreakerRequestInterceptor(breaker))
		chain.AddResponseInterceptor(bizapi.CircuitBreakerResponseInterceptor(breaker))

		client := bizapi.NewRequestClient("http://127.0.0.1:1", nil, noRetry(), bizapi.WithInterceptors(chain))

		first := bizapi.GetAs[widget](context.Background(), client, "/x", nil)
		require.True(t, first.IsFailure())

		rejected := bizapi.GetAs[widget](context.Background(), client, "/x", nil)
		require.True(t, rejected.IsFailure())
		assert.Equal(t, bizapi.ErrorKindServerError, bizapi.KindOf(rejected.Cause()))
		assert.Equal(t, bizapi.MessageServerError, rejected.Message())
		require.ErrorIs(t, rejected.Cause(), bizapi.ErrCircuitBreakerOpen)
	})

	assert.Zero(t, calls.Load())
}

func TestRequestClient_PublicTransportOptions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shop-sync/2.0", r.Header.Get("User-Agent"))
		writeEnvelope(t, w, http.StatusOK, bizapi.NewEnvelope(200, "ok", widget{ID: 7}))
	}))
	defer server.Close()

	client := bizapi.NewRequestClient(server.URL, nil,
		bizapi.WithRetry(0, time.Millisecond, time.Millisecond),
		bizapi.WithTimeout(5*time.Second),
		bizapi.WithHTTPClient(&http.Client{}),
		bizapi.WithUserAgent("shop-sync/2.0"),
	)

	value, err := bizapi.GetAs[widget](context.Background(), client, "/api/widgets/7", nil).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 7, value.ID)
}
