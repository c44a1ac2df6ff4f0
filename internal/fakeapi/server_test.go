package fakeapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/internal/fakeapi"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

type harness struct {
	t      *testing.T
	server *httptest.Server
}

func newHarness(t *testing.T, dataset *fakeapi.Dataset, opts ...fakeapi.Option) *harness {
	t.Helper()

	server := httptest.NewServer(fakeapi.New(dataset, opts...))
	t.Cleanup(server.Close)

	return &harness{t: t, server: server}
}

func (h *harness) call(method, path, token string, body interface{}) (int, []byte) {
	h.t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(h.t, err)

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	return resp.StatusCode, data
}

func (h *harness) login(username, password string) string {
	h.t.Helper()

	status, body := h.call(http.MethodPost, "/api/auth/login", "", bizapi.LoginRequest{Username: username, Password: password})
	session, err := bizapi.HandleResponse[bizapi.Session](status, body).Unwrap()
	require.NoError(h.t, err)
	require.NotEmpty(h.t, session.Token)

	return session.Token
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	status, _ := h.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	status, body := h.call(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	result := bizapi.HandleResponse[bizapi.PaginatedEnvelope[bizapi.Product]](status, body)
	assert.True(t, bizapi.IsUnauthorized(result.Cause()))

	status, _ = h.call(http.MethodGet, "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		token := h.login("admin", "secret")

		status, body := h.call(http.MethodGet, "/api/auth/me", token, nil)
		user, err := bizapi.HandleResponse[bizapi.User](status, body).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
		assert.Equal(t, fakeapi.RoleAdmin, user.Role)
	})

	t.Run("wrong password is a business failure", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		status, body := h.call(http.MethodPost, "/api/auth/login", "", bizapi.LoginRequest{Username: "admin", Password: "nope"})
		assert.Equal(t, http.StatusOK, status)

		result := bizapi.HandleResponse[bizapi.Session](status, body)
		require.True(t, result.IsFailure())
		assert.Equal(t, "invalid username or password", result.Message())
		assert.True(t, bizapi.IsUnauthorized(result.Cause()))
	})

	t.Run("missing password is a bad request", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		status, _ := h.call(http.MethodPost, "/api/auth/login", "", bizapi.LoginRequest{Username: "admin"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		token := h.login("agent", "secret")

		status, body := h.call(http.MethodPost, "/api/auth/logout", token, nil)
		require.True(t, bizapi.HandleEmptyResponse(status, body).IsSuccess())

		status, _ = h.call(http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestSessionsExpire(t *testing.T) {
	t.Parallel()

	var (
		mutex sync.Mutex
		now   = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	)

	clock := func() time.Time {
		mutex.Lock()
		defer mutex.Unlock()

		return now
	}

	h := newHarness(t, nil, fakeapi.WithClock(clock))
	token := h.login("admin", "secret")

	status, _ := h.call(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	mutex.Lock()
	now = now.Add(fakeapi.SessionLifetime)
	mutex.Unlock()

	status, _ = h.call(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStaticTokenAndWithoutAuth(t *testing.T) {
	t.Parallel()

	static := newHarness(t, nil, fakeapi.WithStaticToken("fixed"))
	status, _ := static.call(http.MethodGet, "/api/orders", "fixed", nil)
	assert.Equal(t, http.StatusOK, status)

	open := newHarness(t, nil, fakeapi.WithoutAuth())
	status, _ = open.call(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestListPagination(t *testing.T) {
	t.Parallel()

	h := newHarness(t, fakeapi.SeedDataset(25), fakeapi.WithStaticToken("t"))

	tests := []struct {
		name      string
		query     string
		wantItems int
		wantFirst string
	}{
		{name: "defaults", query: "", wantItems: 10, wantFirst: "prd-001"},
		{name: "second page", query: "?page=2&pageSize=10", wantItems: 10, wantFirst: "prd-011"},
		{name: "last partial page", query: "?page=3&pageSize=10", wantItems: 5, wantFirst: "prd-021"},
		{name: "past the end", query: "?page=9&pageSize=10", wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, body := h.call(http.MethodGet, "/api/products"+tt.query, "t", nil)
			envelope, err := bizapi.HandleResponse[bizapi.PaginatedEnvelope[bizapi.Product]](status, body).Unwrap()
			require.NoError(t, err)

			assert.Len(t, envelope.Items, tt.wantItems)
			assert.Equal(t, 25, envelope.Pagination.TotalItems)
			assert.Equal(t, 3, envelope.Pagination.TotalPages)

			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, envelope.Items[0].ID)
			}
		})
	}
}

func TestListRejectsInvalidPaging(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, fakeapi.WithStaticToken("t"))

	for _, query := range []string{"?page=0", "?pageSize=0", "?page=abc", "?pageSize=101"} {
		status, body := h.call(http.MethodGet, "/api/customers"+query, "t", nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.NotEmpty(t, bizapi.ExtractErrorMessage(body), query)
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()

	h := newHarness(t, fakeapi.SeedDataset(25), fakeapi.WithStaticToken("t"))

	status, body := h.call(http.MethodGet, "/api/products?q=product%201&pageSize=100", "t", nil)
	products, err := bizapi.HandleResponse[bizapi.PaginatedEnvelope[bizapi.Product]](status, body).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 11, products.Pagination.TotalItems)

	status, body = h.call(http.MethodGet, "/api/orders?customerId=cus-003", "t", nil)
	orders, err := bizapi.HandleResponse[bizapi.PaginatedEnvelope[bizapi.Order]](status, body).Unwrap()
	require.NoError(t, err)
	require.Len(t, orders.Items, 1)
	assert.Equal(t, "ord-003", orders.Items[0].ID)

	status, body = h.call(http.MethodGet, "/api/commissions?agentId=nobody", "t", nil)
	commissions, err := bizapi.HandleResponse[bizapi.PaginatedEnvelope[bizapi.Commission]](status, body).Unwrap()
	require.NoError(t, err)
	assert.Empty(t, commissions.Items)
	assert.Equal(t, 0, commissions.Pagination.TotalPages)
}

func TestCRUD(t *testing.T) {
	t.Parallel()

	h := newHarness(t, fakeapi.SeedDataset(3), fakeapi.WithStaticToken("t"))

	status, body := h.call(http.MethodPost, "/api/customers", "t", bizapi.Customer{Name: "New Buyer", Email: "new@example.com"})
	assert.Equal(t, http.StatusCreated, status)

	created, err := bizapi.HandleResponse[bizapi.Customer](status, body).Unwrap()
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	created.Phone = "+1-555-0000"
	status, body = h.call(http.MethodPut, "/api/customers/"+created.ID, "t", created)
	updated, err := bizapi.HandleResponse[bizapi.Customer](status, body).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0000", updated.Phone)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	status, body = h.call(http.MethodDelete, "/api/customers/"+created.ID, "t", nil)
	require.True(t, bizapi.HandleEmptyResponse(status, body).IsSuccess())

	status, body = h.call(http.MethodGet, "/api/customers/"+created.ID, "t", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.True(t, bizapi.IsNotFound(bizapi.HandleResponse[bizapi.Customer](status, body).Cause()))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, fakeapi.WithStaticToken("t"))

	status, _ := h.call(http.MethodPost, "/api/products", "t", bizapi.Product{Price: 10})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(http.MethodPost, "/api/orders", "t", bizapi.Order{CustomerID: "cus-001"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(http.MethodPost, "/api/products", "t", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(http.MethodPut, "/api/products/missing", "t", bizapi.Product{Name: "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderTotalsAreComputed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, fakeapi.WithStaticToken("t"))

	status, body := h.call(http.MethodPost, "/api/orders", "t", bizapi.Order{
		CustomerID: "cus-001",
		Items: []bizapi.OrderItem{
			{ProductID: "prd-001", Quantity: 2, UnitPrice: 1.5},
			{ProductID: "prd-002", Quantity: 1, UnitPrice: 4},
		},
	})

	order, err := bizapi.HandleResponse[bizapi.Order](status, body).Unwrap()
	require.NoError(t, err)
	assert.InDelta(t, 7.0, order.Total, 0.001)
	assert.Equal(t, bizapi.OrderStatusPending, order.Status)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, fakeapi.SeedDataset(4), fakeapi.WithStaticToken("t"))

	status, body := h.call(http.MethodPost, "/api/orders/ord-001/cancel", "t", nil)
	order, err := bizapi.HandleResponse[bizapi.Order](status, body).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, bizapi.OrderStatusCancelled, order.Status)

	status, body = h.call(http.MethodPost, "/api/orders/ord-002/cancel", "t", nil)
	assert.Equal(t, http.StatusOK, status)

	result := bizapi.HandleResponse[bizapi.Order](status, body)
	require.True(t, result.IsFailure())
	assert.Equal(t, "order SO-1002 is already shipped", result.Message())

	status, _ = h.call(http.MethodPost, "/api/orders/ord-999/cancel", "t", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAgentRequestReview(t *testing.T) {
	t.Parallel()

	h := newHarness(t, fakeapi.SeedDataset(3))
	admin := h.login("admin", "secret")
	agent := h.login("agent", "secret")

	status, body := h.call(http.MethodPost, "/api/agent-requests/agr-001/approve", agent, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.True(t, bizapi.IsForbidden(bizapi.HandleResponse[bizapi.AgentRequest](status, body).Cause()))

	status, body = h.call(http.MethodPost, "/api/agent-requests/agr-001/approve", admin, nil)
	approved, err := bizapi.HandleResponse[bizapi.AgentRequest](status, body).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, bizapi.AgentRequestApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)

	status, body = h.call(http.MethodPost, "/api/agent-requests/agr-001/approve", admin, nil)
	assert.True(t, bizapi.HandleResponse[bizapi.AgentRequest](status, body).IsFailure())

	status, _ = h.call(http.MethodPost, "/api/agent-requests/agr-002/reject", admin, bizapi.RejectRequest{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.call(http.MethodPost, "/api/agent-requests/agr-002/reject", admin, bizapi.RejectRequest{Reason: "outside territory"})
	rejected, err := bizapi.HandleResponse[bizapi.AgentRequest](status, body).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, bizapi.AgentRequestRejected, rejected.Status)
	assert.Equal(t, "outside territory", rejected.Reason)
}

func TestUserWritesRequireAdmin(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	agent := h.login("agent", "secret")

	status, _ := h.call(http.MethodGet, "/api/users", agent, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.call(http.MethodPost, "/api/users", agent, bizapi.User{Username: "mallory"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.call(http.MethodDelete, "/api/users/usr-admin", agent, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSalesReport(t *testing.T) {
	t.Parallel()

	dataset, err := fakeapi.LoadDataset(filepath.Join("testdata", "fixtures.yml"))
	require.NoError(t, err)

	h := newHarness(t, dataset, fakeapi.WithStaticToken("t"))

	status, body := h.call(http.MethodGet, "/api/reports/sales?from=2026-03-01&to=2026-03-31", "t", nil)
	report, err := bizapi.HandleResponse[bizapi.SalesReport](status, body).Unwrap()
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", report.From)
	assert.Equal(t, 1, report.OrderCount)
	assert.InDelta(t, 99.0, report.Revenue, 0.001)
	assert.InDelta(t, 9.9, report.Commissions, 0.001)
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, "prd-red", report.TopProducts[0].ProductID)
	assert.Equal(t, 2, report.TopProducts[0].Quantity)

	for _, query := range []string{"?from=2026-03-01", "?from=03/01/2026&to=2026-03-31", "?from=2026-04-01&to=2026-03-01"} {
		status, _ = h.call(http.MethodGet, "/api/reports/sales"+query, "t", nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	status, body := h.call(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, bizapi.ExtractErrorMessage(body), "/nowhere")
}

func TestMaxPageSize(t *testing.T) {
	t.Parallel()

	capped := newHarness(t, fakeapi.SeedDataset(25), fakeapi.WithStaticToken("t"))
	status, _ := capped.call(http.MethodGet, "/api/products?pageSize=150", "t", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	raised := newHarness(t, fakeapi.SeedDataset(25), fakeapi.WithStaticToken("t"), fakeapi.WithMaxPageSize(200))
	status, _ = raised.call(http.MethodGet, "/api/products?pageSize=150", "t", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = raised.call(http.MethodGet, "/api/products?pageSize=201", "t", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
