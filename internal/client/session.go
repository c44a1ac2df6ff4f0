package client

import (
	"context"
	"net/url"
	"time"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// ReportsClient implements bizapi.ReportsClient.
type ReportsClient struct {
	requests *bizapi.RequestClient
}

// NewReportsClient creates a new reports client.
func NewReportsClient(requests *bizapi.RequestClient) *ReportsClient {
	return &ReportsClient{requests: requests}
}

// Sales aggregates the orders placed between from and to, both inclusive.
func (c *ReportsClient) Sales(ctx context.Context, from, to time.Time) bizapi.Result[bizapi.SalesReport] {
	query := url.Values{
		"from": {from.Format(constants.DateFormat)},
		"to":   {to.Format(constants.DateFormat)},
	}

	return bizapi.GetAs[bizapi.SalesReport](ctx, c.requests, "/api/reports/sales", query)
}

// expiringCredentials is implemented by credential slots that keep the
// token's expiry.
type expiringCredentials interface {
	SetTokenWithExpiry(token string, expiresAt time.Time)
}

// SessionClient implements bizapi.SessionClient.
type SessionClient struct {
	requests *bizapi.RequestClient
}

// NewSessionClient creates a new session client.
func NewSessionClient(requests *bizapi.RequestClient) *SessionClient {
	return &SessionClient{requests: requests}
}

// Login signs in and stores the issued token for subsequent calls.
func (c *SessionClient) Login(ctx context.Context, username, password string) bizapi.Result[bizapi.Session] {
	if username == "" {
		return bizapi.Failure[bizapi.Session](constants.ErrUsernameRequired.Error(), constants.ErrUsernameRequired)
	}

	if password == "" {
		return bizapi.Failure[bizapi.Session](constants.ErrPasswordRequired.Error(), constants.ErrPasswordRequired)
	}

	result := bizapi.PostAs[bizapi.Session](ctx, c.requests, "/api/auth/login", &bizapi.LoginRequest{
		Username: username,
		Password: password,
	})

	if session, ok := result.Value(); ok {
		if expiring, ok := c.requests.Credentials().(expiringCredentials); ok {
			expiring.SetTokenWithExpiry(session.Token, session.ExpiresAt)
		} else {
			c.requests.SetToken(session.Token)
		}
	}

	return result
}

// Logout ends the server session. The local token is cleared whatever the
// server answers.
func (c *SessionClient) Logout(ctx context.Context) bizapi.Result[bizapi.Void] {
	result := c.requests.Post(ctx, "/api/auth/logout", nil)
	c.requests.ClearToken()

	return result
}

// CurrentUser returns the signed-in user.
func (c *SessionClient) CurrentUser(ctx context.Context) bizapi.Result[bizapi.User] {
	return bizapi.GetAs[bizapi.User](ctx, c.requests, "/api/auth/me", nil)
}
