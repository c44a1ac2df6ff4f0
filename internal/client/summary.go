package client

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// countFailure carries a failed count through errgroup with its user-facing
// message intact.
type countFailure struct {
	message string
	cause   error
}

func (f *countFailure) Error() string {
	return f.message
}

func (f *countFailure) Unwrap() error {
	return f.cause
}

// totalOf fetches a one-item page and returns the collection total.
func totalOf[T any](ctx context.Context, resource bizapi.ResourceClient[T], target *int) func() error {
	return func() error {
		result := resource.ListWithSize(ctx, constants.FirstPage, 1)

		page, ok := result.Value()
		if !ok {
			return &countFailure{message: result.Message(), cause: result.Cause()}
		}

		*target = page.TotalCount

		return nil
	}
}

// Summary implements bizapi.Client.Summary. The first failed count fails the
// whole summary and cancels the others.
func (c *Client) Summary(ctx context.Context) bizapi.Result[bizapi.Summary] {
	var summary bizapi.Summary

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.DefaultConcurrencyLimit)

	group.Go(totalOf[bizapi.Product](groupCtx, c.products, &summary.Products))
	group.Go(totalOf[bizapi.Order](groupCtx, c.orders, &summary.Orders))
	group.Go(totalOf[bizapi.Customer](groupCtx, c.customers, &summary.Customers))
	group.Go(totalOf[bizapi.User](groupCtx, c.users, &summary.Users))
	group.Go(totalOf[bizapi.AgentRequest](groupCtx, c.agentRequests, &summary.AgentRequests))
	group.Go(totalOf[bizapi.Commission](groupCtx, c.commissions, &summary.Commissions))

	err := group.Wait()
	if err != nil {
		failure := &countFailure{}
		if errors.As(err, &failure) {
			return bizapi.Failure[bizapi.Summary](failure.message, failure.cause)
		}

		return bizapi.FailureFrom[bizapi.Summary](err)
	}

	return bizapi.Success(summary)
}
