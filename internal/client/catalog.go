package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// ProductsClient implements bizapi.ProductsClient.
type ProductsClient struct {
	*ResourceClient[bizapi.Product]
}

// NewProductsClient creates a new products client.
func NewProductsClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *ProductsClient {
	return &ProductsClient{
		ResourceClient: NewResourceClient[bizapi.Product](requests, pagination, "/api/products", bizapi.EntityProducts),
	}
}

// Search lists products whose name, SKU or description contains query.
func (c *ProductsClient) Search(ctx context.Context, query string, page int) bizapi.Result[bizapi.PagedList[bizapi.Product]] {
	return c.list(ctx, page, c.pageSize(), url.Values{"q": {query}})
}

// OrdersClient implements bizapi.OrdersClient.
type OrdersClient struct {
	*ResourceClient[bizapi.Order]
}

// NewOrdersClient creates a new orders client.
func NewOrdersClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *OrdersClient {
	return &OrdersClient{
		ResourceClient: NewResourceClient[bizapi.Order](requests, pagination, "/api/orders", bizapi.EntityOrders),
	}
}

// Cancel cancels an order that has not shipped yet. Cancelling a shipped
// order is a business failure reported by the server.
func (c *OrdersClient) Cancel(ctx context.Context, id string) bizapi.Result[bizapi.Order] {
	if id == "" {
		return bizapi.Failure[bizapi.Order](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return bizapi.PostAs[bizapi.Order](ctx, c.requests, c.actionPath(id, "cancel"), nil)
}

// ListByCustomer lists the orders of one customer.
func (c *OrdersClient) ListByCustomer(ctx context.Context, customerID string, page int) bizapi.Result[bizapi.PagedList[bizapi.Order]] {
	return c.list(ctx, page, c.pageSize(), url.Values{"customerId": {customerID}})
}

// NewCustomersClient creates a new customers client.
func NewCustomersClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *ResourceClient[bizapi.Customer] {
	return NewResourceClient[bizapi.Customer](requests, pagination, "/api/customers", bizapi.EntityCustomers)
}

// NewUsersClient creates a new users client.
func NewUsersClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *ResourceClient[bizapi.User] {
	return NewResourceClient[bizapi.User](requests, pagination, "/api/users", bizapi.EntityUsers)
}
