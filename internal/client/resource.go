package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// ResourceClient provides the generic CRUD operations shared by every entity
// collection. List reads its page size from the pagination registry.
type ResourceClient[T any] struct {
	requests     *bizapi.RequestClient
	pagination   *bizapi.Registry
	resourcePath string
	entity       bizapi.EntityType
}

// NewResourceClient creates a generic client for the collection at
// resourcePath.
func NewResourceClient[T any](
	requests *bizapi.RequestClient,
	pagination *bizapi.Registry,
	resourcePath string,
	entity bizapi.EntityType,
) *ResourceClient[T] {
	return &ResourceClient[T]{
		requests:     requests,
		pagination:   pagination,
		resourcePath: resourcePath,
		entity:       entity,
	}
}

// List retrieves one page using the configured page size of the entity type.
func (c *ResourceClient[T]) List(ctx context.Context, page int) bizapi.Result[bizapi.PagedList[T]] {
	return c.list(ctx, page, c.pageSize(), nil)
}

// ListWithSize retrieves one page with an explicit page size.
func (c *ResourceClient[T]) ListWithSize(ctx context.Context, page, pageSize int) bizapi.Result[bizapi.PagedList[T]] {
	return c.list(ctx, page, pageSize, nil)
}

// Get retrieves a single item by ID.
func (c *ResourceClient[T]) Get(ctx context.Context, id string) bizapi.Result[T] {
	if id == "" {
		return bizapi.Failure[T](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return bizapi.GetAs[T](ctx, c.requests, c.itemPath(id), nil)
}

// Create stores a new item and returns it as the server saved it.
func (c *ResourceClient[T]) Create(ctx context.Context, item *T) bizapi.Result[T] {
	return bizapi.PostAs[T](ctx, c.requests, c.resourcePath, item)
}

// Update replaces the item with the given ID.
func (c *ResourceClient[T]) Update(ctx context.Context, id string, item *T) bizapi.Result[T] {
	if id == "" {
		return bizapi.Failure[T](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return bizapi.PutAs[T](ctx, c.requests, c.itemPath(id), item)
}

// Delete removes the item with the given ID.
func (c *ResourceClient[T]) Delete(ctx context.Context, id string) bizapi.Result[bizapi.Void] {
	if id == "" {
		return bizapi.Failure[bizapi.Void](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return c.requests.Delete(ctx, c.itemPath(id))
}

func (c *ResourceClient[T]) list(ctx context.Context, page, pageSize int, filters url.Values) bizapi.Result[bizapi.PagedList[T]] {
	return bizapi.GetPage[T](ctx, c.requests, c.resourcePath, bizapi.PageQuery(page, pageSize, filters))
}

func (c *ResourceClient[T]) pageSize() int {
	return c.pagination.GetPageSize(c.entity)
}

func (c *ResourceClient[T]) itemPath(id string) string {
	return c.resourcePath + "/" + url.PathEscape(id)
}

// actionPath is the path of a sub-action on an item, e.g. /api/orders/1/cancel.
func (c *ResourceClient[T]) actionPath(id, action string) string {
	return c.itemPath(id) + "/" + action
}
