package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var productColumns = []string{"ID", "SKU", "Name", "Category", "Price", "Stock", "Active"}

func productRow(product bizapi.Product) []string {
	return []string{
		product.ID,
		product.SKU,
		product.Name,
		product.Category,
		formatMoney(product.Price),
		strconv.Itoa(product.Stock),
		formatBool(product.Active),
	}
}

// NewProductsCommand creates the products command group.
func NewProductsCommand() *cobra.Command {
	var query string

	spec := &resourceSpec[bizapi.Product]{
		name:     "products",
		singular: "product",
		aliases:  []string{"product", "p"},
		entity:   bizapi.EntityProducts,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.Product] {
			return cli.Products()
		},
		columns: productColumns,
		row:     productRow,
		listFlags: func(cmd *cobra.Command) {
			cmd.Flags().StringVarP(&query, "search", "s", "", "only products whose name, SKU or description contains this text")
		},
		listPage: func(cli bizapi.Client) pageFunc[bizapi.Product] {
			if query == "" {
				return cli.Products().List
			}

			return func(ctx context.Context, page int) bizapi.Result[bizapi.PagedList[bizapi.Product]] {
				return cli.Products().Search(ctx, query, page)
			}
		},
	}

	return newResourceCommand(spec)
}
