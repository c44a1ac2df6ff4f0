package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var orderColumns = []string{"ID", "Number", "Customer", "Agent", "Status", "Items", "Total", "Created"}

func orderRow(order bizapi.Order) []string {
	return []string{
		order.ID,
		order.Number,
		order.CustomerID,
		order.AgentID,
		string(order.Status),
		strconv.Itoa(len(order.Items)),
		formatMoney(order.Total),
		formatTime(order.CreatedAt),
	}
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand() *cobra.Command {
	var customerID string

	spec := &resourceSpec[bizapi.Order]{
		name:     "orders",
		singular: "order",
		aliases:  []string{"order", "o"},
		entity:   bizapi.EntityOrders,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.Order] {
			return cli.Orders()
		},
		columns: orderColumns,
		row:     orderRow,
		listFlags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&customerID, "customer", "", "only orders of this customer ID")
		},
		listPage: func(cli bizapi.Client) pageFunc[bizapi.Order] {
			if customerID == "" {
				return cli.Orders().List
			}

			return func(ctx context.Context, page int) bizapi.Result[bizapi.PagedList[bizapi.Order]] {
				return cli.Orders().ListByCustomer(ctx, customerID, page)
			}
		},
	}

	cmd := newResourceCommand(spec)
	cmd.AddCommand(newOrdersCancelCommand(spec))

	return cmd
}

func newOrdersCancelCommand(spec *resourceSpec[bizapi.Order]) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an order that has not shipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			order, err := resultValue(cli.Orders().Cancel(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			if structuredOutput() {
				return renderItem(cmd.OutOrStdout(), spec, order)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", order.Number, order.Status)

			return nil
		},
	}
}
