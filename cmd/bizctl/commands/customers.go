package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var customerColumns = []string{"ID", "Name", "Email", "Phone", "Created"}

func customerRow(customer bizapi.Customer) []string {
	return []string{
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		formatTime(customer.CreatedAt),
	}
}

// NewCustomersCommand creates the customers command group.
func NewCustomersCommand() *cobra.Command {
	return newResourceCommand(&resourceSpec[bizapi.Customer]{
		name:     "customers",
		singular: "customer",
		aliases:  []string{"customer", "c"},
		entity:   bizapi.EntityCustomers,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.Customer] {
			return cli.Customers()
		},
		columns: customerColumns,
		row:     customerRow,
	})
}
