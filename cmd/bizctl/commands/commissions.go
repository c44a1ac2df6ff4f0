package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var commissionColumns = []string{"ID", "Agent", "Order", "Rate", "Amount", "Paid", "Created"}

func commissionRow(commission bizapi.Commission) []string {
	return []string{
		commission.ID,
		commission.AgentID,
		commission.OrderID,
		formatMoney(commission.Rate),
		formatMoney(commission.Amount),
		formatBool(commission.Paid),
		formatTime(commission.CreatedAt),
	}
}

// NewCommissionsCommand creates the commissions command group.
func NewCommissionsCommand() *cobra.Command {
	var agentID string

	return newResourceCommand(&resourceSpec[bizapi.Commission]{
		name:     "commissions",
		singular: "commission",
		aliases:  []string{"commission"},
		entity:   bizapi.EntityCommissions,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.Commission] {
			return cli.Commissions()
		},
		columns: commissionColumns,
		row:     commissionRow,
		listFlags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&agentID, "agent", "", "only commissions of this agent ID")
		},
		listPage: func(cli bizapi.Client) pageFunc[bizapi.Commission] {
			if agentID == "" {
				return cli.Commissions().List
			}

			return func(ctx context.Context, page int) bizapi.Result[bizapi.PagedList[bizapi.Commission]] {
				return cli.Commissions().ListByAgent(ctx, agentID, page)
			}
		},
	})
}
