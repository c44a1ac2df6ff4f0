package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

const defaultReportDays = 30

// NewReportsCommand creates the reports command group.
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Run reports",
	}

	cmd.AddCommand(newSalesReportCommand())

	return cmd
}

func newSalesReportCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Sales totals and top products for a date range",
		Long:  "Sales totals and top products between --from and --to (YYYY-MM-DD, inclusive). Defaults to the last 30 days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now().UTC().Truncate(24 * time.Hour)

			fromDate, err := parseReportDate(from, today.AddDate(0, 0, -defaultReportDays))
			if err != nil {
				return err
			}

			toDate, err := parseReportDate(to, today)
			if err != nil {
				return err
			}

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			report, err := resultValue(cli.Reports().Sales(cmd.Context(), fromDate, toDate))
			if err != nil {
				return err
			}

			renderer := &OutputRenderer[bizapi.SalesReport]{
				RenderTable: displaySalesReport,
			}

			return renderer.Render(cmd.OutOrStdout(), report, outputFormat())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day of the range (YYYY-MM-DD)")

	return cmd
}

func parseReportDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.Parse(constants.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", constants.ErrInvalidDate, value)
	}

	return parsed, nil
}

func displaySalesReport(w io.Writer, report bizapi.SalesReport) error {
	err := renderProperties(w,
		[]string{"From", "To", "Orders", "Revenue", "Commissions"},
		[]string{
			report.From,
			report.To,
			strconv.Itoa(report.OrderCount),
			formatMoney(report.Revenue),
			formatMoney(report.Commissions),
		},
	)
	if err != nil {
		return err
	}

	if len(report.TopProducts) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(report.TopProducts))
	for _, product := range report.TopProducts {
		rows = append(rows, []string{
			product.ProductID,
			product.Name,
			strconv.Itoa(product.Quantity),
			formatMoney(product.Revenue),
		})
	}

	_, _ = io.WriteString(w, "\nTop products:\n")

	return renderTable(w, []string{"ID", "Name", "Quantity", "Revenue"}, rows)
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count every collection",
		Long:  "Fetch the total of every collection concurrently and show them together",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			summary, err := resultValue(cli.Summary(cmd.Context()))
			if err != nil {
				return err
			}

			renderer := &OutputRenderer[bizapi.Summary]{
				RenderTable: func(w io.Writer, summary bizapi.Summary) error {
					return renderTable(w, []string{"Collection", "Total"}, [][]string{
						{"products", strconv.Itoa(summary.Products)},
						{"orders", strconv.Itoa(summary.Orders)},
						{"customers", strconv.Itoa(summary.Customers)},
						{"users", strconv.Itoa(summary.Users)},
						{"agent-requests", strconv.Itoa(summary.AgentRequests)},
						{"commissions", strconv.Itoa(summary.Commissions)},
					})
				},
			}

			return renderer.Render(cmd.OutOrStdout(), summary, outputFormat())
		},
	}
}
