package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/internal/fakeapi"
)

const defaultSeedCount = 25

// NewFakeServerCommand creates the fake-server command.
func NewFakeServerCommand() *cobra.Command {
	var (
		addr        string
		fixtures    string
		seed        int
		staticToken string
		noAuth      bool
		origins     []string
		maxPageSize int
	)

	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory backend for demos and tests",
		Long: `Serve an in-memory backend that speaks the same envelope contract as the
real service. Data comes from --fixtures (YAML) or is generated with --seed
rows per collection. Sign in as admin/secret or agent/secret.

List requests may ask for at most --max-page-size rows. Raise it together
with "bizctl settings set max N" to try larger pages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := fakeapi.SeedDataset(seed)

			if fixtures != "" {
				loaded, err := fakeapi.LoadDataset(fixtures)
				if err != nil {
					return err
				}

				data = loaded
			}

			opts := []fakeapi.Option{fakeapi.WithMaxPageSize(maxPageSize)}

			if staticToken != "" {
				opts = append(opts, fakeapi.WithStaticToken(staticToken))
			}

			if noAuth {
				opts = append(opts, fakeapi.WithoutAuth())
			}

			if len(origins) > 0 {
				opts = append(opts, fakeapi.WithAllowedOrigins(origins...))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd, loadConfig())
			logger.Info().Str("addr", addr).Msg("fake API listening")

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving fake API on http://%s (Ctrl-C to stop)\n", addr)

			return fakeapi.New(data, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", constants.DefaultFakeServerAddr, "listen address")
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "YAML dataset to serve instead of generated rows")
	cmd.Flags().IntVar(&seed, "seed", defaultSeedCount, "rows per collection when generating data")
	cmd.Flags().StringVar(&staticToken, "static-token", "", "also accept this bearer token as an admin")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "disable authentication")
	cmd.Flags().IntVar(&maxPageSize, "max-page-size", constants.DefaultMaxPageSize, "largest pageSize a list request may ask for")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "CORS origins to allow (default any)")

	return cmd
}
