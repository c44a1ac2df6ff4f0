package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

const maxPageSizeKey = "max"

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage page-size preferences",
		Long: `Show and change how many rows each list shows.

Preferences live in the store selected by settings.store in the config file:
a YAML file (default), or a NATS key-value bucket shared between machines.`,
	}

	cmd.AddCommand(newSettingsShowCommand())
	cmd.AddCommand(newSettingsSetCommand())
	cmd.AddCommand(newSettingsResetCommand())

	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show page sizes per entity type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(registry *bizapi.Registry, _ bizapi.SettingsStore) error {
				renderer := &OutputRenderer[bizapi.PaginationSettings]{
					RenderTable: displaySettingsTable,
				}

				return renderer.Render(cmd.OutOrStdout(), registry.GetSettings(), outputFormat())
			})
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set ENTITY SIZE",
		Short: "Set the page size of an entity type",
		Long: `Set the page size of an entity type and save it.

ENTITY is one of default, products, orders, customers, users, agent-requests,
commissions, or "max" for the upper bound every size is clamped to.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[1])
			if err != nil || size < constants.MinPageSize {
				return fmt.Errorf("%w: %q", constants.ErrInvalidPageSize, args[1])
			}

			return withRegistry(cmd.Context(), func(registry *bizapi.Registry, store bizapi.SettingsStore) error {
				if strings.EqualFold(args[0], maxPageSizeKey) {
					settings := registry.GetSettings()
					settings.MaxPageSize = size
					registry.Apply(settings)
				} else {
					entity, err := bizapi.ParseEntityType(args[0])
					if err != nil {
						return err
					}

					registry.SetPageSize(entity, size)
				}

				err := registry.Commit(cmd.Context(), store)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Page size for %s is now %d\n", args[0], effectiveSize(registry, args[0]))

				return nil
			})
		},
	}
}

func newSettingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default page sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(registry *bizapi.Registry, store bizapi.SettingsStore) error {
				registry.Reset()

				err := registry.Commit(cmd.Context(), store)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Page sizes reset to defaults")

				return nil
			})
		},
	}
}

// withRegistry opens the settings store, loads a registry from it and runs fn.
// Unlike client construction, an unreadable store is an error here.
func withRegistry(ctx context.Context, fn func(registry *bizapi.Registry, store bizapi.SettingsStore) error) error {
	store, closeFn, err := openSettingsStore(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer closeFn()

	registry := bizapi.NewRegistry()

	err = bizapi.LoadRegistry(ctx, store, registry)
	if err != nil {
		return err
	}

	return fn(registry, store)
}

func effectiveSize(registry *bizapi.Registry, key string) int {
	if strings.EqualFold(key, maxPageSizeKey) {
		return registry.MaxPageSize()
	}

	entity, err := bizapi.ParseEntityType(key)
	if err != nil {
		return registry.GetPageSize(bizapi.EntityDefault)
	}

	return registry.GetPageSize(entity)
}

func displaySettingsTable(w io.Writer, settings bizapi.PaginationSettings) error {
	rows := make([][]string, 0, len(bizapi.EntityTypes())+1)
	for _, entity := range bizapi.EntityTypes() {
		rows = append(rows, []string{entity.String(), strconv.Itoa(settings.PageSize(entity))})
	}

	rows = append(rows, []string{maxPageSizeKey, strconv.Itoa(settings.MaxPageSize)})

	return renderTable(w, []string{"Entity", "Page Size"}, rows)
}
