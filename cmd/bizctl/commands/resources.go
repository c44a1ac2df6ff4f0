package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/internal/filter"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// pageFunc fetches one page of a collection.
type pageFunc[T any] func(ctx context.Context, page int) bizapi.Result[bizapi.PagedList[T]]

// resourceSpec describes how one entity type is listed, shown and edited.
type resourceSpec[T any] struct {
	name     string
	singular string
	aliases  []string
	entity   bizapi.EntityType

	resource func(cli bizapi.Client) bizapi.ResourceClient[T]
	columns  []string
	row      func(item T) []string

	// listFlags registers extra list flags; listPage may read them to swap
	// the plain List call for a narrower one.
	listFlags func(cmd *cobra.Command)
	listPage  func(cli bizapi.Client) pageFunc[T]

	readOnly bool
}

// listing is what list commands render.
type listing[T any] struct {
	Items      []T `json:"items"      yaml:"items"`
	PageNumber int `json:"pageNumber" yaml:"pageNumber"`
	PageSize   int `json:"pageSize"   yaml:"pageSize"`
	TotalCount int `json:"totalCount" yaml:"totalCount"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
	// All is set when every page was fetched.
	All bool `json:"-" yaml:"-"`
}

func newResourceCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     spec.name,
		Aliases: spec.aliases,
		Short:   "Manage " + spec.name,
		Long:    fmt.Sprintf("List, show, create, update and delete %s", spec.name),
	}

	cmd.AddCommand(newResourceListCommand(spec))
	cmd.AddCommand(newResourceGetCommand(spec))

	if !spec.readOnly {
		cmd.AddCommand(newResourceCreateCommand(spec))
		cmd.AddCommand(newResourceUpdateCommand(spec))
		cmd.AddCommand(newResourceDeleteCommand(spec))
	}

	return cmd
}

func newResourceListCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	var (
		page     int
		pageSize int
		allPages bool
		where    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + spec.name,
		Long: fmt.Sprintf(`List %s one page at a time.

The page size comes from "bizctl settings" unless --page-size is given.
--where filters the fetched rows with an expression over their JSON fields,
for example: --where 'price > 10 && hasText(name, "red")'`, spec.name),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < constants.FirstPage {
				return fmt.Errorf("%w: page %d", bizapi.ErrInvalidPageNumber, page)
			}

			if cmd.Flags().Changed("page-size") && pageSize < constants.MinPageSize {
				return fmt.Errorf("%w: %d", constants.ErrInvalidPageSize, pageSize)
			}

			var itemFilter *filter.Filter

			if where != "" {
				compiled, err := filter.Compile(where)
				if err != nil {
					return err
				}

				itemFilter = compiled
			}

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			if pageSize > 0 {
				cli.Pagination().SetPageSize(spec.entity, pageSize)
			}

			fetch := defaultPageFunc(spec.resource(cli))
			if spec.listPage != nil {
				fetch = spec.listPage(cli)
			}

			result, err := fetchListing(cmd.Context(), fetch, page, allPages)
			if err != nil {
				return err
			}

			if itemFilter != nil {
				result.Items, err = filter.Apply(itemFilter, result.Items)
				if err != nil {
					return err
				}
			}

			renderer := &OutputRenderer[listing[T]]{
				RenderTable: func(w io.Writer, result listing[T]) error {
					return renderListingTable(w, spec, result)
				},
			}

			return renderer.Render(cmd.OutOrStdout(), result, outputFormat())
		},
	}

	cmd.Flags().IntVar(&page, "page", constants.FirstPage, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page for this call")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch every page")
	cmd.Flags().StringVar(&where, "where", "", "filter expression applied to the fetched rows")

	if spec.listFlags != nil {
		spec.listFlags(cmd)
	}

	return cmd
}

func defaultPageFunc[T any](resource bizapi.ResourceClient[T]) pageFunc[T] {
	return resource.List
}

// fetchListing fetches page, or every page from page onwards when all is set.
func fetchListing[T any](ctx context.Context, fetch pageFunc[T], page int, all bool) (listing[T], error) {
	first, err := resultValue(fetch(ctx, page))
	if err != nil {
		return listing[T]{}, err
	}

	result := listing[T]{
		Items:      first.Items,
		PageNumber: first.PageNumber,
		PageSize:   first.PageSize,
		TotalCount: first.TotalCount,
		TotalPages: first.TotalPages(),
		All:        all,
	}

	current := first
	for all && current.HasNext() {
		next := current.PageNumber + 1

		current, err = resultValue(fetch(ctx, next))
		if err != nil {
			return listing[T]{}, fmt.Errorf("failed to fetch page %d: %w", next, err)
		}

		if len(current.Items) == 0 {
			break
		}

		result.Items = append(result.Items, current.Items...)
	}

	return result, nil
}

func renderListingTable[T any](w io.Writer, spec *resourceSpec[T], result listing[T]) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintf(w, "No %s found\n", spec.name)

		return nil
	}

	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, spec.row(item))
	}

	err := renderTable(w, spec.columns, rows)
	if err != nil {
		return err
	}

	if result.All {
		_, _ = fmt.Fprintf(w, "%d of %d %s\n", len(result.Items), result.TotalCount, spec.name)

		return nil
	}

	_, _ = fmt.Fprintf(w, "Page %d of %d (%d %s)\n", result.PageNumber, result.TotalPages, result.TotalCount, spec.name)

	return nil
}

func newResourceGetCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a " + spec.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			item, err := resultValue(spec.resource(cli).Get(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			return renderItem(cmd.OutOrStdout(), spec, item)
		},
	}
}

func newResourceCreateCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + spec.singular + " from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItemFile[T](fromFile)
			if err != nil {
				return err
			}

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			created, err := resultValue(spec.resource(cli).Create(cmd.Context(), item))
			if err != nil {
				return err
			}

			return renderItem(cmd.OutOrStdout(), spec, created)
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "YAML or JSON file describing the "+spec.singular)

	return cmd
}

func newResourceUpdateCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a " + spec.singular + " from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItemFile[T](fromFile)
			if err != nil {
				return err
			}

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			updated, err := resultValue(spec.resource(cli).Update(cmd.Context(), args[0], item))
			if err != nil {
				return err
			}

			return renderItem(cmd.OutOrStdout(), spec, updated)
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "YAML or JSON file describing the "+spec.singular)

	return cmd
}

func newResourceDeleteCommand[T any](spec *resourceSpec[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + spec.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			_, err = resultValue(spec.resource(cli).Delete(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", spec.singular, args[0])

			return nil
		},
	}
}

func renderItem[T any](w io.Writer, spec *resourceSpec[T], item T) error {
	renderer := &OutputRenderer[T]{
		RenderTable: func(w io.Writer, item T) error {
			return renderProperties(w, spec.columns, spec.row(item))
		},
	}

	return renderer.Render(w, item, outputFormat())
}

// readItemFile decodes a YAML or JSON document into a new T.
func readItemFile[T any](path string) (*T, error) {
	if path == "" {
		return nil, constants.ErrInputFileRequired
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	item := new(T)

	err = yaml.Unmarshal(data, item)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return item, nil
}
