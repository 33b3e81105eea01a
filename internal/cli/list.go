package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erdilatifi/User-Management-App/internal/query"
	"github.com/erdilatifi/User-Management-App/internal/record"
	"github.com/erdilatifi/User-Management-App/internal/session"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Search string
	Sort   string
	Order  string
	Where  string
	Page   int
}

// ListResult is one rendered page of users.
type ListResult struct {
	Page       int             `json:"page" yaml:"page"`
	TotalPages int             `json:"total_pages" yaml:"total_pages"`
	Count      int             `json:"count" yaml:"count"`
	Empty      string          `json:"empty" yaml:"empty"`
	Items      []record.Record `json:"items" yaml:"items"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users one page at a time",
		Long: `List users one page at a time.

Users created here are always listed first, newest first. Directory users
follow, ordered by --sort and --order. --search matches name or email,
ignoring case. --where takes an expression over id, name, email,
organization, origin and local.

Examples:
  usermgmt list
  usermgmt list --search ervin
  usermgmt list --sort email --order desc --page 2
  usermgmt list --where 'local || organization == "Deckow-Crist"'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "filter by name or email")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(query.SortByName), "sort directory users by name or email")
	cmd.Flags().StringVar(&opts.Order, "order", string(query.Asc), "sort order (asc|desc)")
	cmd.Flags().StringVar(&opts.Where, "where", "", "filter expression")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "page number")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	by, err := query.ParseSortKey(opts.Sort)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --sort", err)
	}
	order, err := query.ParseSortOrder(opts.Order)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --order", err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var where *query.Predicate
	if opts.Where != "" {
		where, err = query.CompileWhere(opts.Where)
		if err != nil {
			_ = a.out.Error(CodeBadQuery, "Invalid filter expression", err.Error())
			return WrapExitError(ExitCommandError, "invalid --where", err)
		}
	}

	if _, err := a.session.Hydrate(ctx); err != nil {
		_ = a.out.Error(CodeFetchFailed, "Failed to fetch users.", err.Error())
		return WrapExitError(ExitFailure, "failed to fetch users", err)
	}

	s := a.session
	s.Search(opts.Search)
	s.SetSort(by, order)
	s.SetWhere(where)
	s.GoToPage(opts.Page)

	return a.out.Success(newListResult(s.View(), s.EmptyState()))
}

func newListResult(p query.Page, empty session.EmptyState) ListResult {
	return ListResult{
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Count:      p.Count,
		Empty:      string(empty),
		Items:      p.Items,
	}
}

// RenderText prints the page as a table followed by a page footer.
func (r ListResult) RenderText(w io.Writer) error {
	switch session.EmptyState(r.Empty) {
	case session.EmptyStore:
		_, err := fmt.Fprintln(w, "No users yet.")
		return err
	case session.EmptyNoMatches:
		_, err := fmt.Fprintln(w, "No users match the current filter.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tORGANIZATION\tORIGIN")
	for _, u := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Organization, u.Origin)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Page %d of %d (%d users)\n", r.Page, r.TotalPages, r.Count)
	return err
}
