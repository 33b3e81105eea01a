package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/erdilatifi/User-Management-App/internal/directory"
	"github.com/erdilatifi/User-Management-App/internal/record"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Remote bool
}

// ShowResult is a stored user plus, optionally, its directory detail.
type ShowResult struct {
	User   record.Record     `json:"user" yaml:"user"`
	Detail *directory.Detail `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// RenderText prints one field per line.
func (r ShowResult) RenderText(w io.Writer) error {
	u := r.User
	fmt.Fprintf(w, "Name: %s\n", u.Name)
	fmt.Fprintf(w, "Email: %s\n", u.Email)
	fmt.Fprintf(w, "Company: %s\n", u.Organization)
	fmt.Fprintf(w, "Origin: %s\n", u.Origin)
	if u.CreatedAt != nil {
		fmt.Fprintf(w, "Created: %s\n", u.CreatedAt.UTC().Format(time.RFC3339))
	}
	if d := r.Detail; d != nil {
		fmt.Fprintf(w, "Phone: %s\n", d.Phone)
		fmt.Fprintf(w, "Website: %s\n", d.Website)
		fmt.Fprintf(w, "Address: %s, %s, %s, %s\n", d.Address.Street, d.Address.Suite, d.Address.City, d.Address.Zipcode)
	}
	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user",
		Long: `Show one stored user.

With --remote, directory users are also looked up in the directory for their
phone, website and address. Local users have no directory entry.

Examples:
  usermgmt show 2
  usermgmt show 2 --remote --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "fetch contact details from the directory")

	return cmd
}

func runShow(opts *ShowOptions, idArg string, cmd *cobra.Command) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.hydrateQuietly(ctx)

	u, ok := a.session.Get(id)
	if !ok {
		return reportNotFound(a.out, id)
	}
	result := ShowResult{User: u}

	if opts.Remote {
		if u.IsLocal() {
			a.out.VerboseLog("user %d is local; skipping directory lookup", id)
		} else {
			d, err := a.client.FetchUser(ctx, id)
			if err != nil {
				if directory.IsNotFound(err) {
					return reportNotFound(a.out, id)
				}
				_ = a.out.Error(CodeFetchFailed, "Failed to fetch user", err.Error())
				return WrapExitError(ExitFailure, "failed to fetch user", err)
			}
			result.Detail = &d
		}
	}

	return a.out.Success(result)
}
