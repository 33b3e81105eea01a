package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// UserResult reports a completed mutation.
type UserResult struct {
	Message string         `json:"message" yaml:"message"`
	User    *record.Record `json:"user,omitempty" yaml:"user,omitempty"`
	ID      int64          `json:"id" yaml:"id"`
}

// RenderText prints the confirmation line.
func (r UserResult) RenderText(w io.Writer) error {
	if r.User != nil {
		_, err := fmt.Fprintf(w, "%s: %s <%s> (id %d)\n", r.Message, r.User.Name, r.User.Email, r.ID)
		return err
	}
	_, err := fmt.Fprintf(w, "%s (id %d)\n", r.Message, r.ID)
	return err
}

// reportInvalid renders a validation failure and converts it to an exit error.
// Other errors pass through unchanged.
func reportInvalid(out *OutputFormatter, err error) error {
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	_ = out.Error(CodeInvalid, verr.Message(), verr.Fields)
	return WrapExitError(ExitFailure, "invalid input", err)
}

func reportNotFound(out *OutputFormatter, id int64) error {
	_ = out.Error(CodeNotFound, "User not found", map[string]int64{"id": id})
	return NewExitError(ExitFailure, fmt.Sprintf("user %d not found", id))
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Name         string
	Email        string
	Organization string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a local user",
		Long: `Add a user to the local list. Name and email are required; the email
must look like name@domain.tld. Surrounding whitespace is trimmed.

Example:
  usermgmt add --name "Ada Lovelace" --email ada@example.com --organization Engines`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "user name")
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "user email")
	cmd.Flags().StringVarP(&opts.Organization, "organization", "o", "", "organization (optional)")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.hydrateQuietly(ctx)

	r, err := a.session.AddUser(ctx, opts.Name, opts.Email, opts.Organization)
	if err != nil {
		return reportInvalid(a.out, err)
	}
	return a.out.Success(UserResult{Message: "User added", User: &r, ID: r.ID})
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Name         string
	Email        string
	Organization string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user",
		Long: `Edit a user's name, email or organization. Only the flags given are
changed. An empty --organization resets it to the placeholder.

Example:
  usermgmt update 3 --email nathan@example.net`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "new email")
	cmd.Flags().StringVarP(&opts.Organization, "organization", "o", "", "new organization")

	return cmd
}

func runUpdate(opts *UpdateOptions, idArg string, cmd *cobra.Command) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	var patch record.Patch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &opts.Name
	}
	if flags.Changed("email") {
		patch.Email = &opts.Email
	}
	if flags.Changed("organization") {
		patch.Organization = &opts.Organization
	}
	if patch.Name == nil && patch.Email == nil && patch.Organization == nil {
		return NewExitError(ExitCommandError, "nothing to update: pass --name, --email or --organization")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.hydrateQuietly(ctx)

	r, ok, err := a.session.UpdateUser(ctx, id, patch)
	if err != nil {
		return reportInvalid(a.out, err)
	}
	if !ok {
		return reportNotFound(a.out, id)
	}
	return a.out.Success(UserResult{Message: "User updated", User: &r, ID: id})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a user",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDelete(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.hydrateQuietly(ctx)

	if !a.session.DeleteUser(ctx, id) {
		return reportNotFound(a.out, id)
	}
	return a.out.Success(UserResult{Message: "User deleted", ID: id})
}
