package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erdilatifi/User-Management-App/internal/session"
)

// SyncResult reports what the startup fetch did.
type SyncResult struct {
	Outcome string `json:"outcome" yaml:"outcome"`
	Records int    `json:"records" yaml:"records"`
	Source  string `json:"source" yaml:"source"`
}

// RenderText prints a one-line summary.
func (r SyncResult) RenderText(w io.Writer) error {
	var err error
	switch session.HydrateOutcome(r.Outcome) {
	case session.HydrateFetched:
		_, err = fmt.Fprintf(w, "Fetched %d users from %s\n", r.Records, r.Source)
	default:
		_, err = fmt.Fprintf(w, "Skipped: store already holds %d users\n", r.Records)
	}
	return err
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the directory into an empty store",
		Long: `Fetch the user directory into the store.

The fetch only happens when the store is empty, so local additions and
edits are never overwritten. Every other command does the same check
before it runs; sync just reports the outcome.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.session.Hydrate(ctx)
	if err != nil {
		_ = a.out.Error(CodeFetchFailed, "Failed to fetch users.", err.Error())
		return WrapExitError(ExitFailure, "failed to fetch users", err)
	}

	return a.out.Success(SyncResult{
		Outcome: string(res.Outcome),
		Records: res.Records,
		Source:  a.client.BaseURL(),
	})
}
