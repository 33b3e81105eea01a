package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erdilatifi/User-Management-App/internal/config"
	"github.com/erdilatifi/User-Management-App/internal/directory"
	"github.com/erdilatifi/User-Management-App/internal/session"
	"github.com/erdilatifi/User-Management-App/internal/store"
	"github.com/erdilatifi/User-Management-App/internal/telemetry"
)

// app is everything a command needs, wired from configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Collector
	slot    *store.SQLiteSlot
	store   *store.Store
	client  *directory.Client
	session *session.Session
	out     *OutputFormatter
}

// openApp loads configuration, opens the database and restores the store.
// Callers must Close the app.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*app, error) {
	overrides := map[string]any{}
	if opts.Database != "" {
		overrides["database.path"] = opts.Database
	}

	cfg, err := config.Load(opts.ConfigPath, overrides)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	logger := telemetry.SetupLogger(cmd.ErrOrStderr(), cfg.Logging.Format, level)

	slot, err := store.OpenSQLite(cfg.Database.Path, cfg.Database.Slot)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database ready", "path", cfg.Database.Path, "slot", slot.Name())

	metrics := telemetry.NewCollector()
	st := store.New(slot, store.WithObserver(metrics), store.WithLogger(logger))
	st.Load(ctx)
	metrics.ObserveRecords(st.Len())

	client := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout,
		directory.WithObserver(metrics),
		directory.WithLogger(logger),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		slot:    slot,
		store:   st,
		client:  client,
		session: session.New(st, client,
			session.WithPageSize(cfg.Query.PageSize),
			session.WithLogger(logger),
		),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// hydrateQuietly runs the startup fetch for commands that do not report it.
// A failure is logged and the command carries on with whatever is stored.
func (a *app) hydrateQuietly(ctx context.Context) {
	res, err := a.session.Hydrate(ctx)
	if err != nil {
		a.logger.Warn("Failed to fetch users.", "error", err)
		return
	}
	a.out.VerboseLog("hydrate: %s (%d users)", res.Outcome, res.Records)
}

// Close prints metrics in verbose mode and closes the database.
func (a *app) Close() {
	if a.out.Verbose {
		samples, err := a.metrics.Snapshot()
		if err != nil {
			a.logger.Error("failed to gather metrics", "error", err)
		}
		for _, s := range samples {
			a.out.VerboseLog("%s", s)
		}
	}
	if err := a.slot.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// parseID parses a user id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid user id %q", arg), err)
	}
	return id, nil
}
