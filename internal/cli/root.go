package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/clock"
	"github.com/faizmokh/lifelog/internal/config"
	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
)

// app bundles the pieces every command shares.
type app struct {
	manager  *files.Manager
	settings config.Settings
	store    *files.Store
	updater  *files.Updater
	reader   *logbook.Reader
	creator  *files.Creator
	clock    clock.Clock
	logger   *log.Logger
}

// newApp loads settings from the lifelog home at base and wires the document layer.
func newApp(base string) (*app, error) {
	manager, err := files.NewManager(base)
	if err != nil {
		return nil, err
	}
	settings, err := config.Load(config.Path(manager.BasePath()))
	if err != nil {
		return nil, err
	}
	manager.SetLayout(settings.LogFolder, settings.DateFormat)

	logger := log.New(os.Stderr, "", log.LstdFlags)
	store := files.NewStore(manager)
	updater := files.NewUpdater(store, logger)
	return &app{
		manager:  manager,
		settings: settings,
		store:    store,
		updater:  updater,
		reader:   logbook.NewReader(store),
		creator:  files.NewCreator(manager, updater),
		clock:    clock.SystemClock{},
		logger:   logger,
	}, nil
}

// NewRootCommand wires all subcommands.
func NewRootCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifelog",
		Short: "lifelog tracks workouts, study, work and meals in Markdown logs.",
		Long:  "lifelog keeps life-log, study-log, work-log and meal-log blocks in dated Markdown documents and runs timed sessions against them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newNewCommand(ctx, a),
		newFoodCommand(ctx, a),
		newShowCommand(ctx, a),
		newTemplateCommand(ctx, a),
		newRunCommand(ctx, a),
		newIndexCommand(ctx, a),
		newStatsCommand(ctx, a),
		newExportCommand(ctx, a),
		newVersionCommand(),
	)

	return cmd
}

// ExecuteCommand runs the CLI against the lifelog home resolved from the environment.
func ExecuteCommand(ctx context.Context) error {
	a, err := newApp("")
	if err != nil {
		return err
	}
	return NewRootCommand(ctx, a).Execute()
}

// Main is the entry point used by cmd/lifelog.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
