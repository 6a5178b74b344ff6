package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/index"
	"github.com/faizmokh/lifelog/internal/session"
	"github.com/faizmokh/lifelog/internal/timer"
	"github.com/faizmokh/lifelog/internal/ui"
)

func newRunCommand(ctx context.Context, a *app) *cobra.Command {
	var lineFlag int

	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Open a log block in the live session view.",
		Long:  "run drives the block's timer and writes every change back to the document. External edits to the document are picked up while it runs.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.docID(args[0])
			if err != nil {
				return err
			}
			path, err := a.manager.Path(id)
			if err != nil {
				return err
			}

			// The terminal belongs to the TUI while it runs.
			logFile, err := os.OpenFile(a.manager.DiagnosticLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open diagnostic log: %w", err)
			}
			defer logFile.Close()
			a.logger.SetOutput(logFile)

			ctl := a.controller()
			defer ctl.Timers().Close()

			s, err := ctl.Open(ctx, id, lineFlag)
			if err != nil {
				return err
			}

			watcher, err := ui.WatchDocument(path, a.logger)
			if err != nil {
				return fmt.Errorf("watch %s: %w", id, err)
			}
			defer watcher.Close()

			if _, err := tea.NewProgram(ui.NewModel(ctx, s, watcher.Changes())).Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}

			a.refreshIndex(ctx, s)
			return nil
		},
	}

	cmd.Flags().IntVar(&lineFlag, "line", -1, "Line of the block's opening fence (default: first block)")

	return cmd
}

// controller builds a session controller using the configured Pomodoro
// cycle and rest length.
func (a *app) controller() *session.Controller {
	notifier := a.notifier()
	timers := timer.NewManager(
		timer.WithClock(a.clock),
		timer.WithLogger(a.logger),
		timer.WithNotifier(session.PhaseNotifier(notifier)),
	)
	return session.NewController(timers, a.updater, a.reader,
		session.WithClock(a.clock),
		session.WithLogger(a.logger),
		session.WithNotifier(notifier),
		session.WithPomodoro(a.settings.PomodoroConfig()),
		session.WithRestDuration(a.settings.DefaultRestDuration),
	)
}

func (a *app) notifier() session.Notifier {
	return session.NotifierFunc(func(e session.Event) {
		a.logger.Printf("notify: %s %s %s", e.Kind, e.TimerID, e.Item)
		if a.settings.Notifications {
			// Terminal bell; the TUI keeps its own status line.
			fmt.Fprint(os.Stderr, "\a")
		}
	})
}

// refreshIndex updates the session's block in an existing index. A missing
// index is left alone; `lifelog index` builds it.
func (a *app) refreshIndex(ctx context.Context, s *session.Session) {
	path := filepath.Join(a.manager.BasePath(), index.FileName)
	if _, err := os.Stat(path); err != nil {
		return
	}
	block, err := a.reader.BlockAt(ctx, s.Doc(), s.Span().Start)
	if err != nil {
		a.logger.Printf("index: %v", err)
		return
	}
	ix, err := index.Open(path)
	if err != nil {
		a.logger.Printf("index: %v", err)
		return
	}
	defer ix.Close()
	if err := ix.Upsert(ctx, index.EntryFor(s.Doc(), block)); err != nil {
		a.logger.Printf("index: %v", err)
	}
}
