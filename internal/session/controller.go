// Package session drives a single log block through its lifecycle: it keeps
// the block text, the running timer and the in-memory record in step.
package session

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/faizmokh/lifelog/internal/clock"
	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/timer"
)

// EventKind names what a Notifier is told about.
type EventKind int

const (
	// EventTargetReached fires when the active item's countdown or expected duration runs out.
	EventTargetReached EventKind = iota
	// EventPhaseChanged fires when a Pomodoro phase flips.
	EventPhaseChanged
	// EventSessionCompleted fires when a record reaches completed.
	EventSessionCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventTargetReached:
		return "target-reached"
	case EventPhaseChanged:
		return "phase-changed"
	case EventSessionCompleted:
		return "session-completed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is delivered to the Notifier.
type Event struct {
	Kind    EventKind
	TimerID string
	Title   string
	Item    string
	Phase   timer.Phase
	Cycle   int
}

// Notifier plays the sound or shows the desktop notification for an event.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// PhaseNotifier forwards timer phase changes to n as EventPhaseChanged.
func PhaseNotifier(n Notifier) timer.Notifier {
	return timer.NotifierFunc(func(change timer.PhaseChange) {
		n.Notify(Event{Kind: EventPhaseChanged, TimerID: change.ID, Phase: change.To, Cycle: change.Cycle})
	})
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the clock used for start and end timestamps.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithNotifier registers the event sink.
func WithNotifier(n Notifier) Option {
	return func(ctl *Controller) {
		if n != nil {
			ctl.notifier = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// WithPomodoro enables the work/break cycle for study and work sessions.
func WithPomodoro(cfg *timer.PomodoroConfig) Option {
	return func(ctl *Controller) { ctl.pomodoro = cfg }
}

// WithRestDuration sets the rest length used when a workout has no restDuration.
func WithRestDuration(seconds int) Option {
	return func(ctl *Controller) {
		if seconds > 0 {
			ctl.restSeconds = seconds
		}
	}
}

// Controller opens sessions on log blocks. It is safe for concurrent use;
// every session it opens shares its timer manager and updater.
type Controller struct {
	timers  *timer.Manager
	updater *files.Updater
	reader  *logbook.Reader

	clock       clock.Clock
	notifier    Notifier
	logger      *log.Logger
	pomodoro    *timer.PomodoroConfig
	restSeconds int
}

// NewController wires a controller.
func NewController(timers *timer.Manager, updater *files.Updater, reader *logbook.Reader, opts ...Option) *Controller {
	c := &Controller{
		timers:      timers,
		updater:     updater,
		reader:      reader,
		clock:       clock.SystemClock{},
		notifier:    nopNotifier{},
		logger:      log.New(io.Discard, "", 0),
		restSeconds: 60,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timers exposes the shared timer manager.
func (c *Controller) Timers() *timer.Manager {
	return c.timers
}

// Open loads the block whose opening fence is at line (negative for the
// first block) and brings its timer in line with the record.
func (c *Controller) Open(ctx context.Context, doc string, line int) (*Session, error) {
	block, err := c.reader.BlockAt(ctx, doc, line)
	if err != nil {
		return nil, err
	}
	return c.Attach(doc, block), nil
}

// Attach wraps a block that has already been read.
func (c *Controller) Attach(doc string, block logbook.Block) *Session {
	s := &Session{c: c, doc: doc, span: block.Span, record: block.Record()}
	s.sync()
	return s
}

// TimerID is the key a block's timer is registered under.
func TimerID(category logbook.Category, doc string, line int) string {
	return fmt.Sprintf("%s:%s:%d", category, doc, line)
}

func (c *Controller) pomodoroFor(category logbook.Category) *timer.PomodoroConfig {
	if category == logbook.CategoryStudy || category == logbook.CategoryWork {
		return c.pomodoro
	}
	return nil
}
