package timer

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/faizmokh/lifelog/internal/clock"
)

// DefaultInterval is the period of the shared tick.
const DefaultInterval = time.Second

// Notifier receives Pomodoro phase changes. Calls happen outside the manager lock.
type Notifier interface {
	PhaseChanged(change PhaseChange)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(change PhaseChange)

func (f NotifierFunc) PhaseChanged(change PhaseChange) { f(change) }

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithInterval changes the tick period.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithNotifier registers a phase change listener.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager tracks one timer per running log and drives them all from a single ticker.
type Manager struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	notifier Notifier
	logger   *log.Logger

	timers map[string]*instance
	stop   chan struct{} // non-nil while the tick loop runs
}

type instance struct {
	id           string
	workoutStart time.Time
	item         stopwatch
	paused       bool
	activeIndex  int
	pomodoro     *pomodoro
	subs         map[*Subscription]struct{}
}

// stopwatch measures elapsed time that excludes paused intervals.
type stopwatch struct {
	start time.Time
	accum time.Duration
}

func (s stopwatch) elapsed(now time.Time, paused bool) time.Duration {
	if paused {
		return s.accum
	}
	return s.accum + now.Sub(s.start)
}

func (s *stopwatch) reset(now time.Time) {
	s.start = now
	s.accum = 0
}

func (s *stopwatch) pause(now time.Time) {
	s.accum += now.Sub(s.start)
}

// NewManager builds a manager. The tick loop starts with the first timer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock:    clock.SystemClock{},
		interval: DefaultInterval,
		logger:   log.New(io.Discard, "", 0),
		timers:   make(map[string]*instance),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins tracking id with index as the active item. Starting an id that
// is already tracked only restarts its item clock.
func (m *Manager) Start(id string, index int, cfg *PomodoroConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if inst, ok := m.timers[id]; ok {
		inst.item.reset(now)
		inst.unpause(now)
		inst.activeIndex = index
		return
	}

	inst := &instance{
		id:           id,
		workoutStart: now,
		item:         stopwatch{start: now},
		activeIndex:  index,
		subs:         make(map[*Subscription]struct{}),
	}
	if cfg.enabled() {
		inst.pomodoro = newPomodoro(*cfg, now)
	}
	m.timers[id] = inst
	m.ensureLoop()
}

// Advance moves id to a new active item and restarts the item clock.
func (m *Manager) Advance(id string, index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok {
		return false
	}
	now := m.clock.Now()
	inst.item.reset(now)
	inst.unpause(now)
	inst.activeIndex = index
	return true
}

// SetActiveIndex is Advance that leaves the item clock alone when index is unchanged.
func (m *Manager) SetActiveIndex(id string, index int) bool {
	m.mu.Lock()
	inst, ok := m.timers[id]
	same := ok && inst.activeIndex == index
	m.mu.Unlock()

	if !ok {
		return false
	}
	if same {
		return true
	}
	return m.Advance(id, index)
}

// Pause freezes the item clock and the Pomodoro phase clock.
func (m *Manager) Pause(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok || inst.paused {
		return false
	}
	now := m.clock.Now()
	inst.item.pause(now)
	if inst.pomodoro != nil {
		inst.pomodoro.clock.pause(now)
	}
	inst.paused = true
	m.deliver(inst, now)
	return true
}

// Resume restarts the frozen clocks.
func (m *Manager) Resume(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok || !inst.paused {
		return false
	}
	now := m.clock.Now()
	inst.item.start = now
	inst.unpause(now)
	m.deliver(inst, now)
	return true
}

// Stop removes id and closes its subscriptions. The tick loop exits with the last timer.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok {
		return
	}
	for sub := range inst.subs {
		close(sub.ch)
	}
	inst.subs = nil
	delete(m.timers, id)

	if len(m.timers) == 0 && m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

// Rename moves the timer tracked as from to id to, keeping its clocks, active
// item and Pomodoro state. Subscriptions to from are closed; subscribers follow
// the timer by subscribing to to. It reports false when from is not tracked or
// to already is.
func (m *Manager) Rename(from, to string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[from]
	if !ok || from == to {
		return ok
	}
	if _, taken := m.timers[to]; taken {
		return false
	}
	for sub := range inst.subs {
		close(sub.ch)
	}
	inst.subs = make(map[*Subscription]struct{})
	inst.id = to
	delete(m.timers, from)
	m.timers[to] = inst
	return true
}

// Close stops every timer.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.timers))
	for id := range m.timers {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Stop(id)
	}
}

// Snapshot computes the current state of id.
func (m *Manager) Snapshot(id string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok {
		return Snapshot{}, false
	}
	return inst.snapshot(m.clock.Now()), true
}

// ActiveIndex returns the active item of id, or -1 when id is not tracked.
func (m *Manager) ActiveIndex(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, ok := m.timers[id]; ok {
		return inst.activeIndex
	}
	return -1
}

// IsRunning reports whether id is tracked.
func (m *Manager) IsRunning(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.timers[id]
	return ok
}

// IsPaused reports whether id is tracked and paused.
func (m *Manager) IsPaused(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	return ok && inst.paused
}

// Subscribe registers for snapshots of id. The current snapshot is queued
// immediately. An untracked id yields a subscription whose channel is already closed.
func (m *Manager) Subscribe(id string) *Subscription {
	sub := &Subscription{id: id, manager: m, ch: make(chan Snapshot, 1)}
	sub.C = sub.ch

	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[id]
	if !ok {
		close(sub.ch)
		return sub
	}
	inst.subs[sub] = struct{}{}
	sub.push(inst.snapshot(m.clock.Now()))
	return sub
}

func (m *Manager) unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.timers[sub.id]
	if !ok {
		return
	}
	if _, ok := inst.subs[sub]; ok {
		delete(inst.subs, sub)
		close(sub.ch)
	}
}

// ensureLoop must be called with m.mu held.
func (m *Manager) ensureLoop() {
	if m.stop != nil {
		return
	}
	stop := make(chan struct{})
	m.stop = stop
	go m.loop(stop)
}

func (m *Manager) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-stop:
			return
		}
	}
}

// tick advances Pomodoro phases and pushes a fresh snapshot to every subscriber.
func (m *Manager) tick() {
	m.mu.Lock()
	now := m.clock.Now()
	var changes []PhaseChange
	for _, inst := range m.timers {
		if inst.pomodoro != nil && !inst.paused {
			if change, ok := inst.pomodoro.advance(now); ok {
				change.ID = inst.id
				changes = append(changes, change)
				m.logger.Printf("timer: %s pomodoro %s -> %s (cycle %d)", inst.id, change.From, change.To, change.Cycle)
			}
		}
		m.deliver(inst, now)
	}
	notifier := m.notifier
	m.mu.Unlock()

	if notifier == nil {
		return
	}
	for _, change := range changes {
		notifier.PhaseChanged(change)
	}
}

// deliver must be called with m.mu held.
func (m *Manager) deliver(inst *instance, now time.Time) {
	if len(inst.subs) == 0 {
		return
	}
	snap := inst.snapshot(now)
	for sub := range inst.subs {
		sub.push(snap)
	}
}

// unpause clears the paused flag. A frozen Pomodoro clock restarts at now so
// the paused span is not counted.
func (inst *instance) unpause(now time.Time) {
	if inst.paused && inst.pomodoro != nil {
		inst.pomodoro.clock.start = now
	}
	inst.paused = false
}

func (inst *instance) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		ID:             inst.id,
		WorkoutElapsed: now.Sub(inst.workoutStart).Truncate(time.Second),
		ItemElapsed:    inst.item.elapsed(now, inst.paused).Truncate(time.Second),
		ActiveIndex:    inst.activeIndex,
		Paused:         inst.paused,
	}
	if inst.pomodoro != nil {
		p := inst.pomodoro.snapshot(now, inst.paused)
		snap.Pomodoro = &p
	}
	return snap
}
