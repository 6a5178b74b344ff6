package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizmokh/lifelog/internal/clock"
	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/timer"
)

const legsDoc = "```life-log\n" + `title: Legs
state: planned
---
- [ ] Squats | Reps: [10]
- [ ] Lunges | Reps: [8]
- [ ] Plank | Duration: [30s]
` + "```\n"

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	ctl    *Controller
	store  *files.Store
	base   string
	clock  *clock.Fake
	events *recorder
}

func newFixture(t *testing.T, interval time.Duration, docs map[string]string) *fixture {
	t.Helper()
	base := t.TempDir()
	mgr, err := files.NewManager(base)
	require.NoError(t, err)
	for id, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(base, id), []byte(text), 0o644))
	}

	fake := clock.NewFake(time.Date(2025, time.November, 2, 7, 0, 0, 0, time.UTC))
	timers := timer.NewManager(timer.WithClock(fake), timer.WithInterval(interval))
	t.Cleanup(timers.Close)

	store := files.NewStore(mgr)
	events := &recorder{}
	ctl := NewController(timers, files.NewUpdater(store, nil), logbook.NewReader(store),
		WithClock(fake),
		WithNotifier(events),
	)
	return &fixture{ctl: ctl, store: store, base: base, clock: fake, events: events}
}

func (f *fixture) read(t *testing.T, id string) string {
	t.Helper()
	text, err := f.store.Read(context.Background(), id)
	require.NoError(t, err)
	return text
}

func TestStartFinishSkipScenario(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()

	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	assert.False(t, f.ctl.Timers().IsRunning(s.TimerID()))

	require.NoError(t, s.Start(ctx))
	w := s.Record().(logbook.Workout)
	assert.Equal(t, logbook.StateStarted, w.Metadata.State)
	assert.Equal(t, "2025-11-02 07:00", w.Metadata.StartDate)
	assert.Equal(t, logbook.ItemInProgress, w.Exercises[0].State)
	assert.Equal(t, 0, f.ctl.Timers().ActiveIndex(s.TimerID()))

	f.clock.Advance(45 * time.Second)
	require.NoError(t, s.FinishItem(ctx, 0))
	w = s.Record().(logbook.Workout)
	assert.Equal(t, logbook.ItemCompleted, w.Exercises[0].State)
	assert.Equal(t, "45s", w.Exercises[0].RecordedDuration)
	assert.Equal(t, logbook.ItemInProgress, w.Exercises[1].State)
	assert.Equal(t, 1, f.ctl.Timers().ActiveIndex(s.TimerID()))

	f.clock.Advance(30 * time.Second)
	require.NoError(t, s.SkipItem(ctx, 1))
	assert.Equal(t, 2, f.ctl.Timers().ActiveIndex(s.TimerID()))

	f.clock.Advance(20 * time.Second)
	require.NoError(t, s.FinishItem(ctx, 2))
	assert.False(t, f.ctl.Timers().IsRunning(s.TimerID()))
	assert.Equal(t, 1, f.events.count(EventSessionCompleted))

	want := "```life-log\n" + strings.TrimLeft(`
title: Legs
state: completed
startDate: 2025-11-02 07:00
duration: 1m 35s
---
- [x] Squats | Reps: 10 | Duration: 45s
- [-] Lunges | Reps: 8 | Duration: 30s
- [x] Plank | Duration: 20s
`, "\n") + "```\n"
	assert.Equal(t, want, f.read(t, "day.md"))
}

func TestStateOnlyMovesForward(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)

	assert.ErrorIs(t, s.FinishItem(ctx, 0), ErrNotStarted)
	assert.ErrorIs(t, s.Finish(ctx, Scores{}), ErrNotStarted)

	seen := []logbook.LogState{s.Record().State()}
	record := func() {
		if st := s.Record().State(); st != seen[len(seen)-1] {
			seen = append(seen, st)
		}
	}
	require.NoError(t, s.Start(ctx))
	record()
	require.NoError(t, s.Start(ctx))
	record()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.FinishItem(ctx, i))
		record()
	}
	assert.Equal(t, []logbook.LogState{logbook.StatePlanned, logbook.StateStarted, logbook.StateCompleted}, seen)
	assert.NoError(t, s.Finish(ctx, Scores{}))
	assert.ErrorIs(t, s.FinishItem(ctx, 0), ErrNotStarted)
}

func TestOnlyOneItemInProgress(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	err = s.FinishItem(ctx, 2)
	assert.ErrorIs(t, err, ErrItemState)

	// Skipping a pending item leaves the running one alone.
	require.NoError(t, s.SkipItem(ctx, 1))
	w := s.Record().(logbook.Workout)
	assert.Equal(t, logbook.ItemInProgress, w.Exercises[0].State)
	assert.Equal(t, logbook.ItemSkipped, w.Exercises[1].State)
	assert.Equal(t, 0, logbook.ActiveIndex(w))

	require.NoError(t, s.FinishItem(ctx, 0))
	w = s.Record().(logbook.Workout)
	assert.Equal(t, 2, logbook.ActiveIndex(w))
	assert.Equal(t, 2, f.ctl.Timers().ActiveIndex(s.TimerID()))

	assert.ErrorIs(t, s.FinishItem(ctx, 7), ErrInvalidIndex)
	assert.ErrorIs(t, s.SkipItem(ctx, 1), ErrItemState)
}

func TestSkipWithoutElapsedTimeRecordsNothing(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.SkipItem(ctx, 0))
	w := s.Record().(logbook.Workout)
	assert.Equal(t, logbook.ItemSkipped, w.Exercises[0].State)
	assert.Empty(t, w.Exercises[0].RecordedDuration)
	assert.Contains(t, f.read(t, "day.md"), "- [-] Squats | Reps: [10]\n")
}

func TestStaleBlockLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	before := s.Record()

	edited := "# moved down\n" + f.read(t, "day.md")
	require.NoError(t, os.WriteFile(filepath.Join(f.base, "day.md"), []byte(edited), 0o644))

	require.NoError(t, s.FinishItem(ctx, 0))
	assert.True(t, s.Stale())
	assert.Equal(t, before, s.Record())
	assert.Equal(t, edited, f.read(t, "day.md"))
	assert.Equal(t, 0, f.ctl.Timers().ActiveIndex(s.TimerID()))
}

func TestOpenSyncsTimerWithRecord(t *testing.T) {
	started := "```life-log\ntitle: Legs\nstate: started\nstartDate: 2025-11-02 06:50\n---\n- [x] Squats | Reps: 10\n- [\\] Lunges | Reps: [8]\n```\n"
	f := newFixture(t, time.Hour, map[string]string{"day.md": started})
	ctx := context.Background()

	s, err := f.ctl.Open(ctx, "day.md", 0)
	require.NoError(t, err)
	id := s.TimerID()
	assert.Equal(t, "workout:day.md:0", id)
	assert.True(t, f.ctl.Timers().IsRunning(id))
	assert.Equal(t, 1, f.ctl.Timers().ActiveIndex(id))

	completed := strings.Replace(started, "state: started", "state: completed", 1)
	require.NoError(t, os.WriteFile(filepath.Join(f.base, "day.md"), []byte(completed), 0o644))
	require.NoError(t, s.Reload(ctx))
	assert.False(t, f.ctl.Timers().IsRunning(id))
}

func TestAddSetAndRest(t *testing.T) {
	doc := "```life-log\ntitle: Arms\nstate: planned\nrestDuration: 90s\n---\n- [ ] Curls | Reps: [12]\n```\n"
	f := newFixture(t, time.Hour, map[string]string{"day.md": doc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	f.clock.Advance(40 * time.Second)
	require.NoError(t, s.AddRest(ctx, 0))
	w := s.Record().(logbook.Workout)
	require.Len(t, w.Exercises, 2)
	assert.Equal(t, "Rest", w.Exercises[1].Name)
	assert.Equal(t, 90, w.Exercises[1].TargetDuration)
	assert.Equal(t, logbook.ItemInProgress, w.Exercises[1].State)

	f.clock.Advance(90 * time.Second)
	require.NoError(t, s.FinishItem(ctx, 1))
	assert.True(t, s.Record().State() == logbook.StateCompleted)

	assert.ErrorIs(t, s.AddSet(ctx, 0), ErrNotStarted)
}

func TestAddSetStartsNextCopy(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.UpdateParam(ctx, 0, "Reps", "12"))
	require.NoError(t, s.AddSet(ctx, 0))
	w := s.Record().(logbook.Workout)
	require.Len(t, w.Exercises, 4)
	assert.Equal(t, "Squats", w.Exercises[1].Name)
	assert.Equal(t, logbook.ItemInProgress, w.Exercises[1].State)
	assert.Equal(t, 1, f.ctl.Timers().ActiveIndex(s.TimerID()))
	assert.Contains(t, f.read(t, "day.md"), "- [\\] Squats | Reps: [12]\n- [ ] Lunges")

	assert.ErrorIs(t, s.AddSet(ctx, 0), ErrItemState)
}

func TestStudyFinishStoresScores(t *testing.T) {
	doc := "```study-log\ntitle: Algebra\nsubject: Math\nstate: started\nstartDate: 2025-11-02 07:00\n---\n- [\\] Chapter 1 | Duration: [25m]\n- [ ] Chapter 2 | Duration: [25m]\n```\n"
	f := newFixture(t, time.Hour, map[string]string{"study.md": doc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "study.md", -1)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	require.NoError(t, s.Finish(ctx, Scores{Focus: 4, Comprehension: 5}))

	study := s.Record().(logbook.StudyLog)
	assert.Equal(t, logbook.StateCompleted, study.Metadata.State)
	assert.Equal(t, "2025-11-02 07:10", study.Metadata.EndDate)
	assert.Equal(t, "10m", study.Metadata.TotalDuration)
	assert.Equal(t, 4, study.Metadata.FocusScore)
	assert.Equal(t, 5, study.Metadata.ComprehensionScore)
	assert.Equal(t, logbook.ItemCompleted, study.Tasks[0].State)
	assert.Equal(t, "10m", study.Tasks[0].RecordedDuration)
	assert.Equal(t, logbook.ItemPending, study.Tasks[1].State)
	assert.False(t, f.ctl.Timers().IsRunning(s.TimerID()))
}

func TestMealOperations(t *testing.T) {
	doc := "```meal-log\ntitle: Lunch\nmealType: lunch\nstate: planned\n---\n- [ ] Rice\n```\n"
	f := newFixture(t, time.Hour, map[string]string{"meal.md": doc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "meal.md", -1)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Start(ctx), ErrNotTimed)
	assert.ErrorIs(t, s.AddSet(ctx, 0), ErrUnsupported)

	require.NoError(t, s.AddFood(ctx, "Grilled chicken"))
	require.NoError(t, s.ToggleFood(ctx, 0))
	require.NoError(t, s.SetPhoto(ctx, "photos/lunch.jpg"))
	require.NoError(t, s.RemoveFood(ctx, 1))
	assert.ErrorIs(t, s.ToggleFood(ctx, 5), ErrInvalidIndex)
	require.NoError(t, s.Finish(ctx, Scores{}))

	want := "```meal-log\n" + strings.TrimLeft(`
title: Lunch
mealType: lunch
state: completed
photo: photos/lunch.jpg
---
- [x] Rice
`, "\n") + "```\n"
	assert.Equal(t, want, f.read(t, "meal.md"))
}

func TestWatchAutoAdvancesOncePerSubscription(t *testing.T) {
	doc := "```life-log\ntitle: Core\nstate: planned\n---\n- [ ] Plank | Duration: [30s]\n- [ ] Rest | Duration: [60s]\n```\n"
	f := newFixture(t, 5*time.Millisecond, map[string]string{"day.md": doc})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, nil) }()

	f.clock.Advance(31 * time.Second)
	require.Eventually(t, func() bool {
		return logbook.ActiveIndex(s.Record()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	w := s.Record().(logbook.Workout)
	assert.Equal(t, logbook.ItemCompleted, w.Exercises[0].State)
	assert.Equal(t, "31s", w.Exercises[0].RecordedDuration)

	// The rest countdown has only just begun, so nothing else may fire.
	assert.Never(t, func() bool {
		return logbook.ActiveIndex(s.Record()) != 1
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 1, f.events.count(EventTargetReached))

	f.clock.Advance(60 * time.Second)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after the session completed")
	}
	assert.Equal(t, logbook.StateCompleted, s.Record().State())
	assert.Equal(t, 2, f.events.count(EventTargetReached))
	assert.Equal(t, 1, f.events.count(EventSessionCompleted))
}

func TestPhaseNotifierForwardsChanges(t *testing.T) {
	events := &recorder{}
	PhaseNotifier(events).PhaseChanged(timer.PhaseChange{ID: "study:a.md:0", From: timer.PhaseWork, To: timer.PhaseBreak, Cycle: 1})
	require.Len(t, events.events, 1)
	assert.Equal(t, EventPhaseChanged, events.events[0].Kind)
	assert.Equal(t, timer.PhaseBreak, events.events[0].Phase)
}

func TestReloadFollowsMovedBlock(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	oldID := s.TimerID()

	f.clock.Advance(45 * time.Second)
	edited := "# Today\n\n" + f.read(t, "day.md")
	require.NoError(t, os.WriteFile(filepath.Join(f.base, "day.md"), []byte(edited), 0o644))

	require.NoError(t, s.FinishItem(ctx, 0))
	require.True(t, s.Stale())

	require.NoError(t, s.Reload(ctx))
	assert.False(t, s.Stale())
	assert.Equal(t, 2, s.Span().Start)
	assert.Equal(t, "workout:day.md:2", s.TimerID())
	assert.False(t, f.ctl.Timers().IsRunning(oldID), "no timer left behind on the old line")
	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 45, snap.ItemSeconds(), "elapsed time survives the move")

	f.clock.Advance(5 * time.Second)
	require.NoError(t, s.FinishItem(ctx, 0))
	assert.False(t, s.Stale())
	text := f.read(t, "day.md")
	assert.True(t, strings.HasPrefix(text, "# Today\n\n```life-log\n"))
	assert.Contains(t, text, "- [x] Squats | Reps: 10 | Duration: 50s\n- [\\] Lunges | Reps: [8]\n")
}

func TestReloadFailsWhenBlockIsGone(t *testing.T) {
	f := newFixture(t, time.Hour, map[string]string{"day.md": legsDoc})
	ctx := context.Background()
	s, err := f.ctl.Open(ctx, "day.md", -1)
	require.NoError(t, err)

	renamed := "intro\n" + strings.Replace(legsDoc, "title: Legs", "title: Arms", 1)
	require.NoError(t, os.WriteFile(filepath.Join(f.base, "day.md"), []byte(renamed), 0o644))

	err = s.Reload(ctx)
	assert.ErrorIs(t, err, logbook.ErrBlockNotFound)
	assert.Equal(t, 0, s.Span().Start)
}
