package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/timer"
)

// Scores is the self-evaluation stored when a study session is finished.
type Scores struct {
	Focus         int
	Comprehension int
}

// Session is one open log block. Operations rewrite the block through the
// updater; when the block has drifted in the document the write is dropped,
// the record stays as it was and Stale reports true until the next Reload.
type Session struct {
	c *Controller

	mu     sync.Mutex
	doc    string
	span   logbook.Span
	record logbook.Record
	stale  bool
}

// Record returns the current record.
func (s *Session) Record() logbook.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Span returns the block's fence lines.
func (s *Session) Span() logbook.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.span
}

// Doc returns the document id.
func (s *Session) Doc() string {
	return s.doc
}

// Stale reports whether the last write found the block moved or renamed.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// TimerID returns the id of the session's timer.
func (s *Session) TimerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerID()
}

func (s *Session) timerID() string {
	return TimerID(s.record.Category(), s.doc, s.span.Start)
}

// Snapshot returns the timer state, if a timer is running.
func (s *Session) Snapshot() (timer.Snapshot, bool) {
	return s.c.timers.Snapshot(s.TimerID())
}

// Reload re-reads the block, for use after an external edit. The block at the
// session's opening fence is taken when it is still of the same category;
// otherwise the nearest block of that category with the session's title. A
// running timer follows the block to its new line.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := s.locateLocked(ctx)
	if err != nil {
		return err
	}

	oldID := s.timerID()
	s.span = block.Span
	s.record = block.Record()
	s.stale = false
	if newID := s.timerID(); newID != oldID && s.c.timers.IsRunning(oldID) {
		if !s.c.timers.Rename(oldID, newID) {
			s.c.timers.Stop(oldID)
		}
		s.c.logger.Printf("session: block moved, timer %s is now %s", oldID, newID)
	}
	s.syncLocked()
	return nil
}

func (s *Session) locateLocked(ctx context.Context) (logbook.Block, error) {
	blocks, err := s.c.reader.Blocks(ctx, s.doc)
	if err != nil {
		return logbook.Block{}, err
	}
	category, title := s.record.Category(), s.record.Title()

	best, bestDistance := -1, 0
	for i, block := range blocks {
		if block.Category != category {
			continue
		}
		if block.Span.Start == s.span.Start {
			return block, nil
		}
		if block.Record().Title() != title {
			continue
		}
		distance := block.Span.Start - s.span.Start
		if distance < 0 {
			distance = -distance
		}
		if best < 0 || distance < bestDistance {
			best, bestDistance = i, distance
		}
	}
	if best < 0 {
		return logbook.Block{}, fmt.Errorf("reload %s: %w", s.timerID(), logbook.ErrBlockNotFound)
	}
	return blocks[best], nil
}

func (s *Session) sync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
}

// syncLocked stops a timer whose record is no longer started, starts one for
// a started record without one and pushes a changed active item into it.
func (s *Session) syncLocked() {
	r := s.record
	if !r.Category().Timed() {
		return
	}
	id := s.timerID()
	running := s.c.timers.IsRunning(id)
	active := logbook.ActiveIndex(r)

	switch {
	case r.State() != logbook.StateStarted:
		if running {
			s.c.timers.Stop(id)
		}
	case !running:
		s.c.timers.Start(id, max(active, 0), s.c.pomodoroFor(r.Category()))
	case active >= 0:
		s.c.timers.SetActiveIndex(id, active)
	}
}

// commit writes next over the block. It reports whether the write landed.
func (s *Session) commit(ctx context.Context, next logbook.Record) (bool, error) {
	res, err := s.c.updater.UpdateBlock(ctx, s.doc, s.span, next.Category(), next.Serialize(), s.record.Title())
	if err != nil {
		return false, err
	}
	if res.Status != files.Applied {
		s.stale = true
		s.c.logger.Printf("session: %s not written: %s", s.timerID(), res.Reason)
		return false, nil
	}
	s.record = next
	s.span = res.Span
	s.stale = false
	return true, nil
}

func (s *Session) now() string {
	return logbook.FormatTimestamp(s.c.clock.Now())
}

// Start moves a planned record to started, activates the first pending item
// and starts the timer on it.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record
	if !r.Category().Timed() {
		return ErrNotTimed
	}
	if r.State() != logbook.StatePlanned {
		return nil
	}
	next := startRecord(r, s.now())
	first := logbook.NextPending(next, -1)
	if first >= 0 {
		next = setItemState(next, first, logbook.ItemInProgress)
	}
	ok, err := s.commit(ctx, next)
	if err != nil || !ok {
		return err
	}
	s.c.timers.Start(s.timerID(), max(first, 0), s.c.pomodoroFor(r.Category()))
	s.c.logger.Printf("session: started %s", s.timerID())
	return nil
}

// FinishItem completes item i, recording the time spent on it, and moves on
// to the next pending item. With nothing left the whole record completes.
func (s *Session) FinishItem(ctx context.Context, i int) error {
	return s.endItem(ctx, i, logbook.ItemCompleted)
}

// SkipItem is FinishItem with the item marked skipped. Time is recorded only
// when some has elapsed.
func (s *Session) SkipItem(ctx context.Context, i int) error {
	return s.endItem(ctx, i, logbook.ItemSkipped)
}

func (s *Session) endItem(ctx context.Context, i int, target logbook.ItemState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record
	if !r.Category().Timed() {
		return ErrNotTimed
	}
	if r.State() != logbook.StateStarted {
		return ErrNotStarted
	}
	item, ok := r.Item(i)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	if item.State != logbook.ItemPending && item.State != logbook.ItemInProgress {
		return fmt.Errorf("%w: item %d is %s", ErrItemState, i, item.State)
	}

	id := s.timerID()
	next := s.stampActive(r, i, target == logbook.ItemCompleted)
	if target == logbook.ItemCompleted && item.State == logbook.ItemPending {
		if active := logbook.ActiveIndex(next); active >= 0 {
			return fmt.Errorf("%w: item %d is in progress", ErrItemState, active)
		}
		next = setItemState(next, i, logbook.ItemInProgress)
	}
	next = setItemState(next, i, target)

	// Another item is still running: nothing to advance to.
	if logbook.ActiveIndex(next) >= 0 {
		_, err := s.commit(ctx, next)
		return err
	}

	if n := logbook.NextPending(next, i); n >= 0 {
		next = setItemState(next, n, logbook.ItemInProgress)
		ok, err := s.commit(ctx, next)
		if err != nil || !ok {
			return err
		}
		if !s.c.timers.Advance(id, n) {
			s.c.timers.Start(id, n, s.c.pomodoroFor(r.Category()))
		}
		return nil
	}
	return s.completeLocked(ctx, next)
}

// stampActive records the timer's item time on i when i is the item the
// timer is following. A zero reading is only written when always is set.
func (s *Session) stampActive(r logbook.Record, i int, always bool) logbook.Record {
	snap, running := s.c.timers.Snapshot(s.timerID())
	if !running || snap.ActiveIndex != i {
		return r
	}
	if item, ok := r.Item(i); !ok || item.State != logbook.ItemInProgress {
		return r
	}
	if elapsed := snap.ItemSeconds(); always || elapsed > 0 {
		return stampDuration(r, i, elapsed)
	}
	return r
}

// completeLocked stamps the totals, writes the completed record and stops the timer.
func (s *Session) completeLocked(ctx context.Context, next logbook.Record) error {
	id := s.timerID()
	total := 0
	if snap, running := s.c.timers.Snapshot(id); running {
		total = snap.WorkoutSeconds()
	}
	next = completeRecord(next, s.now(), total)
	ok, err := s.commit(ctx, next)
	if err != nil || !ok {
		return err
	}
	s.c.timers.Stop(id)
	s.c.logger.Printf("session: completed %s", id)
	s.c.notifier.Notify(Event{Kind: EventSessionCompleted, TimerID: id, Title: next.Title()})
	return nil
}

// Finish ends the whole session: the active item is completed with its time,
// pending items stay pending and the record completes. Study logs also keep
// scores; meal logs are simply marked completed.
func (s *Session) Finish(ctx context.Context, scores Scores) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record
	if r.State() == logbook.StateCompleted {
		return nil
	}
	if r.Category().Timed() && r.State() != logbook.StateStarted {
		return ErrNotStarted
	}
	next := r
	if active := logbook.ActiveIndex(r); active >= 0 {
		next = s.stampActive(next, active, true)
		next = setItemState(next, active, logbook.ItemCompleted)
	}
	if study, ok := next.(logbook.StudyLog); ok && (scores.Focus > 0 || scores.Comprehension > 0) {
		next = study.SetScores(scores.Focus, scores.Comprehension)
	}
	return s.completeLocked(ctx, next)
}

// Pause freezes the item clock. It reports whether anything changed.
func (s *Session) Pause() bool {
	return s.c.timers.Pause(s.TimerID())
}

// Resume restarts a paused item clock.
func (s *Session) Resume() bool {
	return s.c.timers.Resume(s.TimerID())
}

// workoutStep completes the in-progress exercise i, lets insert add an
// exercise after it and activates that new exercise.
func (s *Session) workoutStep(ctx context.Context, i int, insert func(logbook.Workout) logbook.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.record.(logbook.Workout)
	if !ok {
		return ErrUnsupported
	}
	if w.Metadata.State != logbook.StateStarted {
		return ErrNotStarted
	}
	item, ok := w.Item(i)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	if item.State != logbook.ItemInProgress {
		return fmt.Errorf("%w: item %d is %s", ErrItemState, i, item.State)
	}

	next := s.stampActive(w, i, true).(logbook.Workout)
	next = next.SetItemState(i, logbook.ItemCompleted)
	next = insert(next)
	next = next.SetItemState(i+1, logbook.ItemInProgress)
	ok, err := s.commit(ctx, next)
	if err != nil || !ok {
		return err
	}
	id := s.timerID()
	if !s.c.timers.Advance(id, i+1) {
		s.c.timers.Start(id, i+1, nil)
	}
	return nil
}

// AddSet finishes exercise i and starts a fresh copy of it.
func (s *Session) AddSet(ctx context.Context, i int) error {
	return s.workoutStep(ctx, i, func(w logbook.Workout) logbook.Workout {
		return w.AddSet(i)
	})
}

// AddRest finishes exercise i and starts a rest countdown after it.
func (s *Session) AddRest(ctx context.Context, i int) error {
	return s.workoutStep(ctx, i, func(w logbook.Workout) logbook.Workout {
		rest := w.Metadata.RestDuration
		if rest <= 0 {
			rest = s.c.restSeconds
		}
		return w.AddRest(i, rest)
	})
}

// UpdateParam edits an editable parameter of exercise i.
func (s *Session) UpdateParam(ctx context.Context, i int, key, value string) error {
	return s.apply(ctx, func(r logbook.Record) (logbook.Record, error) {
		w, ok := r.(logbook.Workout)
		if !ok {
			return nil, ErrUnsupported
		}
		if _, ok := w.Item(i); !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
		}
		return w.UpdateParamValue(i, key, value), nil
	})
}

// ToggleFood flips food i between eaten and not eaten.
func (s *Session) ToggleFood(ctx context.Context, i int) error {
	return s.applyMeal(ctx, func(m logbook.MealLog) (logbook.MealLog, error) {
		if _, ok := m.Item(i); !ok {
			return m, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
		}
		return m.ToggleFood(i), nil
	})
}

// AddFood appends a food to a meal.
func (s *Session) AddFood(ctx context.Context, name string) error {
	return s.applyMeal(ctx, func(m logbook.MealLog) (logbook.MealLog, error) {
		return m.AddFood(name), nil
	})
}

// RemoveFood drops food i from a meal.
func (s *Session) RemoveFood(ctx context.Context, i int) error {
	return s.applyMeal(ctx, func(m logbook.MealLog) (logbook.MealLog, error) {
		if _, ok := m.Item(i); !ok {
			return m, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
		}
		return m.RemoveFood(i), nil
	})
}

// SetPhoto links a photo to a meal.
func (s *Session) SetPhoto(ctx context.Context, path string) error {
	return s.applyMeal(ctx, func(m logbook.MealLog) (logbook.MealLog, error) {
		return m.SetPhoto(path), nil
	})
}

func (s *Session) applyMeal(ctx context.Context, fn func(logbook.MealLog) (logbook.MealLog, error)) error {
	return s.apply(ctx, func(r logbook.Record) (logbook.Record, error) {
		m, ok := r.(logbook.MealLog)
		if !ok {
			return nil, ErrUnsupported
		}
		return fn(m)
	})
}

// apply writes fn's result unless it serializes to the same text.
func (s *Session) apply(ctx context.Context, fn func(logbook.Record) (logbook.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.record)
	if err != nil {
		return err
	}
	if next.Serialize() == s.record.Serialize() {
		return nil
	}
	_, err = s.commit(ctx, next)
	return err
}
