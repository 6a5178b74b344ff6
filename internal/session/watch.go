package session

import (
	"context"
	"errors"

	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/timer"
)

// Watch follows the session's timer until ctx ends or the timer stops,
// passing every snapshot to fn. When the active item's target is reached the
// item is finished; each subscription does that at most once and is then
// replaced by a fresh one following the new active item. Work tasks only
// raise EventTargetReached since their expected duration is an estimate.
func (s *Session) Watch(ctx context.Context, fn func(timer.Snapshot)) error {
	for {
		again, err := s.watchOnce(ctx, fn)
		if err != nil || !again {
			return err
		}
	}
}

// watchOnce runs one subscription. It reports whether the caller should
// subscribe again.
func (s *Session) watchOnce(ctx context.Context, fn func(timer.Snapshot)) (bool, error) {
	id := s.TimerID()
	timers := s.c.timers
	sub := timers.Subscribe(id)
	defer sub.Close()

	captured := timers.ActiveIndex(id)
	fired := false
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case snap, ok := <-sub.C:
			if !ok {
				return false, nil
			}
			if fn != nil {
				fn(snap)
			}
			// A newer active item means this subscription is superseded.
			if current := timers.ActiveIndex(id); current != captured {
				return current >= 0, nil
			}
			if fired || snap.Paused {
				continue
			}
			r := s.Record()
			item, ok := r.Item(captured)
			if !ok || item.State != logbook.ItemInProgress || item.Target <= 0 || snap.ItemSeconds() < item.Target {
				continue
			}

			fired = true
			s.c.notifier.Notify(Event{Kind: EventTargetReached, TimerID: id, Title: r.Title(), Item: item.Name})
			if r.Category() == logbook.CategoryWork {
				continue
			}
			s.c.logger.Printf("session: %s target reached on item %d", id, captured)
			if err := s.FinishItem(ctx, captured); err != nil && !errors.Is(err, ErrItemState) {
				return false, err
			}
			if s.Stale() {
				continue
			}
			return timers.IsRunning(id), nil
		}
	}
}
