package timer

import "time"

// Snapshot is a point-in-time view of one timer. Elapsed values are whole seconds.
type Snapshot struct {
	ID             string
	WorkoutElapsed time.Duration
	ItemElapsed    time.Duration
	ActiveIndex    int
	Paused         bool
	Pomodoro       *PomodoroSnapshot
}

// ItemSeconds returns ItemElapsed in seconds.
func (s Snapshot) ItemSeconds() int {
	return int(s.ItemElapsed / time.Second)
}

// WorkoutSeconds returns WorkoutElapsed in seconds.
func (s Snapshot) WorkoutSeconds() int {
	return int(s.WorkoutElapsed / time.Second)
}

// Subscription receives snapshots on C until it is closed or its timer stops.
// C holds at most one pending snapshot; a slow reader only ever sees the latest.
type Subscription struct {
	C <-chan Snapshot

	ch      chan Snapshot
	id      string
	manager *Manager
}

// ID returns the timer id the subscription follows.
func (s *Subscription) ID() string {
	return s.id
}

// Close unsubscribes. It is safe to call after the timer has stopped.
func (s *Subscription) Close() {
	if s.manager != nil {
		s.manager.unsubscribe(s)
	}
}

// push replaces any unread snapshot. Callers hold the manager lock, so push is the only sender.
func (s *Subscription) push(snap Snapshot) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}
