package timer

import "time"

// Phase is a Pomodoro sub-cycle phase.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// PomodoroConfig enables the nested work/break cycle when both durations are positive.
type PomodoroConfig struct {
	Work  time.Duration
	Break time.Duration
}

func (c *PomodoroConfig) enabled() bool {
	return c != nil && c.Work > 0 && c.Break > 0
}

// PomodoroSnapshot reports the current phase. Cycle counts work phases, starting at 1.
type PomodoroSnapshot struct {
	Phase     Phase
	Cycle     int
	Elapsed   time.Duration
	Remaining time.Duration
	Progress  float64
}

// PhaseChange is sent to the Notifier when a phase completes.
type PhaseChange struct {
	ID    string
	From  Phase
	To    Phase
	Cycle int
}

type pomodoro struct {
	config PomodoroConfig
	phase  Phase
	cycle  int
	clock  stopwatch
}

func newPomodoro(cfg PomodoroConfig, now time.Time) *pomodoro {
	return &pomodoro{
		config: cfg,
		phase:  PhaseWork,
		cycle:  1,
		clock:  stopwatch{start: now},
	}
}

func (p *pomodoro) length() time.Duration {
	if p.phase == PhaseBreak {
		return p.config.Break
	}
	return p.config.Work
}

// advance flips the phase once its length has elapsed. The cycle counter only
// moves on break -> work.
func (p *pomodoro) advance(now time.Time) (PhaseChange, bool) {
	if p.clock.elapsed(now, false) < p.length() {
		return PhaseChange{}, false
	}

	change := PhaseChange{From: p.phase}
	if p.phase == PhaseWork {
		p.phase = PhaseBreak
	} else {
		p.phase = PhaseWork
		p.cycle++
	}
	p.clock.reset(now)
	change.To = p.phase
	change.Cycle = p.cycle
	return change, true
}

func (p *pomodoro) snapshot(now time.Time, paused bool) PomodoroSnapshot {
	length := p.length()
	elapsed := p.clock.elapsed(now, paused).Truncate(time.Second)
	remaining := length - elapsed
	if remaining < 0 {
		remaining = 0
	}
	progress := 1.0
	if length > 0 && elapsed < length {
		progress = float64(elapsed) / float64(length)
	}
	return PomodoroSnapshot{
		Phase:     p.phase,
		Cycle:     p.cycle,
		Elapsed:   elapsed,
		Remaining: remaining,
		Progress:  progress,
	}
}
