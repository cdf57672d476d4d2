package game

import "time"

// TimerMode selects whether the clock counts up or down.
type TimerMode int

const (
	Elapsed TimerMode = iota
	Countdown
)

// String returns the protocol string for a TimerMode.
func (m TimerMode) String() string {
	switch m {
	case Elapsed:
		return "elapsed"
	case Countdown:
		return "countdown"
	default:
		return "unknown"
	}
}

// Scheduler runs fn once after d on the session's execution timeline.
// Implementations must never run fn concurrently with other session work.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Timer is a one-second ticking clock driven by a Scheduler.
type Timer struct {
	sched   Scheduler
	budget  int
	mode    TimerMode
	seconds int
	running bool
	// run changes on every Start, Stop and Reset so ticks scheduled by an
	// earlier run are ignored.
	run uint64

	// OnExpire is called once when a countdown reaches zero.
	OnExpire func()
}

// NewTimer returns a stopped timer whose countdown starts at budget seconds.
func NewTimer(sched Scheduler, budget int) *Timer {
	return &Timer{sched: sched, budget: budget}
}

// Reset stops the timer and shows the initial value for mode.
func (t *Timer) Reset(mode TimerMode) {
	t.Stop()
	t.mode = mode
	t.seconds = t.initial()
}

// Start begins ticking in mode. Calling Start on a running timer does nothing.
func (t *Timer) Start(mode TimerMode) {
	if t.running {
		return
	}
	t.mode = mode
	t.seconds = t.initial()
	t.running = true
	t.run++
	t.scheduleTick(t.run)
}

// Stop halts ticking. It is safe to call on a stopped timer.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.run++
}

// Value returns the current seconds shown by the timer.
func (t *Timer) Value() int {
	return t.seconds
}

// Mode returns the mode of the current or last run.
func (t *Timer) Mode() TimerMode {
	return t.mode
}

// Running reports whether the timer is ticking.
func (t *Timer) Running() bool {
	return t.running
}

// TimeTaken returns the seconds spent playing: the raw count in elapsed mode,
// budget minus remaining in countdown mode.
func (t *Timer) TimeTaken() int {
	if t.mode == Countdown {
		return max(0, t.budget-t.seconds)
	}
	return t.seconds
}

func (t *Timer) initial() int {
	if t.mode == Countdown {
		return t.budget
	}
	return 0
}

func (t *Timer) scheduleTick(run uint64) {
	t.sched.After(time.Second, func() { t.tick(run) })
}

func (t *Timer) tick(run uint64) {
	if !t.running || run != t.run {
		return
	}
	if t.mode == Elapsed {
		t.seconds++
		t.scheduleTick(run)
		return
	}
	t.seconds--
	if t.seconds > 0 {
		t.scheduleTick(run)
		return
	}
	t.seconds = 0
	t.Stop()
	if t.OnExpire != nil {
		t.OnExpire()
	}
}
