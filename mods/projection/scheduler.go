package projection

import "time"

// TickTimer is a single pending tick. Stop prevents the tick from firing and
// reports whether it was still pending.
type TickTimer interface {
	Stop() bool
}

// Scheduler defers a function call, it is the only timing primitive the
// playback engine uses. Tests substitute a manual implementation.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TickTimer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) TickTimer {
	return time.AfterFunc(d, fn)
}

// WallScheduler schedules on the runtime timer wheel.
func WallScheduler() Scheduler {
	return wallScheduler{}
}
