package projection

import (
	"fmt"
	"sync"
	"time"

	"github.com/atlasmaps/atlas/mods/logging"
	gometrics "github.com/rcrowley/go-metrics"
)

// Status of a dynamic projection's playback.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
	StatusEnded
)

func (st Status) String() string {
	switch st {
	default:
		return "UNKNOWN"
	case StatusStopped:
		return "STOPPED"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	case StatusEnded:
		return "ENDED"
	}
}

// Frame is one discrete timestep of a dynamic projection. Index is an opaque
// sequencing label; playback advances one frame per tick regardless of gaps
// between consecutive indexes.
type Frame struct {
	Index  int    `json:"index"`
	Values Values `json:"values"`
}

// DefaultTickInterval is the delay between consecutive frames.
const DefaultTickInterval = 1000 * time.Millisecond

var (
	tickCounter   = gometrics.GetOrRegisterCounter("playback.ticks", gometrics.DefaultRegistry)
	renderCounter = gometrics.GetOrRegisterCounter("playback.renders", gometrics.DefaultRegistry)
)

// Dynamic drives a wrapped projection through a fixed sequence of frames,
// re-rendering it on every tick.
//
//	STOPPED --Start--> PLAYING --tick(last frame)--> ENDED
//	PLAYING --Pause--> PAUSED --Start--> PLAYING
//	PLAYING/PAUSED/ENDED --Stop--> STOPPED
//
// Reaching ENDED leaves the last frame rendered; only Stop clears it.
// When applying a frame fails mid-way, the engine stops itself: entities
// already touched in that frame are reverted along with everything else, so
// no half-applied frame outlives the call.
type Dynamic struct {
	mu       sync.Mutex
	log      logging.Log
	wrapped  Projection
	frames   []Frame
	interval time.Duration
	sched    Scheduler
	onStatus func(Status, int)

	status  Status
	cursor  int
	initial Values
	timer   TickTimer
	epoch   uint64
}

type DynamicOption func(*Dynamic)

// WithTickInterval overrides the delay between frames.
func WithTickInterval(d time.Duration) DynamicOption {
	return func(dp *Dynamic) {
		if d > 0 {
			dp.interval = d
		}
	}
}

// WithScheduler substitutes the tick scheduler.
func WithScheduler(s Scheduler) DynamicOption {
	return func(dp *Dynamic) {
		dp.sched = s
	}
}

// WithStatusFunc registers a callback invoked after every status transition
// with the new status and the current frame cursor. Called without locks held.
func WithStatusFunc(fn func(Status, int)) DynamicOption {
	return func(dp *Dynamic) {
		dp.onStatus = fn
	}
}

// NewDynamic wraps a projection with a frame sequence. The sequence must be
// non-empty and sorted ascending by frame index; the wrapped projection is
// not touched until Start.
func NewDynamic(p Projection, frames []Frame, opts ...DynamicOption) (*Dynamic, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("dynamic projection %q requires at least one frame", p.Artifact())
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Index <= frames[i-1].Index {
			return nil, fmt.Errorf("dynamic projection %q frames not sorted at #%d", p.Artifact(), i)
		}
	}
	ret := &Dynamic{
		log:      logging.GetLog(fmt.Sprintf("playback-%s", p.Artifact())),
		wrapped:  p,
		frames:   frames,
		interval: DefaultTickInterval,
		sched:    WallScheduler(),
		status:   StatusStopped,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

func (dp *Dynamic) Artifact() string {
	return dp.wrapped.Artifact()
}

// Status returns the current playback status.
func (dp *Dynamic) Status() Status {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	return dp.status
}

// CurrentFrame returns the cursor into the frame sequence.
func (dp *Dynamic) CurrentFrame() int {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	return dp.cursor
}

// NumFrames returns the length of the frame sequence.
func (dp *Dynamic) NumFrames() int {
	return len(dp.frames)
}

// Start begins playback from the first frame, or resumes from the current
// frame when paused. Calling Start while playing or ended is a no-op.
func (dp *Dynamic) Start() error {
	dp.mu.Lock()
	switch dp.status {
	case StatusPlaying, StatusEnded:
		dp.mu.Unlock()
		return nil
	case StatusPaused:
		dp.status = StatusPlaying
		dp.schedule()
		cursor := dp.cursor
		dp.mu.Unlock()
		dp.notify(StatusPlaying, cursor)
		return nil
	}
	// stopped: capture the baseline, render frame 0
	initial, err := dp.wrapped.PreviousState()
	if err != nil {
		dp.mu.Unlock()
		return err
	}
	dp.initial = initial
	dp.cursor = 0
	dp.wrapped.SetValues(dp.frames[0].Values)
	if err := dp.wrapped.Render(); err != nil {
		dp.revertLocked()
		dp.mu.Unlock()
		return err
	}
	renderCounter.Inc(1)
	dp.status = StatusPlaying
	dp.schedule()
	dp.mu.Unlock()
	dp.log.Debugf("playing %d frames every %s", len(dp.frames), dp.interval)
	dp.notify(StatusPlaying, 0)
	return nil
}

// Pause suspends playback, leaving the current frame rendered. Calling Pause
// in any status but playing is a no-op.
func (dp *Dynamic) Pause() error {
	dp.mu.Lock()
	if dp.status != StatusPlaying {
		dp.mu.Unlock()
		return nil
	}
	dp.cancelTimer()
	dp.status = StatusPaused
	cursor := dp.cursor
	dp.mu.Unlock()
	dp.notify(StatusPaused, cursor)
	return nil
}

// Stop cancels playback, restores the wrapped projection's values to the
// pre-start baseline and unrenders every effect. Valid from any status;
// stopping a stopped projection is a no-op.
func (dp *Dynamic) Stop() error {
	dp.mu.Lock()
	if dp.status == StatusStopped {
		dp.mu.Unlock()
		return nil
	}
	dp.cancelTimer()
	err := dp.revertLocked()
	dp.mu.Unlock()
	dp.notify(StatusStopped, 0)
	return err
}

// revertLocked restores the baseline and resets to the stopped state.
func (dp *Dynamic) revertLocked() error {
	dp.wrapped.SetValues(dp.initial)
	err := dp.wrapped.Unrender()
	dp.cursor = 0
	dp.status = StatusStopped
	return err
}

// schedule arms the next tick. Callers hold dp.mu.
func (dp *Dynamic) schedule() {
	epoch := dp.epoch
	dp.timer = dp.sched.AfterFunc(dp.interval, func() {
		dp.tick(epoch)
	})
}

// cancelTimer synchronously invalidates any pending tick. A tick that
// already fired but has not acquired the lock yet is invalidated by the
// epoch bump. Callers hold dp.mu.
func (dp *Dynamic) cancelTimer() {
	if dp.timer != nil {
		dp.timer.Stop()
		dp.timer = nil
	}
	dp.epoch++
}

func (dp *Dynamic) tick(epoch uint64) {
	dp.mu.Lock()
	if dp.status != StatusPlaying || epoch != dp.epoch {
		// stale timer, a pause/stop raced with the firing tick
		dp.mu.Unlock()
		return
	}
	tickCounter.Inc(1)
	dp.cursor++
	if dp.cursor >= len(dp.frames) {
		dp.cursor = len(dp.frames) - 1
		dp.timer = nil
		dp.status = StatusEnded
		cursor := dp.cursor
		dp.mu.Unlock()
		dp.notify(StatusEnded, cursor)
		return
	}
	dp.wrapped.SetValues(dp.frames[dp.cursor].Values)
	if err := dp.wrapped.Render(); err != nil {
		dp.log.Warnf("frame #%d render failed: %s", dp.frames[dp.cursor].Index, err.Error())
		dp.revertLocked()
		dp.mu.Unlock()
		dp.notify(StatusStopped, 0)
		return
	}
	renderCounter.Inc(1)
	cursor := dp.cursor
	if dp.cursor == len(dp.frames)-1 {
		// last frame applied, leave it rendered
		dp.timer = nil
		dp.status = StatusEnded
		dp.mu.Unlock()
		dp.notify(StatusEnded, cursor)
		return
	}
	dp.schedule()
	dp.mu.Unlock()
	dp.notify(StatusPlaying, cursor)
}

func (dp *Dynamic) notify(st Status, cursor int) {
	if dp.onStatus != nil {
		dp.onStatus(st, cursor)
	}
}
