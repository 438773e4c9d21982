package projection_test

import (
	"sync"
	"testing"
	"time"

	"github.com/atlasmaps/atlas/mods/projection"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires ticks only when the test advances it.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) projection.TickTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance fires every currently-pending timer, simulating one tick interval.
func (s *manualScheduler) Advance() {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, t := range due {
		t.mu.Lock()
		if t.stopped || t.fired {
			t.mu.Unlock()
			continue
		}
		t.fired = true
		fn := t.fn
		t.mu.Unlock()
		fn()
	}
}

func (s *manualScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

func heightFrames() []projection.Frame {
	return []projection.Frame{
		{Index: 0, Values: projection.Values{"A": 0.0}},
		{Index: 1, Values: projection.Values{"A": 10.0}},
		{Index: 2, Values: projection.Values{"A": 20.0}},
	}
}

func newPlayback(t *testing.T, target *fakeTarget, frames []projection.Frame, opts ...projection.DynamicOption) (*projection.Dynamic, *manualScheduler) {
	t.Helper()
	sched := newManualScheduler()
	p := projection.NewHeight("height", map[string]projection.Target{"A": target})
	opts = append([]projection.DynamicOption{projection.WithScheduler(sched)}, opts...)
	dyn, err := projection.NewDynamic(p, frames, opts...)
	require.NoError(t, err)
	return dyn, sched
}

func TestDynamicConstruction(t *testing.T) {
	p := projection.NewHeight("height", map[string]projection.Target{})

	_, err := projection.NewDynamic(p, nil)
	require.Error(t, err, "empty frame sequence is a construction-time error")

	_, err = projection.NewDynamic(p, []projection.Frame{
		{Index: 3, Values: projection.Values{}},
		{Index: 1, Values: projection.Values{}},
	})
	require.Error(t, err, "frames must be sorted ascending by index")
}

func TestDynamicPlaysToEnd(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.Equal(t, projection.StatusStopped, dyn.Status())
	require.NoError(t, dyn.Start())
	require.Equal(t, projection.StatusPlaying, dyn.Status())

	// t=0: frame 0 rendered
	eff, _ := target.effect("height")
	require.Equal(t, 0.0, eff)

	// after 1000 units: frame 1
	sched.Advance()
	require.Equal(t, projection.StatusPlaying, dyn.Status())
	eff, _ = target.effect("height")
	require.Equal(t, 10.0, eff)

	// after 2000 units: frame 2 and the sequence ends
	sched.Advance()
	require.Equal(t, projection.StatusEnded, dyn.Status())
	eff, _ = target.effect("height")
	require.Equal(t, 20.0, eff)
	require.Equal(t, 2, dyn.CurrentFrame())

	// the last frame's effect persists, no further ticks are scheduled
	require.Equal(t, 0, sched.PendingCount())
	sched.Advance()
	eff, _ = target.effect("height")
	require.Equal(t, 20.0, eff)
	require.Equal(t, projection.StatusEnded, dyn.Status())

	// Start from ended is a no-op
	require.NoError(t, dyn.Start())
	require.Equal(t, projection.StatusEnded, dyn.Status())
	require.Equal(t, 0, sched.PendingCount())
}

func TestDynamicPauseFreezesFrame(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Start())
	sched.Advance() // frame 1
	require.NoError(t, dyn.Pause())
	require.Equal(t, projection.StatusPaused, dyn.Status())
	require.Equal(t, 0, sched.PendingCount())

	// any amount of elapsed time changes nothing while paused
	sched.Advance()
	sched.Advance()
	eff, _ := target.effect("height")
	require.Equal(t, 10.0, eff)
	require.Equal(t, 1, dyn.CurrentFrame())

	// resume: the current frame is not re-applied, the next tick advances
	require.NoError(t, dyn.Start())
	require.Equal(t, projection.StatusPlaying, dyn.Status())
	sched.Advance()
	eff, _ = target.effect("height")
	require.Equal(t, 20.0, eff)
	require.Equal(t, projection.StatusEnded, dyn.Status())
}

func TestDynamicPauseOutsidePlayingIsNoop(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Pause())
	require.Equal(t, projection.StatusStopped, dyn.Status())

	require.NoError(t, dyn.Start())
	sched.Advance()
	sched.Advance()
	require.Equal(t, projection.StatusEnded, dyn.Status())
	require.NoError(t, dyn.Pause())
	require.Equal(t, projection.StatusEnded, dyn.Status())
}

func TestDynamicStopRestoresBaseline(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Start())
	sched.Advance() // frame 1
	eff, _ := target.effect("height")
	require.Equal(t, 10.0, eff)

	require.NoError(t, dyn.Stop())
	require.Equal(t, projection.StatusStopped, dyn.Status())
	require.Equal(t, 0, dyn.CurrentFrame())
	// effect removed, the entity reads its pre-start value again
	_, ok := target.effect("height")
	require.False(t, ok)
	cur, err := target.CurrentValue("height")
	require.NoError(t, err)
	require.Equal(t, 5.0, cur)

	// no stale tick may fire after stop
	sched.Advance()
	_, ok = target.effect("height")
	require.False(t, ok)
	require.Equal(t, projection.StatusStopped, dyn.Status())
}

func TestDynamicStopFromEnded(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Start())
	sched.Advance()
	sched.Advance()
	require.Equal(t, projection.StatusEnded, dyn.Status())

	require.NoError(t, dyn.Stop())
	require.Equal(t, projection.StatusStopped, dyn.Status())
	_, ok := target.effect("height")
	require.False(t, ok)

	// stopped projections can be replayed from the top
	require.NoError(t, dyn.Start())
	require.Equal(t, projection.StatusPlaying, dyn.Status())
	eff, _ := target.effect("height")
	require.Equal(t, 0.0, eff)
	require.NoError(t, dyn.Stop())
}

func TestDynamicStopWhileStoppedIsNoop(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, _ := newPlayback(t, target, heightFrames())
	require.NoError(t, dyn.Stop())
	require.Equal(t, projection.StatusStopped, dyn.Status())
}

func TestDynamicStartIdempotent(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Start())
	require.NoError(t, dyn.Start())
	require.NoError(t, dyn.Start())
	// only one pending tick at a time
	require.Equal(t, 1, sched.PendingCount())
}

func TestDynamicSingleFrame(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, []projection.Frame{
		{Index: 7, Values: projection.Values{"A": 99.0}},
	})

	require.NoError(t, dyn.Start())
	require.Equal(t, projection.StatusPlaying, dyn.Status())
	eff, _ := target.effect("height")
	require.Equal(t, 99.0, eff)

	// ends on the first tick, never stays playing across multiple ticks
	sched.Advance()
	require.Equal(t, projection.StatusEnded, dyn.Status())
	eff, _ = target.effect("height")
	require.Equal(t, 99.0, eff)
	require.Equal(t, 0, sched.PendingCount())
}

func TestDynamicIndexGapsAreOpaque(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, []projection.Frame{
		{Index: 0, Values: projection.Values{"A": 1.0}},
		{Index: 100, Values: projection.Values{"A": 2.0}},
		{Index: 5000, Values: projection.Values{"A": 3.0}},
	})

	require.NoError(t, dyn.Start())
	sched.Advance()
	eff, _ := target.effect("height")
	require.Equal(t, 2.0, eff, "one frame per tick regardless of index gap")
	sched.Advance()
	eff, _ = target.effect("height")
	require.Equal(t, 3.0, eff)
	require.Equal(t, projection.StatusEnded, dyn.Status())
}

func TestDynamicRenderFailureStopsPlayback(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	dyn, sched := newPlayback(t, target, heightFrames())

	require.NoError(t, dyn.Start())
	target.mu.Lock()
	target.failing = true
	target.mu.Unlock()

	sched.Advance()
	require.Equal(t, projection.StatusStopped, dyn.Status())
	target.mu.Lock()
	target.failing = false
	target.mu.Unlock()
	_, ok := target.effect("height")
	require.False(t, ok)
}

func TestDynamicStatusFunc(t *testing.T) {
	target := newFakeTarget("A", 5.0)
	var mu sync.Mutex
	var seen []projection.Status
	dyn, sched := newPlayback(t, target, heightFrames(),
		projection.WithStatusFunc(func(st projection.Status, _ int) {
			mu.Lock()
			seen = append(seen, st)
			mu.Unlock()
		}))

	require.NoError(t, dyn.Start())
	sched.Advance()
	require.NoError(t, dyn.Pause())
	require.NoError(t, dyn.Start())
	sched.Advance()
	require.NoError(t, dyn.Stop())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []projection.Status{
		projection.StatusPlaying,
		projection.StatusPlaying,
		projection.StatusPaused,
		projection.StatusPlaying,
		projection.StatusEnded,
		projection.StatusStopped,
	}, seen)
}

func TestDynamicDefaultInterval(t *testing.T) {
	require.Equal(t, time.Second, projection.DefaultTickInterval)

	target := newFakeTarget("A", 5.0)
	p := projection.NewHeight("height", map[string]projection.Target{"A": target})
	dyn, err := projection.NewDynamic(p, heightFrames(),
		projection.WithTickInterval(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, dyn.Start())
	require.Eventually(t, func() bool {
		return dyn.Status() == projection.StatusEnded
	}, time.Second, time.Millisecond)
	eff, _ := target.effect("height")
	require.Equal(t, 20.0, eff)
}
