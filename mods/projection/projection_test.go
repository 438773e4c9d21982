package projection_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atlasmaps/atlas/mods/projection"
	"github.com/stretchr/testify/require"
)

// fakeTarget is a minimal entity handle recording the applied effect per
// artifact over a baseline value.
type fakeTarget struct {
	mu      sync.Mutex
	id      string
	base    any
	applied map[string]any
	failing bool
}

func newFakeTarget(id string, base any) *fakeTarget {
	return &fakeTarget{id: id, base: base, applied: map[string]any{}}
}

func (f *fakeTarget) ID() string { return f.id }

func (f *fakeTarget) ApplyEffect(artifact string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return fmt.Errorf("entity %q rejected effect", f.id)
	}
	f.applied[artifact] = value
	return nil
}

func (f *fakeTarget) RemoveEffect(artifact string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.applied, artifact)
	return nil
}

func (f *fakeTarget) CurrentValue(artifact string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.applied[artifact]; ok {
		return v, nil
	}
	return f.base, nil
}

func (f *fakeTarget) effect(artifact string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.applied[artifact]
	return v, ok
}

func TestHeightRender(t *testing.T) {
	a := newFakeTarget("A", 0.0)
	b := newFakeTarget("B", 0.0)
	p := projection.NewHeight("height", map[string]projection.Target{"A": a, "B": b})
	p.SetValues(projection.Values{"A": 10.0, "B": 20.0})
	require.NoError(t, p.Render())

	eff, ok := a.effect("height")
	require.True(t, ok)
	require.Equal(t, 10.0, eff)
	eff, _ = b.effect("height")
	require.Equal(t, 20.0, eff)
	require.Len(t, p.Effects(), 2)

	// re-rendering the same values is observably identical
	require.NoError(t, p.Render())
	eff, _ = a.effect("height")
	require.Equal(t, 10.0, eff)
	require.Len(t, p.Effects(), 2)

	require.NoError(t, p.Unrender())
	_, ok = a.effect("height")
	require.False(t, ok)
	require.Empty(t, p.Effects())

	// unrender with nothing rendered is a no-op
	require.NoError(t, p.Unrender())
}

func TestHeightCodomain(t *testing.T) {
	a := newFakeTarget("A", 0.0)
	p := projection.NewHeight("height", map[string]projection.Target{"A": a},
		projection.WithHeightCodomain(0, 100, 10, 60))
	p.SetValues(projection.Values{"A": 50.0})
	require.NoError(t, p.Render())
	eff, _ := a.effect("height")
	require.Equal(t, 35.0, eff)

	// values outside the domain clamp to the codomain edge
	p.SetValues(projection.Values{"A": 250.0})
	require.NoError(t, p.Render())
	eff, _ = a.effect("height")
	require.Equal(t, 60.0, eff)
}

func TestRenderUnknownEntityFailsFast(t *testing.T) {
	a := newFakeTarget("A", 0.0)
	p := projection.NewHeight("height", map[string]projection.Target{"A": a})
	p.SetValues(projection.Values{"A": 1.0, "GHOST": 2.0})
	err := p.Render()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GHOST")
	// nothing was applied
	_, ok := a.effect("height")
	require.False(t, ok)
}

func TestColorRender(t *testing.T) {
	a := newFakeTarget("A", "#ffffff")
	b := newFakeTarget("B", "#ffffff")
	c := newFakeTarget("C", "#ffffff")
	p := projection.NewColor("color", map[string]projection.Target{"A": a, "B": b, "C": c},
		projection.WithPalette([]string{"#low", "#mid", "#high"}))

	p.SetValues(projection.Values{"A": 0.0, "B": 5.0, "C": 10.0})
	require.NoError(t, p.Render())
	eff, _ := a.effect("color")
	require.Equal(t, "#low", eff)
	eff, _ = b.effect("color")
	require.Equal(t, "#mid", eff)
	eff, _ = c.effect("color")
	require.Equal(t, "#high", eff)
}

func TestColorStringValuesVerbatim(t *testing.T) {
	a := newFakeTarget("A", "#ffffff")
	p := projection.NewColor("color", map[string]projection.Target{"A": a})
	p.SetValues(projection.Values{"A": "#123456"})
	require.NoError(t, p.Render())
	eff, _ := a.effect("color")
	require.Equal(t, "#123456", eff)
}

func TestColorFixedDomain(t *testing.T) {
	a := newFakeTarget("A", "#ffffff")
	p := projection.NewColor("color", map[string]projection.Target{"A": a},
		projection.WithPalette([]string{"#low", "#high"}),
		projection.WithColorDomain(0, 100))
	p.SetValues(projection.Values{"A": 10.0})
	require.NoError(t, p.Render())
	eff, _ := a.effect("color")
	require.Equal(t, "#low", eff)
}

func TestPreviousState(t *testing.T) {
	a := newFakeTarget("A", 3.0)
	p := projection.NewHeight("height", map[string]projection.Target{"A": a})
	state, err := p.PreviousState()
	require.NoError(t, err)
	require.Equal(t, projection.Values{"A": 3.0}, state)

	// after a render, the previous state reflects the applied effect
	p.SetValues(projection.Values{"A": 9.0})
	require.NoError(t, p.Render())
	state, err = p.PreviousState()
	require.NoError(t, err)
	require.Equal(t, projection.Values{"A": 9.0}, state)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "STOPPED", projection.StatusStopped.String())
	require.Equal(t, "PLAYING", projection.StatusPlaying.String())
	require.Equal(t, "PAUSED", projection.StatusPaused.String())
	require.Equal(t, "ENDED", projection.StatusEnded.String())
	require.Equal(t, "UNKNOWN", projection.Status(99).String())
}

func TestWallScheduler(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	timer := projection.WallScheduler().AfterFunc(time.Millisecond, func() {
		wg.Done()
	})
	wg.Wait()
	require.False(t, timer.Stop())
}
