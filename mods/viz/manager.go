package viz

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/projection"
)

// ErrNotFound reports an operation on an artifact with no registered projection.
var ErrNotFound = errors.New("no projection for artifact")

// Manager enforces at most one active projection per artifact. It is the
// single writer of the artifact registry; entities referenced by a
// registered projection are only restyled through that projection.
type Manager struct {
	mu      sync.RWMutex
	log     logging.Log
	entries map[string]*entry
}

type entry struct {
	proj     projection.Projection
	playback *projection.Dynamic
}

func NewManager() *Manager {
	return &Manager{
		log:     logging.GetLog("viz"),
		entries: map[string]*entry{},
	}
}

// Add registers a projection for its artifact. An already-registered
// projection for the same artifact is torn down first and returned.
func (m *Manager) Add(p projection.Projection) projection.Projection {
	return m.add(p.Artifact(), &entry{proj: p})
}

// AddDynamic registers a dynamic projection for its artifact, replacing and
// tearing down any previous one the same way Add does.
func (m *Manager) AddDynamic(dyn *projection.Dynamic, wrapped projection.Projection) projection.Projection {
	return m.add(dyn.Artifact(), &entry{proj: wrapped, playback: dyn})
}

func (m *Manager) add(artifact string, ent *entry) projection.Projection {
	m.mu.Lock()
	old := m.entries[artifact]
	m.entries[artifact] = ent
	m.mu.Unlock()

	if old == nil {
		m.log.Debugf("projection added for %q", artifact)
		return nil
	}
	m.teardown(artifact, old)
	m.log.Debugf("projection replaced for %q", artifact)
	return old.proj
}

// Remove unrenders and unregisters the projection for the artifact.
func (m *Manager) Remove(artifact string) (projection.Projection, error) {
	m.mu.Lock()
	ent, ok := m.entries[artifact]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w %q", ErrNotFound, artifact)
	}
	delete(m.entries, artifact)
	m.mu.Unlock()

	m.teardown(artifact, ent)
	return ent.proj, nil
}

func (m *Manager) teardown(artifact string, ent *entry) {
	if ent.playback != nil {
		if err := ent.playback.Stop(); err != nil {
			m.log.Warnf("stopping playback of %q: %s", artifact, err.Error())
		}
		return
	}
	if err := ent.proj.Unrender(); err != nil {
		m.log.Warnf("unrendering %q: %s", artifact, err.Error())
	}
}

// Get returns the registered projection for the artifact.
func (m *Manager) Get(artifact string) (projection.Projection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ent, ok := m.entries[artifact]; ok {
		return ent.proj, nil
	}
	return nil, fmt.Errorf("%w %q", ErrNotFound, artifact)
}

// Artifacts lists the artifacts with a registered projection.
func (m *Manager) Artifacts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]string, 0, len(m.entries))
	for artifact := range m.entries {
		ret = append(ret, artifact)
	}
	return ret
}

// Render delegates to the artifact's projection, failing when none exists.
func (m *Manager) Render(artifact string) error {
	p, err := m.Get(artifact)
	if err != nil {
		return err
	}
	return p.Render()
}

// Unrender delegates to the artifact's projection, failing when none exists.
func (m *Manager) Unrender(artifact string) error {
	p, err := m.Get(artifact)
	if err != nil {
		return err
	}
	return p.Unrender()
}

func (m *Manager) playbackOf(artifact string) (*projection.Dynamic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ent, ok := m.entries[artifact]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNotFound, artifact)
	}
	if ent.playback == nil {
		return nil, fmt.Errorf("projection for %q is not dynamic", artifact)
	}
	return ent.playback, nil
}

// Start begins or resumes playback of the artifact's dynamic projection.
func (m *Manager) Start(artifact string) error {
	dyn, err := m.playbackOf(artifact)
	if err != nil {
		return err
	}
	return dyn.Start()
}

// Pause suspends playback of the artifact's dynamic projection.
func (m *Manager) Pause(artifact string) error {
	dyn, err := m.playbackOf(artifact)
	if err != nil {
		return err
	}
	return dyn.Pause()
}

// Stop halts playback and restores the pre-start baseline.
func (m *Manager) Stop(artifact string) error {
	dyn, err := m.playbackOf(artifact)
	if err != nil {
		return err
	}
	return dyn.Stop()
}

// Status returns the playback status of the artifact's dynamic projection.
func (m *Manager) Status(artifact string) (projection.Status, error) {
	dyn, err := m.playbackOf(artifact)
	if err != nil {
		return projection.StatusStopped, err
	}
	return dyn.Status(), nil
}
