package entity

import (
	"fmt"
	"sync"

	"github.com/atlasmaps/atlas/mods/nums"
)

// Appearance is the renderable state of an entity. Each field is an "artifact"
// that at most one projection controls at a time.
type Appearance struct {
	FillColor string  `json:"fillColor,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
}

const (
	ArtifactColor     = "color"
	ArtifactHeight    = "height"
	ArtifactElevation = "elevation"
)

// Entity pairs a geometry with its appearance. Appearance fields are changed
// through ApplyEffect/RemoveEffect keyed by artifact, so the pre-effect value
// can always be restored.
type Entity struct {
	mu       sync.RWMutex
	id       string
	geometry nums.Geography
	base     Appearance
	applied  map[string]any
}

func New(id string, geom nums.Geography, base Appearance) *Entity {
	return &Entity{
		id:       id,
		geometry: geom,
		base:     base,
		applied:  map[string]any{},
	}
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) Geometry() nums.Geography {
	return e.geometry
}

// Appearance returns the appearance with all applied effects folded in.
func (e *Entity) Appearance() Appearance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ret := e.base
	if v, ok := e.applied[ArtifactColor]; ok {
		ret.FillColor = v.(string)
	}
	if v, ok := e.applied[ArtifactHeight]; ok {
		ret.Height = v.(float64)
	}
	if v, ok := e.applied[ArtifactElevation]; ok {
		ret.Elevation = v.(float64)
	}
	return ret
}

// CurrentValue reads the effective value of the given artifact, applied effect
// first, base appearance otherwise.
func (e *Entity) CurrentValue(artifact string) (any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.applied[artifact]; ok {
		return v, nil
	}
	switch artifact {
	case ArtifactColor:
		return e.base.FillColor, nil
	case ArtifactHeight:
		return e.base.Height, nil
	case ArtifactElevation:
		return e.base.Elevation, nil
	}
	return nil, fmt.Errorf("entity %q unknown artifact %q", e.id, artifact)
}

// ApplyEffect overrides the artifact's appearance with the given value.
// Re-applying replaces the previous effect, the base appearance is untouched.
func (e *Entity) ApplyEffect(artifact string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch artifact {
	case ArtifactColor:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("entity %q artifact %q expects string, got %T", e.id, artifact, value)
		}
	case ArtifactHeight, ArtifactElevation:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("entity %q artifact %q expects float64, got %T", e.id, artifact, value)
		}
	default:
		return fmt.Errorf("entity %q unknown artifact %q", e.id, artifact)
	}
	e.applied[artifact] = value
	return nil
}

// RemoveEffect restores the artifact to its base appearance.
// Removing an effect that was never applied is a no-op.
func (e *Entity) RemoveEffect(artifact string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.applied, artifact)
	return nil
}

// HasEffect reports whether the artifact currently has an applied effect.
func (e *Entity) HasEffect(artifact string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.applied[artifact]
	return ok
}
