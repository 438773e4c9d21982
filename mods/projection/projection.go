package projection

import (
	"fmt"

	"github.com/atlasmaps/atlas/mods/logging"
)

// Values maps an entity id to the data value driving its rendered effect.
type Values map[string]any

func (vs Values) Clone() Values {
	ret := make(Values, len(vs))
	for k, v := range vs {
		ret[k] = v
	}
	return ret
}

// Target is the narrow contract a projection requires from an entity handle.
// Projections never inspect an entity beyond these operations.
type Target interface {
	ID() string
	ApplyEffect(artifact string, value any) error
	RemoveEffect(artifact string) error
	CurrentValue(artifact string) (any, error)
}

// Projection renders per-entity values as visual effects on one artifact
// (e.g. "color", "height") and can reverse them.
type Projection interface {
	// Artifact names the visual attribute this projection controls.
	Artifact() string
	// SetValues replaces the per-entity driving values.
	SetValues(values Values)
	// Values returns the current driving values.
	Values() Values
	// Render applies an effect for every entity that has a value and records
	// it for later reversal. Re-rendering an unchanged value is observably
	// the same as rendering once.
	Render() error
	// Unrender removes every recorded effect and restores the entities'
	// pre-projection appearance. Safe to call when nothing has been rendered.
	Unrender() error
	// PreviousState reads the entities' current artifact state, the baseline
	// a playback engine restores on stop.
	PreviousState() (Values, error)
}

// Base carries the bookkeeping shared by concrete projections: the entity
// set, the driving values and the record of applied effects.
// Invariant: effects is a subset of entities; an entity has an effect entry
// iff it has been rendered since the last unrender.
type Base struct {
	artifact string
	entities map[string]Target
	values   Values
	effects  map[string]any
	log      logging.Log
}

func newBase(artifact string, entities map[string]Target) Base {
	ents := make(map[string]Target, len(entities))
	for id, tgt := range entities {
		ents[id] = tgt
	}
	return Base{
		artifact: artifact,
		entities: ents,
		values:   Values{},
		effects:  map[string]any{},
		log:      logging.GetLog(fmt.Sprintf("projection-%s", artifact)),
	}
}

func (b *Base) Artifact() string {
	return b.artifact
}

func (b *Base) SetValues(values Values) {
	b.values = values.Clone()
}

func (b *Base) Values() Values {
	return b.values
}

// Effects returns the applied effect per entity id, for inspection.
func (b *Base) Effects() map[string]any {
	ret := make(map[string]any, len(b.effects))
	for k, v := range b.effects {
		ret[k] = v
	}
	return ret
}

// render applies effectFor(value) to every entity that has a value.
// A value keyed by an id with no registered entity is a caller contract
// violation and fails before any effect is applied.
func (b *Base) render(effectFor func(value any) (any, error)) error {
	for id := range b.values {
		if _, ok := b.entities[id]; !ok {
			return fmt.Errorf("projection %q value for unknown entity %q", b.artifact, id)
		}
	}
	for id, tgt := range b.entities {
		value, ok := b.values[id]
		if !ok {
			continue
		}
		eff, err := effectFor(value)
		if err != nil {
			return fmt.Errorf("projection %q entity %q: %s", b.artifact, id, err.Error())
		}
		if err := tgt.ApplyEffect(b.artifact, eff); err != nil {
			return err
		}
		b.effects[id] = eff
	}
	return nil
}

func (b *Base) Unrender() error {
	for id := range b.effects {
		if tgt, ok := b.entities[id]; ok {
			if err := tgt.RemoveEffect(b.artifact); err != nil {
				return err
			}
		}
		delete(b.effects, id)
	}
	return nil
}

func (b *Base) previousState() (Values, error) {
	ret := Values{}
	for id, tgt := range b.entities {
		v, err := tgt.CurrentValue(b.artifact)
		if err != nil {
			return nil, err
		}
		ret[id] = v
	}
	return ret, nil
}
