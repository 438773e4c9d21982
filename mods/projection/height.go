package projection

import (
	"fmt"
)

// Height extrudes entities by their value, scaled into [floor, ceil] meters
// over the value domain when a codomain is set, value-as-meters otherwise.
type Height struct {
	Base
	floor       float64
	ceil        float64
	domainMin   float64
	domainMax   float64
	hasCodomain bool
}

type HeightOption func(*Height)

// WithHeightCodomain linearly maps the value domain [domainMin, domainMax]
// onto extrusion heights [floor, ceil].
func WithHeightCodomain(domainMin, domainMax, floor, ceil float64) HeightOption {
	return func(h *Height) {
		h.domainMin = domainMin
		h.domainMax = domainMax
		h.floor = floor
		h.ceil = ceil
		h.hasCodomain = true
	}
}

func NewHeight(artifact string, entities map[string]Target, opts ...HeightOption) *Height {
	ret := &Height{
		Base: newBase(artifact, entities),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (h *Height) Render() error {
	return h.render(func(value any) (any, error) {
		var v float64
		switch f := value.(type) {
		case float64:
			v = f
		case int:
			v = float64(f)
		default:
			return nil, fmt.Errorf("unsupported value type %T", value)
		}
		if !h.hasCodomain {
			return v, nil
		}
		if h.domainMax <= h.domainMin {
			return h.floor, nil
		}
		ratio := (v - h.domainMin) / (h.domainMax - h.domainMin)
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		return h.floor + ratio*(h.ceil-h.floor), nil
	})
}

func (h *Height) PreviousState() (Values, error) {
	return h.previousState()
}

var _ Projection = &Height{}
