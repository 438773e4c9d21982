package projection

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// default codomain, a dark-to-bright ramp
var defaultPalette = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// Color maps scalar values onto a color palette. String values are taken as
// colors verbatim; float values are binned into the palette over the value
// domain (fixed via WithColorDomain, or measured from the current values).
type Color struct {
	Base
	palette     []string
	domainMin   float64
	domainMax   float64
	fixedDomain bool
}

type ColorOption func(*Color)

func WithPalette(palette []string) ColorOption {
	return func(c *Color) {
		if len(palette) > 0 {
			c.palette = palette
		}
	}
}

func WithColorDomain(min, max float64) ColorOption {
	return func(c *Color) {
		c.domainMin = min
		c.domainMax = max
		c.fixedDomain = true
	}
}

func NewColor(artifact string, entities map[string]Target, opts ...ColorOption) *Color {
	ret := &Color{
		Base:    newBase(artifact, entities),
		palette: defaultPalette,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Color) Render() error {
	min, max := c.domainMin, c.domainMax
	if !c.fixedDomain {
		min, max = c.measureDomain()
	}
	return c.render(func(value any) (any, error) {
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return c.bin(v, min, max), nil
		case int:
			return c.bin(float64(v), min, max), nil
		default:
			return nil, fmt.Errorf("unsupported value type %T", value)
		}
	})
}

func (c *Color) PreviousState() (Values, error) {
	return c.previousState()
}

func (c *Color) measureDomain() (float64, float64) {
	scalars := []float64{}
	for _, v := range c.values {
		switch f := v.(type) {
		case float64:
			scalars = append(scalars, f)
		case int:
			scalars = append(scalars, float64(f))
		}
	}
	if len(scalars) == 0 {
		return 0, 0
	}
	return floats.Min(scalars), floats.Max(scalars)
}

func (c *Color) bin(v, min, max float64) string {
	if max <= min {
		return c.palette[0]
	}
	idx := int(float64(len(c.palette)) * (v - min) / (max - min))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.palette) {
		idx = len(c.palette) - 1
	}
	return c.palette[idx]
}

var _ Projection = &Color{}
