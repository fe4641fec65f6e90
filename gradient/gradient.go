// Package gradient turns a scalar (velocity or key position) into a color
// interpolated across a palette.
package gradient

import (
	"math"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"piano-leds/color"
)

// InvalidGradient tags degenerate bounds or palettes
const InvalidGradient ftag.Kind = "INVALID_GRADIENT"

// Palette is an ordered list of colors. Index space [0, len-1) is split
// into len-1 linear segments.
type Palette []color.Color

// Last returns the final color, or black for an empty palette
func (p Palette) Last() color.Color {
	if len(p) == 0 {
		return color.Black
	}
	return p[len(p)-1]
}

// Equal compares element-wise
func (p Palette) Equal(o Palette) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Validate checks the inputs Map would reject.
func Validate(upperBound float64, p Palette) error {
	if len(p) < 2 {
		return fault.New("palette needs at least two colors", ftag.With(InvalidGradient))
	}
	if !(upperBound > 1) {
		return fault.New("upper bound must be greater than 1", ftag.With(InvalidGradient))
	}
	return nil
}

// Map normalizes value into [0,1] as (value-1)/(upperBound-1), shapes it
// with curve, clamps, and linearly interpolates the bracketing palette
// colors. Channels are truncated, not rounded.
func Map(value, upperBound float64, curve Curve, p Palette) (color.Color, error) {
	if err := Validate(upperBound, p); err != nil {
		return color.Color{}, fault.Wrap(err, fmsg.With("gradient map"))
	}

	t := curve.Apply((value - 1) / (upperBound - 1))
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))

	segments := len(p) - 1
	scaled := t * float64(segments)
	index := int(math.Floor(scaled))
	if index >= segments {
		return p[segments], nil
	}
	local := scaled - float64(index)

	start, end := p[index], p[index+1]
	return color.Color{
		R: lerp(start.R, end.R, local),
		G: lerp(start.G, end.G, local),
		B: lerp(start.B, end.B, local),
	}, nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(int(float64(a) + (float64(b)-float64(a))*t))
}

// Sample returns n colors spread evenly across the palette, blended in
// RGB space. Used for legends, not for LED output.
func Sample(p Palette, n int) []color.Color {
	if n <= 0 || len(p) == 0 {
		return nil
	}
	out := make([]color.Color, n)
	if len(p) == 1 || n == 1 {
		for i := range out {
			out[i] = p[0]
		}
		return out
	}
	segments := len(p) - 1
	for i := range out {
		pos := float64(i) / float64(n-1) * float64(segments)
		idx := int(pos)
		if idx >= segments {
			out[i] = p[segments]
			continue
		}
		out[i] = color.FromColorful(p[idx].Colorful().BlendRgb(p[idx+1].Colorful(), pos-float64(idx)))
	}
	return out
}
