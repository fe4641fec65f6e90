package theme

import (
	"github.com/charmbracelet/lipgloss"

	"piano-leds/color"
	"piano-leds/gradient"
)

type Theme struct {
	Palette gradient.Palette
	Symbols Symbols
}

type Symbols struct {
	LedLit rune // ● lit LED
	LedOff rune // · blank LED
	Swatch rune // ■ legend entry
}

// matplotlib plasma at eight stops
var plasma = gradient.Palette{
	{R: 0x0d, G: 0x08, B: 0x87},
	{R: 0x54, G: 0x02, B: 0xa3},
	{R: 0x8b, G: 0x0a, B: 0xa5},
	{R: 0xb9, G: 0x32, B: 0x89},
	{R: 0xdb, G: 0x5c, B: 0x68},
	{R: 0xf4, G: 0x88, B: 0x49},
	{R: 0xfe, G: 0xbc, B: 0x2a},
	{R: 0xf0, G: 0xf9, B: 0x21},
}

// New builds a theme over palette, or over the plasma palette when
// palette has fewer than two colors.
func New(palette gradient.Palette) *Theme {
	if len(palette) < 2 {
		palette = plasma
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			LedLit: '●',
			LedOff: '·',
			Swatch: '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return LED(t.Lookup(norm))
}

// Lookup returns the interpolated palette color for a normalized value
func (t *Theme) Lookup(norm float64) color.Color {
	p := t.Palette
	if norm <= 0 {
		return p[0]
	}
	if norm >= 1 {
		return p[len(p)-1]
	}
	pos := norm * float64(len(p)-1)
	idx := int(pos)
	return color.FromColorful(p[idx].Colorful().BlendRgb(p[idx+1].Colorful(), pos-float64(idx)))
}

// LED converts an LED color for the terminal
func LED(c color.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
