package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple
type Color struct {
	R, G, B uint8
}

var (
	Black  = Color{0, 0, 0}
	White  = Color{255, 255, 255}
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	Blue   = Color{0, 0, 255}
	Yellow = Color{255, 255, 0}
)

// ParseHex parses "#RRGGBB" (either case).
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	for _, c := range s[1:] {
		if !isHexDigit(c) {
			return Color{}, fmt.Errorf("color %q: bad hex digit %q", s, c)
		}
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{r, g, b}, nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Hex returns the wire form "#RRGGBB" with upper-case digits
func (c Color) Hex() string {
	return strings.ToUpper(c.Colorful().Hex())
}

// Digits returns "rrggbb" without the leading '#', as WLED expects it
func (c Color) Digits() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// Colorful converts to a go-colorful color for blending and display
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful clamps and converts back to 8 bits
func FromColorful(cf colorful.Color) Color {
	r, g, b := cf.Clamped().RGB255()
	return Color{r, g, b}
}

// Scale dims the color by brightness (0-255). A lit channel never
// drops to zero while brightness is non-zero.
func (c Color) Scale(brightness uint8) Color {
	return Color{
		R: scale8Video(c.R, brightness),
		G: scale8Video(c.G, brightness),
		B: scale8Video(c.B, brightness),
	}
}

func scale8Video(v, scale uint8) uint8 {
	out := (uint16(v) * uint16(scale)) >> 8
	if v != 0 && scale != 0 {
		out++
	}
	if out > 255 {
		out = 255
	}
	return uint8(out)
}

// IsBlack reports whether all channels are zero
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}
