// Package config holds the canonical LED configuration and the daemon
// settings it is loaded under.
package config

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"piano-leds/color"
	"piano-leds/gradient"
	"piano-leds/topology"
)

// InvalidConfig tags a configuration rejected at apply time
const InvalidConfig ftag.Kind = "INVALID_CONFIG"

const (
	MaxStrips      = 8
	MaxPaletteSize = 16

	// VelocityRange is the gradient upper bound for velocity coloring
	VelocityRange = 128
)

// Layout selects what drives the gradient position
type Layout int

const (
	// VelocityBased colors quieter notes closer to the first palette entry
	VelocityBased Layout = iota
	// NoteBased colors lower notes closer to the first palette entry
	NoteBased
)

func (l Layout) String() string {
	switch l {
	case VelocityBased:
		return "VelocityBased"
	case NoteBased:
		return "NoteBased"
	}
	return "Layout(" + strconv.Itoa(int(l)) + ")"
}

func (l Layout) Valid() bool {
	return l == VelocityBased || l == NoteBased
}

// ParseLayout accepts the symbolic names only
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "VelocityBased":
		return VelocityBased, nil
	case "NoteBased":
		return NoteBased, nil
	}
	return 0, fmt.Errorf("unknown color layout %q", s)
}

// Config is the LED configuration. One instance is live at a time and it
// is replaced wholesale, never edited in place while in use.
type Config struct {
	Strips            []topology.Geometry
	Palette           gradient.Palette
	Layout            Layout
	Curve             gradient.Curve
	NoteOffColor      color.Color
	NoteOffBrightness uint8
	// Channels are 1-based MIDI channels
	Channels  []int
	LowestKey string
}

// Default returns the compiled-in configuration used when nothing has been
// persisted yet.
func Default() *Config {
	return &Config{
		Strips: []topology.Geometry{
			{
				LedPin:       2,
				TotalLeds:    148,
				LedsPerMeter: 148,
				Scale:        1.68,
				Orientation:  topology.StackedLeftToRight,
			},
		},
		Palette:           gradient.Palette{color.Blue, color.Red},
		Layout:            VelocityBased,
		Curve:             gradient.Curve{Kind: gradient.Linear},
		NoteOffColor:      color.White,
		NoteOffBrightness: 6,
		Channels:          []int{1, 2},
		LowestKey:         "A0",
	}
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	out := *c
	out.Strips = slices.Clone(c.Strips)
	out.Palette = slices.Clone(c.Palette)
	out.Channels = slices.Clone(c.Channels)
	return &out
}

// Equal compares every field
func (c *Config) Equal(o *Config) bool {
	if c == nil || o == nil {
		return c == o
	}
	return slices.Equal(c.Strips, o.Strips) &&
		c.Palette.Equal(o.Palette) &&
		c.Layout == o.Layout &&
		c.Curve == o.Curve &&
		c.NoteOffColor == o.NoteOffColor &&
		c.NoteOffBrightness == o.NoteOffBrightness &&
		slices.Equal(c.Channels, o.Channels) &&
		c.LowestKey == o.LowestKey
}

// ListensOn reports whether the 1-based channel is in the listen set
func (c *Config) ListensOn(channel int) bool {
	return slices.Contains(c.Channels, channel)
}

// LowestNote returns the MIDI number of LowestKey
func (c *Config) LowestNote() (int, error) {
	return NoteToMidi(c.LowestKey)
}

// Validate checks everything that would otherwise fail while rendering.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fault.Wrap(err, ftag.With(InvalidConfig), fmsg.With("invalid configuration"))
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Strips) == 0 {
		return fault.New("no strips configured")
	}
	if len(c.Strips) > MaxStrips {
		return fault.New(fmt.Sprintf("%d strips configured, at most %d supported", len(c.Strips), MaxStrips))
	}
	for i, s := range c.Strips {
		if err := s.Validate(); err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("strip[%d]", i)))
		}
	}

	if len(c.Palette) > MaxPaletteSize {
		return fault.New(fmt.Sprintf("palette has %d colors, at most %d supported", len(c.Palette), MaxPaletteSize))
	}
	if !c.Layout.Valid() {
		return fault.New(fmt.Sprintf("invalid color layout %d", int(c.Layout)))
	}
	if !c.Curve.Kind.Valid() {
		return fault.New(fmt.Sprintf("invalid color curve %d", int(c.Curve.Kind)))
	}
	switch c.Layout {
	case VelocityBased:
		if err := gradient.Validate(VelocityRange, c.Palette); err != nil {
			return err
		}
	case NoteBased:
		for i, s := range c.Strips {
			if err := gradient.Validate(float64(s.Addressable()), c.Palette); err != nil {
				return fault.Wrap(err, fmsg.With(fmt.Sprintf("strip[%d]", i)))
			}
		}
	}

	if len(c.Channels) == 0 {
		return fault.New("no MIDI channels to listen on")
	}
	for _, ch := range c.Channels {
		if ch < 1 || ch > 16 {
			return fault.New(fmt.Sprintf("MIDI channel %d out of range 1-16", ch))
		}
	}

	if _, err := NoteToMidi(c.LowestKey); err != nil {
		return err
	}
	return nil
}
