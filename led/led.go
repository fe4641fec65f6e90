// Package led defines the LED output collaborator and its implementations.
package led

import (
	"piano-leds/color"
	"piano-leds/config"
)

// Pixel is one resolved LED update. Strip is the configuration index the
// pixel came from; sinks address by Segment and Led.
type Pixel struct {
	Strip      int
	Segment    int
	Led        int
	Color      color.Color
	Brightness uint8
}

// Range covers LEDs [Start, End) of a segment
type Range struct {
	Strip   int
	Segment int
	Start   int
	End     int
}

// Sink drives LEDs. Implementations only receive resolved addresses.
type Sink interface {
	Initialize() error
	Shutdown() error
	SetPixels(px []Pixel) error
	BulkSet(r Range, c color.Color, brightness uint8) error
}

// Configurer is implemented by sinks that size themselves from the
// configuration. It is called on every apply, before Initialize.
type Configurer interface {
	Configure(cfg *config.Config) error
}

// Layout is the ordered list of segments a configuration drives
type Layout []SegmentLayout

type SegmentLayout struct {
	ID    int
	Strip int
	Len   int
}

// LayoutOf lists the segments of cfg in strip order. A segment id claimed
// by more than one strip keeps the first strip and the longest length.
func LayoutOf(cfg *config.Config) Layout {
	var out Layout
	seen := make(map[int]int)
	for i, s := range cfg.Strips {
		for _, seg := range s.Segments(i) {
			if j, ok := seen[seg.ID]; ok {
				out[j].Len = max(out[j].Len, seg.Len)
				continue
			}
			seen[seg.ID] = len(out)
			out = append(out, SegmentLayout{ID: seg.ID, Strip: i, Len: seg.Len})
		}
	}
	return out
}

// Total is the number of LEDs across all segments
func (l Layout) Total() int {
	n := 0
	for _, s := range l {
		n += s.Len
	}
	return n
}
