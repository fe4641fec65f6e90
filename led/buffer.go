package led

import (
	"slices"
	"sync"

	"piano-leds/color"
	"piano-leds/config"
)

// Buffer is an in-memory framebuffer. It stores what the strips would show,
// brightness already applied, and signals every change.
type Buffer struct {
	mu      sync.Mutex
	layout  Layout
	index   map[int]int
	leds    [][]color.Color
	on      bool
	changed chan struct{}
}

func NewBuffer() *Buffer {
	return &Buffer{
		index:   make(map[int]int),
		changed: make(chan struct{}, 1),
	}
}

// Frame is a copy of the buffer contents
type Frame struct {
	On       bool
	Segments []SegmentFrame
}

type SegmentFrame struct {
	SegmentLayout
	LEDs []color.Color
}

// Configure resizes the buffer to the segments of cfg and blanks it
func (b *Buffer) Configure(cfg *config.Config) error {
	layout := LayoutOf(cfg)

	b.mu.Lock()
	b.layout = layout
	b.index = make(map[int]int, len(layout))
	b.leds = make([][]color.Color, len(layout))
	for i, seg := range layout {
		b.index[seg.ID] = i
		b.leds[i] = make([]color.Color, seg.Len)
	}
	b.mu.Unlock()

	b.notify()
	return nil
}

func (b *Buffer) Initialize() error {
	b.mu.Lock()
	b.on = true
	b.mu.Unlock()
	b.notify()
	return nil
}

func (b *Buffer) Shutdown() error {
	b.mu.Lock()
	b.on = false
	for _, seg := range b.leds {
		clear(seg)
	}
	b.mu.Unlock()
	b.notify()
	return nil
}

// SetPixels stores each pixel. Addresses outside the layout are ignored.
func (b *Buffer) SetPixels(px []Pixel) error {
	b.mu.Lock()
	for _, p := range px {
		if seg := b.segment(p.Segment); p.Led >= 0 && p.Led < len(seg) {
			seg[p.Led] = p.Color.Scale(p.Brightness)
		}
	}
	b.mu.Unlock()
	b.notify()
	return nil
}

// BulkSet fills the part of r that lies inside the segment
func (b *Buffer) BulkSet(r Range, c color.Color, brightness uint8) error {
	scaled := c.Scale(brightness)

	b.mu.Lock()
	seg := b.segment(r.Segment)
	for i := max(r.Start, 0); i < min(r.End, len(seg)); i++ {
		seg[i] = scaled
	}
	b.mu.Unlock()
	b.notify()
	return nil
}

// At returns the stored color of one LED, black when out of range
func (b *Buffer) At(segment, led int) color.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seg := b.segment(segment); led >= 0 && led < len(seg) {
		return seg[led]
	}
	return color.Black
}

// Snapshot copies the current frame
func (b *Buffer) Snapshot() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := Frame{On: b.on, Segments: make([]SegmentFrame, len(b.layout))}
	for i, seg := range b.layout {
		f.Segments[i] = SegmentFrame{SegmentLayout: seg, LEDs: slices.Clone(b.leds[i])}
	}
	return f
}

// Changed receives after any update. Bursts coalesce into one signal.
func (b *Buffer) Changed() <-chan struct{} {
	return b.changed
}

// segment must be called with mu held
func (b *Buffer) segment(id int) []color.Color {
	i, ok := b.index[id]
	if !ok {
		return nil
	}
	return b.leds[i]
}

func (b *Buffer) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
