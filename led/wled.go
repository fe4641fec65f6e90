package led

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"piano-leds/color"
	"piano-leds/debug"
)

// WLED writes WLED JSON API state updates, one object per line, to a
// controller listening on a serial port.
type WLED struct {
	mu sync.Mutex
	w  io.Writer
	// OnBrightness is the master brightness sent by Initialize
	OnBrightness uint8
}

func NewWLED(w io.Writer) *WLED {
	return &WLED{w: w, OnBrightness: 128}
}

type wledState struct {
	On  *bool         `json:"on,omitempty"`
	Bri *uint8        `json:"bri,omitempty"`
	Seg []wledSegment `json:"seg,omitempty"`
}

type wledSegment struct {
	ID  int   `json:"id"`
	I   []any `json:"i"`
	Bri uint8 `json:"bri"`
}

func (s *WLED) Initialize() error {
	on := true
	bri := s.OnBrightness
	return s.send(wledState{On: &on, Bri: &bri})
}

func (s *WLED) Shutdown() error {
	off := false
	return s.send(wledState{On: &off})
}

// SetPixels sends every pixel in one update, one segment entry each
func (s *WLED) SetPixels(px []Pixel) error {
	if len(px) == 0 {
		return nil
	}
	st := wledState{Seg: make([]wledSegment, len(px))}
	for i, p := range px {
		st.Seg[i] = wledSegment{ID: p.Segment, I: []any{p.Led, p.Color.Digits()}, Bri: p.Brightness}
	}
	return s.send(st)
}

func (s *WLED) BulkSet(r Range, c color.Color, brightness uint8) error {
	// []int, not []uint8, which would encode as base64
	rgb := []int{int(c.R), int(c.G), int(c.B)}
	return s.send(wledState{Seg: []wledSegment{{
		ID:  r.Segment,
		I:   []any{r.Start, r.End, rgb},
		Bri: brightness,
	}}})
}

func (s *WLED) send(st wledState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode WLED state"))
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fault.Wrap(err, fmsg.With("write WLED state"))
	}
	debug.LogEvery(50, "led", "wled %s", data[:len(data)-1])
	return nil
}
