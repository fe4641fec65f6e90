// Package protocol implements the line-oriented configuration exchange
// used between peers over a serial link and for the persisted file.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"piano-leds/config"
	"piano-leds/gradient"
)

// Literal lines of the exchange
const (
	RequestLine = "Requesting Config"
	ChangeLine  = "Config change"
	BeginLine   = "Sending Config"
	EndLine     = "End of Config"
)

// Encode writes cfg as a complete Sending Config block.
func Encode(w io.Writer, cfg *config.Config) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	line(BeginLine)
	for i, s := range cfg.Strips {
		line("strip[%d]", i)
		line("ledPin = %d", s.LedPin)
		line("totalLeds = %d", s.TotalLeds)
		line("ledsPerMeter = %s", formatFloat(s.LedsPerMeter))
		line("stripToPianoLengthScale = %s", formatFloat(s.Scale))
		line("stripOrientation = %s", s.Orientation)
		if s.Segmented() {
			line("ledsPerSegment = %d", s.LedsPerSegment)
			line("segmentCount = %d", s.SegmentCount)
			line("segmentOffset = %d", s.SegmentOffset)
			line("segmentConnectionMethod = %s", s.Connection)
		}
	}
	for i, c := range cfg.Palette {
		line("colorPalette[%d] = %s", i, c.Hex())
	}
	line("colorLayout = %s", cfg.Layout)
	line("colorCurve = %s", cfg.Curve.Kind)
	if cfg.Curve.Kind == gradient.HardTransition {
		line("colorCurveThreshold = %s", formatFloat(cfg.Curve.Threshold))
	}
	line("noteOffColor = %s", cfg.NoteOffColor.Hex())
	line("noteOffColorBrightness = %d", cfg.NoteOffBrightness)
	line("midiChannelsToListen = %s", joinInts(cfg.Channels))
	line("lowestKey = %s", cfg.LowestKey)
	line(EndLine)

	if err := bw.Flush(); err != nil {
		return fault.Wrap(err, fmsg.With("write configuration"))
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
