package protocol

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"piano-leds/color"
	"piano-leds/config"
	"piano-leds/gradient"
	"piano-leds/topology"
)

const (
	// ConfigParse tags a transfer that could not be read to its end
	ConfigParse ftag.Kind = "CONFIG_PARSE"
	// ProtocolTimeout tags a transfer that went quiet before End of Config
	ProtocolTimeout ftag.Kind = "PROTOCOL_TIMEOUT"
)

const (
	DefaultQuietTimeout = 1500 * time.Millisecond
	pollInterval        = 10 * time.Millisecond
)

// SkippedLine is a line the decoder could not apply
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

func (s SkippedLine) String() string {
	return fmt.Sprintf("line %d: %s: %q", s.Line, s.Reason, s.Text)
}

// Decoder reads Sending Config blocks. It blocks the caller until End of
// Config arrives or the stream stays silent for QuietTimeout.
type Decoder struct {
	QuietTimeout time.Duration
	// AcceptEOF ends a block successfully at end of input, for files
	AcceptEOF bool

	lines   *lineReader
	skipped []SkippedLine
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		QuietTimeout: DefaultQuietTimeout,
		lines:        newLineReader(r),
	}
}

// Skipped returns the lines the last Decode ignored
func (d *Decoder) Skipped() []SkippedLine {
	return d.skipped
}

// Decode reads one configuration. Malformed lines are skipped, never fatal.
// On timeout or truncation the partially filled configuration is returned
// together with the error; callers must not apply it.
func (d *Decoder) Decode() (*config.Config, error) {
	st := &decodeState{cfg: &config.Config{}, strip: -1}
	d.skipped = nil

	quiet := d.QuietTimeout
	if quiet <= 0 {
		quiet = DefaultQuietTimeout
	}
	lastLine := time.Now()
	n := 0

	for {
		text, ok, err := d.lines.next()
		if !ok {
			if err != nil {
				return st.cfg, d.readFailed(err, n)
			}
			if time.Since(lastLine) >= quiet {
				return st.cfg, fault.New(
					fmt.Sprintf("no End of Config after %d lines", n),
					ftag.With(ProtocolTimeout),
					fmsg.WithDesc("configuration transfer timed out", fmt.Sprintf("The peer went quiet for %v", quiet)),
				)
			}
			time.Sleep(pollInterval)
			continue
		}

		lastLine = time.Now()
		n++
		line := strings.TrimSpace(text)
		switch line {
		case "", BeginLine:
			continue
		case EndLine:
			return st.cfg, nil
		}
		if reason := st.apply(line); reason != "" {
			d.skipped = append(d.skipped, SkippedLine{Line: n, Text: line, Reason: reason})
		}
	}
}

func (d *Decoder) readFailed(err error, lines int) error {
	if errors.Is(err, io.EOF) {
		if d.AcceptEOF && lines > 0 {
			return nil
		}
		return fault.New(
			fmt.Sprintf("input ended after %d lines without End of Config", lines),
			ftag.With(ConfigParse),
		)
	}
	return fault.Wrap(err, ftag.With(ConfigParse), fmsg.With("read configuration"))
}

type decodeState struct {
	cfg   *config.Config
	strip int
}

// apply handles one non-empty line, returning why it was skipped
func (st *decodeState) apply(line string) string {
	if rest, ok := strings.CutPrefix(line, "strip["); ok {
		idx, ok := index(rest)
		if !ok || idx < 0 || idx >= config.MaxStrips {
			st.strip = -1
			return "invalid strip index"
		}
		for len(st.cfg.Strips) <= idx {
			st.cfg.Strips = append(st.cfg.Strips, topology.Geometry{})
		}
		st.strip = idx
		return ""
	}

	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "not a key = value line"
	}
	key := strings.TrimSpace(line[:eq])
	value := strings.TrimSpace(line[eq+1:])

	if rest, ok := strings.CutPrefix(key, "colorPalette["); ok {
		return st.paletteEntry(rest, value)
	}
	if setter, ok := stripFields[key]; ok {
		if st.strip < 0 || st.strip >= len(st.cfg.Strips) {
			return "no strip selected"
		}
		if err := setter(&st.cfg.Strips[st.strip], value); err != nil {
			return err.Error()
		}
		return ""
	}
	if setter, ok := scalarFields[key]; ok {
		if err := setter(st.cfg, value); err != nil {
			return err.Error()
		}
		return ""
	}
	return "unknown key"
}

func (st *decodeState) paletteEntry(rest, value string) string {
	idx, ok := index(rest)
	if !ok || idx < 0 || idx >= config.MaxPaletteSize {
		return "invalid palette index"
	}
	c, err := color.ParseHex(value)
	if err != nil {
		return err.Error()
	}
	for len(st.cfg.Palette) <= idx {
		st.cfg.Palette = append(st.cfg.Palette, color.Black)
	}
	st.cfg.Palette[idx] = c
	return ""
}

// index parses "3]" into 3
func index(rest string) (int, bool) {
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	return n, err == nil
}

var stripFields = map[string]func(g *topology.Geometry, v string) error{
	"ledPin":                  func(g *topology.Geometry, v string) error { return parseInt(v, &g.LedPin) },
	"totalLeds":               func(g *topology.Geometry, v string) error { return parseInt(v, &g.TotalLeds) },
	"ledsPerMeter":            func(g *topology.Geometry, v string) error { return parseFloat(v, &g.LedsPerMeter) },
	"stripToPianoLengthScale": func(g *topology.Geometry, v string) error { return parseFloat(v, &g.Scale) },
	"ledsPerSegment":          func(g *topology.Geometry, v string) error { return parseInt(v, &g.LedsPerSegment) },
	"segmentCount":            func(g *topology.Geometry, v string) error { return parseInt(v, &g.SegmentCount) },
	"segmentOffset":           func(g *topology.Geometry, v string) error { return parseInt(v, &g.SegmentOffset) },
	"stripOrientation": func(g *topology.Geometry, v string) error {
		o, err := topology.ParseOrientation(v)
		if err != nil {
			return err
		}
		g.Orientation = o
		return nil
	},
	"segmentConnectionMethod": func(g *topology.Geometry, v string) error {
		c, err := topology.ParseConnection(v)
		if err != nil {
			return err
		}
		g.Connection = c
		return nil
	},
}

var scalarFields = map[string]func(c *config.Config, v string) error{
	"colorLayout": func(c *config.Config, v string) error {
		l, err := config.ParseLayout(v)
		if err != nil {
			return err
		}
		c.Layout = l
		return nil
	},
	"colorCurve": func(c *config.Config, v string) error {
		k, err := gradient.ParseCurveKind(v)
		if err != nil {
			return err
		}
		c.Curve.Kind = k
		return nil
	},
	"colorCurveThreshold": func(c *config.Config, v string) error {
		return parseFloat(v, &c.Curve.Threshold)
	},
	"noteOffColor": func(c *config.Config, v string) error {
		col, err := color.ParseHex(v)
		if err != nil {
			return err
		}
		c.NoteOffColor = col
		return nil
	},
	"noteOffColorBrightness": func(c *config.Config, v string) error {
		b, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("brightness %q is not 0-255", v)
		}
		c.NoteOffBrightness = uint8(b)
		return nil
	},
	"midiChannelsToListen": func(c *config.Config, v string) error {
		c.Channels = c.Channels[:0]
		var bad []string
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			ch, err := strconv.Atoi(part)
			if err != nil {
				bad = append(bad, part)
				continue
			}
			c.Channels = append(c.Channels, ch)
		}
		if len(bad) > 0 {
			return fmt.Errorf("ignored channels %s", strings.Join(bad, ","))
		}
		return nil
	},
	"lowestKey": func(c *config.Config, v string) error {
		c.LowestKey = v
		return nil
	},
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%q is not an integer", v)
	}
	*dst = n
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", v)
	}
	*dst = f
	return nil
}
