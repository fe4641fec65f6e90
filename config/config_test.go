package config

import (
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"piano-leds/color"
	"piano-leds/gradient"
	"piano-leds/topology"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if n, _ := cfg.LowestNote(); n != 21 {
		t.Fatalf("lowest note = %d, want 21", n)
	}
}

func TestNoteToMidi(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"C-1", 0},
		{"A0", 21},
		{"a0", 21},
		{"C4", 60},
		{"C#4", 61},
		{"C♯4", 61},
		{"Db4", 61},
		{"D♭4", 61},
		{"Bb3", 58},
		{"B3", 59},
		{"G9", 127},
		{" E2 ", 40},
	}
	for _, tt := range tests {
		got, err := NoteToMidi(tt.name)
		if err != nil {
			t.Errorf("NoteToMidi(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NoteToMidi(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	for _, bad := range []string{"", "H2", "C", "C#", "A#x", "G#9", "Cb-1", "4C"} {
		if n, err := NoteToMidi(bad); err == nil {
			t.Errorf("NoteToMidi(%q) = %d, expected error", bad, n)
		}
	}
}

func TestMidiToNoteRoundTrip(t *testing.T) {
	for n := 0; n <= 127; n++ {
		got, err := NoteToMidi(MidiToNote(n))
		if err != nil || got != n {
			t.Fatalf("%d -> %q -> %d, %v", n, MidiToNote(n), got, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no strips", func(c *Config) { c.Strips = nil }},
		{"too many strips", func(c *Config) {
			for len(c.Strips) <= MaxStrips {
				c.Strips = append(c.Strips, c.Strips[0])
			}
		}},
		{"bad geometry", func(c *Config) { c.Strips[0].Scale = 0 }},
		{"one color", func(c *Config) { c.Palette = c.Palette[:1] }},
		{"too many colors", func(c *Config) {
			for len(c.Palette) <= MaxPaletteSize {
				c.Palette = append(c.Palette, color.Green)
			}
		}},
		{"bad layout", func(c *Config) { c.Layout = 5 }},
		{"bad curve", func(c *Config) { c.Curve.Kind = 42 }},
		{"note layout on single led", func(c *Config) {
			c.Layout = NoteBased
			c.Strips[0].TotalLeds = 1
		}},
		{"no channels", func(c *Config) { c.Channels = nil }},
		{"channel zero", func(c *Config) { c.Channels = []int{0} }},
		{"channel 17", func(c *Config) { c.Channels = []int{1, 17} }},
		{"bad lowest key", func(c *Config) { c.LowestKey = "Q0" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if ftag.Get(err) != InvalidConfig {
				t.Fatalf("tag = %q, want %s", ftag.Get(err), InvalidConfig)
			}
		})
	}
}

func TestValidateAcceptsSegmentedNoteLayout(t *testing.T) {
	c := Default()
	c.Layout = NoteBased
	c.Strips = []topology.Geometry{{
		LedsPerSegment: 74, SegmentCount: 2, LedsPerMeter: 60, Scale: 1.68,
		Connection: topology.ConnectionParallel,
	}}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Default()
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone differs")
	}
	b.Strips[0].TotalLeds = 10
	b.Palette[0] = color.Green
	b.Channels[0] = 9
	if a.Strips[0].TotalLeds != 148 || a.Palette[0] != color.Blue || a.Channels[0] != 1 {
		t.Fatal("clone shares storage")
	}
	if a.Equal(b) {
		t.Fatal("Equal missed differences")
	}
}

func TestEqual(t *testing.T) {
	a := Default()
	b := Default()
	b.Curve = gradient.Curve{Kind: gradient.HardTransition, Threshold: 0.3}
	if a.Equal(b) {
		t.Fatal("curve ignored")
	}
	var nilCfg *Config
	if a.Equal(nilCfg) || !nilCfg.Equal(nil) {
		t.Fatal("nil handling")
	}
}

func TestListensOn(t *testing.T) {
	c := Default()
	if !c.ListensOn(1) || !c.ListensOn(2) || c.ListensOn(3) {
		t.Fatalf("listen set %v", c.Channels)
	}
}

func TestLayoutParse(t *testing.T) {
	for _, l := range []Layout{VelocityBased, NoteBased} {
		got, err := ParseLayout(l.String())
		if err != nil || got != l {
			t.Errorf("ParseLayout(%s) = %v, %v", l, got, err)
		}
	}
	if _, err := ParseLayout("1"); err == nil {
		t.Error("layout has no numeric fallback")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if s.QuietTimeoutMs != 1500 || s.Sync.Baud != 115200 {
		t.Fatalf("defaults not applied: %+v", s)
	}

	s.Sync.Port = "/dev/ttyACM0"
	s.DRGB = "192.168.1.50:21324"
	s.MIDI.Preferred = []string{"NU1X"}
	s.Debug = true
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.Sync.Port != "/dev/ttyACM0" || got.DRGB != s.DRGB || !got.Debug ||
		len(got.MIDI.Preferred) != 1 || got.MIDI.Preferred[0] != "NU1X" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.QuietTimeout().Milliseconds() != 1500 {
		t.Fatalf("quiet timeout %v", got.QuietTimeout())
	}
}

func TestSettingsConfigPath(t *testing.T) {
	s := DefaultSettings()
	s.ConfigFile = "/tmp/leds.txt"
	if p, err := s.ConfigPath(); err != nil || p != "/tmp/leds.txt" {
		t.Fatalf("ConfigPath = %q, %v", p, err)
	}
}
