package topology

import (
	"errors"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

const a0 = 21

func direct(total int, o Orientation) Geometry {
	return Geometry{TotalLeds: total, Scale: 1, Orientation: o}
}

func mustResolve(t *testing.T, note int, g Geometry) Resolution {
	t.Helper()
	r, err := Resolve(note, a0, 0, g)
	if err != nil {
		t.Fatalf("Resolve(%d, %+v): %v", note, g, err)
	}
	return r
}

func TestMirrorSymmetry(t *testing.T) {
	for _, total := range []int{1, 2, 88, 176} {
		for _, scale := range []float64{0.5, 1, 2} {
			ltr := Geometry{TotalLeds: total, Scale: scale, Orientation: LeftToRight}
			rtl := ltr
			rtl.Orientation = RightToLeft
			for note := a0; note <= 108; note++ {
				l, errL := Resolve(note, a0, 0, ltr)
				r, errR := Resolve(note, a0, 0, rtl)
				if (errL == nil) != (errR == nil) {
					t.Fatalf("note %d total %d scale %v: errors differ: %v / %v", note, total, scale, errL, errR)
				}
				if errL != nil {
					continue
				}
				if r.Led != total-1-l.Led {
					t.Fatalf("note %d total %d scale %v: rtl %d, ltr %d", note, total, scale, r.Led, l.Led)
				}
			}
		}
	}
}

func TestRawRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		offset int
		scale  float64
		want   int
	}{
		{0, 0.5, 0},
		{1, 0.5, 1},
		{3, 0.5, 2},
		{5, 1.5, 8},
		{-1, 0.5, -1},
	}
	for _, tt := range tests {
		if got := Raw(a0+tt.offset, a0, tt.scale); got != tt.want {
			t.Errorf("Raw(+%d, %v) = %d, want %d", tt.offset, tt.scale, got, tt.want)
		}
	}
}

func TestStackedFold(t *testing.T) {
	g := direct(10, StackedLeftToRight)
	want := []int{0, 9, 1, 8, 2, 7, 3, 6, 4, 5}
	for raw, w := range want {
		if got := mustResolve(t, a0+raw, g).Led; got != w {
			t.Errorf("raw %d: led %d, want %d", raw, got, w)
		}
	}
}

func TestStackedRightToLeftIsMirroredFold(t *testing.T) {
	g := direct(10, StackedRightToLeft)
	want := []int{5, 4, 6, 3, 7, 2, 8, 1, 9, 0}
	for raw, w := range want {
		if got := mustResolve(t, a0+raw, g).Led; got != w {
			t.Errorf("raw %d: led %d, want %d", raw, got, w)
		}
	}
}

func TestDirectOrientationsAreBijective(t *testing.T) {
	for o := LeftToRight; o <= StackedRightToLeft; o++ {
		for _, total := range []int{1, 7, 10, 148} {
			g := direct(total, o)
			seen := make(map[int]bool, total)
			for raw := 0; raw < total; raw++ {
				r := mustResolve(t, a0+raw, g)
				if r.Led < 0 || r.Led >= total {
					t.Fatalf("%s total %d raw %d: led %d out of bounds", o, total, raw, r.Led)
				}
				if seen[r.Led] {
					t.Fatalf("%s total %d: led %d hit twice", o, total, r.Led)
				}
				seen[r.Led] = true
			}
		}
	}
}

func TestDirectUsesStripIndexAsSegment(t *testing.T) {
	r, err := Resolve(a0+3, a0, 4, direct(10, LeftToRight))
	if err != nil {
		t.Fatal(err)
	}
	if r.Address != (Address{Segment: 4, Led: 3}) || r.Raw != 3 {
		t.Fatalf("got %+v", r)
	}
}

func TestSegmented(t *testing.T) {
	seg := func(c Connection) Geometry {
		return Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 3, SegmentOffset: 2, Connection: c}
	}
	tests := []struct {
		name string
		g    Geometry
		raw  int
		want Address
	}{
		{"none start", seg(ConnectionNone), 0, Address{2, 0}},
		{"none end", seg(ConnectionNone), 9, Address{2, 9}},
		{"serial lowest note", seg(ConnectionSerial), 0, Address{2, 0}},
		{"serial first segment", seg(ConnectionSerial), 9, Address{2, 9}},
		{"serial second segment", seg(ConnectionSerial), 10, Address{3, 0}},
		{"serial wraps", seg(ConnectionSerial), 25, Address{4, 5}},
		{"parallel lowest note", seg(ConnectionParallel), 0, Address{2, 0}},
		{"parallel interleaves", seg(ConnectionParallel), 25, Address{3, 8}},
		{"parallel last", seg(ConnectionParallel), 29, Address{4, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustResolve(t, a0+tt.raw, tt.g)
			if r.Address != tt.want {
				t.Fatalf("raw %d: got %+v, want %+v", tt.raw, r.Address, tt.want)
			}
		})
	}
}

func TestSegmentedIgnoresOrientation(t *testing.T) {
	g := Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 2, Connection: ConnectionSerial, Orientation: RightToLeft}
	if r := mustResolve(t, a0+3, g); r.Address != (Address{0, 3}) {
		t.Fatalf("got %+v", r.Address)
	}
}

func TestOutOfRangeIsDropped(t *testing.T) {
	tests := []struct {
		name string
		note int
		g    Geometry
	}{
		{"below lowest key", a0 - 1, direct(10, LeftToRight)},
		{"past direct strip", a0 + 10, direct(10, RightToLeft)},
		{"past stacked strip", a0 + 10, direct(10, StackedLeftToRight)},
		{"past single segment", a0 + 10, Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 3}},
		{"past serial chain", a0 + 30, Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 3, Connection: ConnectionSerial}},
		{"past parallel chain", a0 + 30, Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 3, Connection: ConnectionParallel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.note, a0, 0, tt.g)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
	}{
		{"no leds", Geometry{Scale: 1}},
		{"negative leds", Geometry{TotalLeds: -1, Scale: 1}},
		{"zero scale", Geometry{TotalLeds: 10}},
		{"negative density", Geometry{TotalLeds: 10, Scale: 1, LedsPerMeter: -1}},
		{"unknown orientation", Geometry{TotalLeds: 10, Scale: 1, Orientation: 4}},
		{"no segments", Geometry{Scale: 1, LedsPerSegment: 10}},
		{"negative offset", Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 1, SegmentOffset: -1}},
		{"unknown connection", Geometry{Scale: 1, LedsPerSegment: 10, SegmentCount: 1, Connection: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if ftag.Get(err) != InvalidTopology {
				t.Fatalf("tag = %q", ftag.Get(err))
			}
			if _, err := Resolve(a0, a0, 0, tt.g); ftag.Get(err) != InvalidTopology {
				t.Fatalf("Resolve tag = %q", ftag.Get(err))
			}
		})
	}
	if err := direct(1, StackedRightToLeft).Validate(); err != nil {
		t.Fatalf("valid geometry rejected: %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	for o := LeftToRight; o <= StackedRightToLeft; o++ {
		if got, err := ParseOrientation(o.String()); err != nil || got != o {
			t.Errorf("ParseOrientation(%s) = %v, %v", o, got, err)
		}
	}
	if got, err := ParseOrientation("3"); err != nil || got != StackedRightToLeft {
		t.Errorf("numeric orientation = %v, %v", got, err)
	}
	for _, bad := range []string{"", "4", "-1", "leftToRight"} {
		if _, err := ParseOrientation(bad); ftag.Get(err) != InvalidTopology {
			t.Errorf("ParseOrientation(%q): expected %s, got %v", bad, InvalidTopology, err)
		}
	}

	for c := ConnectionNone; c <= ConnectionParallel; c++ {
		if got, err := ParseConnection(c.String()); err != nil || got != c {
			t.Errorf("ParseConnection(%s) = %v, %v", c, got, err)
		}
	}
	if _, err := ParseConnection("Daisy"); err == nil {
		t.Error("expected error for unknown connection")
	}
}

func TestSegments(t *testing.T) {
	if s := direct(20, LeftToRight).Segments(3); len(s) != 1 || s[0] != (Segment{ID: 3, Len: 20}) {
		t.Errorf("direct = %+v", s)
	}
	g := Geometry{Scale: 1, LedsPerSegment: 5, SegmentCount: 3, SegmentOffset: 1, Connection: ConnectionParallel}
	s := g.Segments(0)
	if len(s) != 3 || s[0].ID != 1 || s[2].ID != 3 || s[1].Len != 5 {
		t.Errorf("parallel = %+v", s)
	}
	g.Connection = ConnectionNone
	if s := g.Segments(0); len(s) != 1 || s[0].ID != 1 {
		t.Errorf("none = %+v", s)
	}
}
