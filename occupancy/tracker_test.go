package occupancy

import (
	"testing"

	"piano-leds/topology"
)

var led5 = topology.Address{Segment: 0, Led: 5}

func TestOverlappingNotesEmitOnceEachWay(t *testing.T) {
	for _, n := range []int{1, 2, 5, 16} {
		tr := New(1)
		var on, off int
		for range n {
			if tr.NoteOn(0, led5) {
				on++
			}
		}
		if got := tr.Count(0, led5); got != n {
			t.Fatalf("count after %d note-ons = %d", n, got)
		}
		for range n {
			if tr.NoteOff(0, led5) {
				off++
			}
		}
		if on != 1 || off != 1 {
			t.Errorf("n=%d: %d on, %d off emissions, want 1 and 1", n, on, off)
		}
		if tr.Count(0, led5) != 0 || tr.Held(0) != 0 {
			t.Errorf("n=%d: count %d held %d after release", n, tr.Count(0, led5), tr.Held(0))
		}
	}
}

func TestInterleavedAddresses(t *testing.T) {
	tr := New(1)
	led6 := topology.Address{Led: 6}
	steps := []struct {
		on   bool
		addr topology.Address
		want bool
	}{
		{true, led5, true},
		{true, led6, true},
		{true, led5, false},
		{false, led6, true},
		{false, led5, false},
		{true, led6, true},
		{false, led5, true},
		{false, led6, true},
	}
	for i, s := range steps {
		var got bool
		if s.on {
			got = tr.NoteOn(0, s.addr)
		} else {
			got = tr.NoteOff(0, s.addr)
		}
		if got != s.want {
			t.Fatalf("step %d: got %v, want %v", i, got, s.want)
		}
	}
	if tr.Held(0) != 0 {
		t.Fatalf("held %d after all releases", tr.Held(0))
	}
}

func TestUnmatchedNoteOffIsNoop(t *testing.T) {
	tr := New(2)
	if tr.NoteOff(0, led5) {
		t.Fatal("release without hold reported a change")
	}
	if tr.Count(0, led5) != 0 {
		t.Fatalf("count went to %d", tr.Count(0, led5))
	}

	tr.NoteOn(0, led5)
	tr.NoteOff(0, led5)
	if tr.NoteOff(0, led5) {
		t.Fatal("duplicate release reported a change")
	}
	if !tr.NoteOn(0, led5) {
		t.Fatal("hold after full release should be first holder again")
	}
}

func TestAllNotesOffIsStripScopedAndIdempotent(t *testing.T) {
	tr := New(2)
	other := topology.Address{Segment: 1, Led: 5}
	tr.NoteOn(0, led5)
	tr.NoteOn(0, led5)
	tr.NoteOn(0, topology.Address{Led: 6})
	tr.NoteOn(1, other)

	for range 3 {
		tr.AllNotesOff(0)
		if tr.Held(0) != 0 {
			t.Fatalf("strip 0 still holds %d", tr.Held(0))
		}
	}
	if tr.Count(1, other) != 1 {
		t.Fatalf("strip 1 was touched: %d", tr.Count(1, other))
	}
	if tr.NoteOff(0, led5) {
		t.Fatal("release after all-notes-off reported a change")
	}
}

func TestSegmentsAreDistinctAddresses(t *testing.T) {
	tr := New(1)
	a := topology.Address{Segment: 0, Led: 3}
	b := topology.Address{Segment: 1, Led: 3}
	if !tr.NoteOn(0, a) || !tr.NoteOn(0, b) {
		t.Fatal("distinct segments should each get a first holder")
	}
}

func TestOutOfRangeStripIsIgnored(t *testing.T) {
	tr := New(1)
	if tr.NoteOn(3, led5) || tr.NoteOff(-1, led5) {
		t.Fatal("unknown strip reported a change")
	}
	tr.AllNotesOff(7)
	if tr.Count(3, led5) != 0 || tr.Held(3) != 0 {
		t.Fatal("unknown strip has counts")
	}
}

func TestResetResizes(t *testing.T) {
	tr := New(1)
	tr.NoteOn(0, led5)
	tr.Reset(3)
	if tr.Strips() != 3 || tr.Held(0) != 0 {
		t.Fatalf("strips %d held %d", tr.Strips(), tr.Held(0))
	}
	if !tr.NoteOn(2, led5) {
		t.Fatal("new strip not usable")
	}
}
