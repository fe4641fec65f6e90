// Package occupancy reference-counts the notes holding each resolved LED so
// overlapping notes never switch an LED off early or change its color.
package occupancy

import "piano-leds/topology"

// Tracker holds one occupancy table per strip. The zero value has no strips;
// call Reset before use. Not safe for concurrent use.
type Tracker struct {
	strips []map[topology.Address]int
}

// New returns a tracker sized for n strips
func New(n int) *Tracker {
	t := &Tracker{}
	t.Reset(n)
	return t
}

// Reset drops all counts and resizes to n strips
func (t *Tracker) Reset(n int) {
	t.strips = make([]map[topology.Address]int, n)
	for i := range t.strips {
		t.strips[i] = make(map[topology.Address]int)
	}
}

// Strips returns the number of strips tracked
func (t *Tracker) Strips() int {
	return len(t.strips)
}

// NoteOn adds a holder at addr. It reports true when addr was unheld, which
// is the only case where the LED color should change.
func (t *Tracker) NoteOn(strip int, addr topology.Address) bool {
	table := t.table(strip)
	if table == nil {
		return false
	}
	table[addr]++
	return table[addr] == 1
}

// NoteOff releases one holder at addr. It reports true when the last holder
// left. A release with no matching hold is ignored.
func (t *Tracker) NoteOff(strip int, addr topology.Address) bool {
	table := t.table(strip)
	if table == nil {
		return false
	}
	n, ok := table[addr]
	if !ok || n <= 0 {
		return false
	}
	if n == 1 {
		delete(table, addr)
		return true
	}
	table[addr] = n - 1
	return false
}

// AllNotesOff clears every hold on strip
func (t *Tracker) AllNotesOff(strip int) {
	if table := t.table(strip); table != nil {
		clear(table)
	}
}

// Count returns the number of holders at addr
func (t *Tracker) Count(strip int, addr topology.Address) int {
	return t.table(strip)[addr]
}

// Held returns the number of lit addresses on strip
func (t *Tracker) Held(strip int) int {
	return len(t.table(strip))
}

func (t *Tracker) table(strip int) map[topology.Address]int {
	if strip < 0 || strip >= len(t.strips) {
		return nil
	}
	return t.strips[strip]
}
