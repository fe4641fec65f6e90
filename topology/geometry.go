// Package topology maps MIDI notes onto physical LED addresses for a
// configured strip layout.
package topology

import (
	"fmt"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
)

// InvalidTopology tags geometry that violates its invariants
const InvalidTopology ftag.Kind = "INVALID_TOPOLOGY"

// Orientation describes how a directly driven strip runs along the keys
type Orientation int

const (
	LeftToRight Orientation = iota
	RightToLeft
	// StackedLeftToRight folds the strip in half: the first half runs
	// left to right, the second half back underneath it.
	StackedLeftToRight
	StackedRightToLeft
)

var orientationNames = [...]string{
	LeftToRight:        "LeftToRight",
	RightToLeft:        "RightToLeft",
	StackedLeftToRight: "StackedLeftToRight",
	StackedRightToLeft: "StackedRightToLeft",
}

func (o Orientation) String() string {
	if !o.Valid() {
		return "Orientation(" + strconv.Itoa(int(o)) + ")"
	}
	return orientationNames[o]
}

func (o Orientation) Valid() bool {
	return o >= 0 && int(o) < len(orientationNames)
}

// ParseOrientation accepts the symbolic name or the ordinal 0-3
func ParseOrientation(s string) (Orientation, error) {
	for i, name := range orientationNames {
		if s == name {
			return Orientation(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Orientation(n).Valid() {
		return Orientation(n), nil
	}
	return 0, fault.New(fmt.Sprintf("unknown strip orientation %q", s), ftag.With(InvalidTopology))
}

// Connection describes how the segments of a segmented strip are chained
type Connection int

const (
	// ConnectionNone addresses a single segment at the offset
	ConnectionNone Connection = iota
	// ConnectionSerial chains segments end to end
	ConnectionSerial
	// ConnectionParallel interleaves segments stacked above each other
	ConnectionParallel
)

var connectionNames = [...]string{
	ConnectionNone:     "None",
	ConnectionSerial:   "Serial",
	ConnectionParallel: "Parallel",
}

func (c Connection) String() string {
	if !c.Valid() {
		return "Connection(" + strconv.Itoa(int(c)) + ")"
	}
	return connectionNames[c]
}

func (c Connection) Valid() bool {
	return c >= 0 && int(c) < len(connectionNames)
}

// ParseConnection accepts the symbolic name or the ordinal 0-2
func ParseConnection(s string) (Connection, error) {
	for i, name := range connectionNames {
		if s == name {
			return Connection(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Connection(n).Valid() {
		return Connection(n), nil
	}
	return 0, fault.New(fmt.Sprintf("unknown segment connection method %q", s), ftag.With(InvalidTopology))
}

// Geometry is one configured strip. Directly driven strips use TotalLeds
// and Orientation; a strip with LedsPerSegment > 0 is segmented and is
// addressed through SegmentOffset and Connection instead.
type Geometry struct {
	LedPin       int
	TotalLeds    int
	LedsPerMeter float64
	// Scale is the strip-to-piano length calibration factor
	Scale       float64
	Orientation Orientation

	LedsPerSegment int
	SegmentCount   int
	SegmentOffset  int
	Connection     Connection
}

// Segmented reports whether the strip is addressed by segment
func (g Geometry) Segmented() bool {
	return g.LedsPerSegment > 0
}

// Addressable is the number of LEDs notes can land on
func (g Geometry) Addressable() int {
	if !g.Segmented() {
		return g.TotalLeds
	}
	if g.Connection == ConnectionNone {
		return g.LedsPerSegment
	}
	return g.LedsPerSegment * g.SegmentCount
}

// Segment is a contiguous run addressed by one segment id
type Segment struct {
	ID  int
	Len int
}

// Segments lists the runs a bulk operation has to cover. A direct strip is
// a single run whose id is the strip index.
func (g Geometry) Segments(strip int) []Segment {
	if !g.Segmented() {
		return []Segment{{ID: strip, Len: g.TotalLeds}}
	}
	if g.Connection == ConnectionNone {
		return []Segment{{ID: g.SegmentOffset, Len: g.LedsPerSegment}}
	}
	out := make([]Segment, g.SegmentCount)
	for i := range out {
		out[i] = Segment{ID: g.SegmentOffset + i, Len: g.LedsPerSegment}
	}
	return out
}

// Validate checks the geometry invariants
func (g Geometry) Validate() error {
	switch {
	case !g.Segmented() && g.TotalLeds <= 0:
		return invalid("totalLeds must be positive, got %d", g.TotalLeds)
	case !(g.Scale > 0):
		return invalid("stripToPianoLengthScale must be positive, got %g", g.Scale)
	case g.LedsPerMeter < 0:
		return invalid("ledsPerMeter must not be negative, got %g", g.LedsPerMeter)
	case !g.Orientation.Valid():
		return invalid("invalid orientation %d", int(g.Orientation))
	}
	if !g.Segmented() {
		return nil
	}
	switch {
	case g.SegmentCount <= 0:
		return invalid("segmentCount must be positive, got %d", g.SegmentCount)
	case g.SegmentOffset < 0:
		return invalid("segmentOffset must not be negative, got %d", g.SegmentOffset)
	case !g.Connection.Valid():
		return invalid("invalid segment connection method %d", int(g.Connection))
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fault.New(fmt.Sprintf(format, args...), ftag.With(InvalidTopology))
}
