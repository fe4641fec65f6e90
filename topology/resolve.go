package topology

import (
	"errors"
	"math"
)

// ErrOutOfRange is returned when a note lands outside the strip. Callers
// drop the event for that strip.
var ErrOutOfRange = errors.New("note outside strip")

// Address is a resolved LED: the segment (or strip) id and the index
// within it.
type Address struct {
	Segment int
	Led     int
}

// Resolution is the result of resolving a note on one strip. Raw is the
// position along the keyboard before orientation or segmentation, which
// note-based coloring uses.
type Resolution struct {
	Address
	Raw int
}

// Raw returns round((note-lowestKey)*scale), rounding half away from zero
func Raw(note, lowestKey int, scale float64) int {
	return int(math.Round(float64(note-lowestKey) * scale))
}

// Resolve maps a note onto strip's geometry. strip is the index of the
// strip in the configuration and is the segment id of direct strips.
func Resolve(note, lowestKey, strip int, g Geometry) (Resolution, error) {
	if err := g.Validate(); err != nil {
		return Resolution{}, err
	}
	raw := Raw(note, lowestKey, g.Scale)
	if raw < 0 || raw >= g.Addressable() {
		return Resolution{}, ErrOutOfRange
	}

	var (
		addr Address
		err  error
	)
	if g.Segmented() {
		addr, err = resolveSegmented(raw, g)
	} else {
		addr, err = resolveDirect(raw, strip, g)
	}
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Address: addr, Raw: raw}, nil
}

func resolveDirect(raw, strip int, g Geometry) (Address, error) {
	total := g.TotalLeds
	var led int
	switch g.Orientation {
	case LeftToRight:
		led = raw
	case RightToLeft:
		led = total - raw - 1
	case StackedLeftToRight:
		led = fold(raw, total)
	case StackedRightToLeft:
		led = fold(total-raw-1, total)
	default:
		return Address{}, invalid("unhandled orientation %v", g.Orientation)
	}
	if led < 0 || led >= total {
		return Address{}, ErrOutOfRange
	}
	return Address{Segment: strip, Led: led}, nil
}

// fold maps a position onto a strip folded back under itself: even
// positions run from the start, odd ones from the end.
func fold(pos, total int) int {
	if pos%2 == 0 {
		return pos / 2
	}
	return total - pos/2 - 1
}

func resolveSegmented(raw int, g Geometry) (Address, error) {
	var addr Address
	switch g.Connection {
	case ConnectionNone:
		addr = Address{Segment: g.SegmentOffset, Led: raw}
	case ConnectionSerial:
		// raw/ledsPerSegment, not ledsPerSegment/raw: raw 0 stays on the first segment
		addr = Address{
			Segment: g.SegmentOffset + raw/g.LedsPerSegment,
			Led:     raw % g.LedsPerSegment,
		}
	case ConnectionParallel:
		addr = Address{
			Segment: g.SegmentOffset + raw%g.SegmentCount,
			Led:     raw / g.SegmentCount,
		}
	default:
		return Address{}, invalid("unhandled segment connection method %v", g.Connection)
	}
	if addr.Led < 0 || addr.Led >= g.LedsPerSegment {
		return Address{}, ErrOutOfRange
	}
	return addr, nil
}
