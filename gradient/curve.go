package gradient

import (
	"fmt"
	"math"
	"strconv"
)

// CurveKind selects the shaping function applied to the normalized value
type CurveKind int

const (
	Linear CurveKind = iota
	Quadratic
	SquareRoot
	Logarithmic
	Cubic
	Exponential
	HardTransition
)

var curveNames = [...]string{
	Linear:         "Linear",
	Quadratic:      "Quadratic",
	SquareRoot:     "SquareRoot",
	Logarithmic:    "Logarithmic",
	Cubic:          "Cubic",
	Exponential:    "Exponential",
	HardTransition: "HardTransition",
}

func (k CurveKind) String() string {
	if k < 0 || int(k) >= len(curveNames) {
		return "CurveKind(" + strconv.Itoa(int(k)) + ")"
	}
	return curveNames[k]
}

// Valid reports whether k is one of the declared kinds
func (k CurveKind) Valid() bool {
	return k >= 0 && int(k) < len(curveNames)
}

// ParseCurveKind accepts the symbolic name or its ordinal
func ParseCurveKind(s string) (CurveKind, error) {
	for i, name := range curveNames {
		if s == name {
			return CurveKind(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && CurveKind(n).Valid() {
		return CurveKind(n), nil
	}
	return 0, fmt.Errorf("unknown color curve %q", s)
}

// Curve is a shaping function. Threshold is only read by HardTransition.
type Curve struct {
	Kind      CurveKind
	Threshold float64
}

// Apply shapes x. The result is not clamped.
func (c Curve) Apply(x float64) float64 {
	switch c.Kind {
	case Linear:
		return x
	case Quadratic:
		return x * x
	case SquareRoot:
		return math.Sqrt(x)
	case Logarithmic:
		return math.Log10(x) + 1
	case Cubic:
		return x * x * x
	case Exponential:
		return math.Pow(2, x) - 1
	case HardTransition:
		if x < c.Threshold {
			return 0
		}
		return 1
	}
	return x
}

func (c Curve) String() string {
	if c.Kind == HardTransition {
		return fmt.Sprintf("%s(%g)", c.Kind, c.Threshold)
	}
	return c.Kind.String()
}
