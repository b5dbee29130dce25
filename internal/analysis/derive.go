package analysis

import "errors"

// ErrDegenerateRange reports that action narrowing emptied a range.
// The returned range is already widened to the default; callers may log
// the error but never need to fail on it.
var ErrDegenerateRange = errors.New("derived range is empty, widened to default")

// Position is a coarse table position
type Position int

const (
	Early Position = iota
	Middle
	Cutoff
	Button
	SmallBlind
	BigBlind
)

// String returns the position name
func (p Position) String() string {
	switch p {
	case Early:
		return "early"
	case Middle:
		return "middle"
	case Cutoff:
		return "cutoff"
	case Button:
		return "button"
	case SmallBlind:
		return "small blind"
	case BigBlind:
		return "big blind"
	default:
		return "unknown"
	}
}

// offset is the signed adjustment to base range width per position.
// Small offsets rather than hard ceilings: a loose player in early
// position still plays loose, just slightly less so.
func (p Position) offset() float64 {
	switch p {
	case Early:
		return -0.08
	case Middle:
		return -0.03
	case Cutoff:
		return 0.04
	case Button:
		return 0.08
	case SmallBlind:
		return -0.02
	case BigBlind:
		return 0.02
	default:
		return 0
	}
}

// ObservedAction is an opponent action relevant to range narrowing
type ObservedAction int

const (
	ObservedCall ObservedAction = iota
	ObservedRaise
	ObservedAllIn
)

// narrowFactor shrinks the included fraction per observed action.
// A raise narrows more than a call; an all-in narrows most.
func (a ObservedAction) narrowFactor() float64 {
	switch a {
	case ObservedCall:
		return 0.85
	case ObservedRaise:
		return 0.55
	case ObservedAllIn:
		return 0.35
	default:
		return 1
	}
}

func (a ObservedAction) aggressive() bool {
	return a == ObservedRaise || a == ObservedAllIn
}

// defaultFraction is the uniform fallback width for a degenerate range
const defaultFraction = 0.5

// Derive computes an opponent's range from a looseness parameter in [0,1],
// position, and the actions they have taken since the last computation.
// Always recomputed from scratch; never mutated incrementally.
//
// The range is never empty: contradictory action history that would empty
// it widens back to the default width and reports ErrDegenerateRange.
func Derive(looseness float64, position Position, actions []ObservedAction) (*Range, error) {
	if looseness < 0 {
		looseness = 0
	}
	if looseness > 1 {
		looseness = 1
	}

	// Base width grows monotonically with looseness
	fraction := 0.10 + 0.65*looseness
	fraction += position.offset()

	narrowed := false
	for _, a := range actions {
		fraction *= a.narrowFactor()
		if a.aggressive() {
			narrowed = true
		}
	}

	if fraction > 0.95 {
		fraction = 0.95
	}

	r := buildRange(fraction, narrowed)
	if r.Size() == 0 {
		return buildRange(defaultFraction, false), ErrDegenerateRange
	}
	return r, nil
}

// Default returns the uniform fallback range
func Default() *Range {
	return buildRange(defaultFraction, false)
}

// buildRange includes labels strongest-first until the target fraction of
// all combos is covered. The boundary label gets a partial weight so that
// range width is continuous (and strictly monotonic) in the fraction.
// When narrowed, weights taper from 1 at the top toward 0.5 at the
// boundary, re-weighting the range toward stronger holdings.
func buildRange(fraction float64, narrowed bool) *Range {
	target := fraction * totalCombos
	weights := make(map[Label]float64)

	covered := 0.0
	for _, l := range allLabels {
		if covered >= target {
			break
		}
		combos := float64(l.Combos())
		w := 1.0
		if covered+combos > target {
			w = (target - covered) / combos
		}
		if narrowed {
			// Taper: stronger portion of the range keeps full weight
			w *= 0.5 + 0.5*(1-covered/target)
		}
		if w >= minWeight {
			weights[l] = w
		}
		covered += combos
	}

	return newRange(weights)
}
