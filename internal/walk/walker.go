// Package walk implements the stochastic core of walkbg: a seeded random
// walker over a discrete cell grid, the saturating visit-count grid the
// walker marks as it moves, and a bounded ring of its most recent positions.
// All state in this package is deterministic for a fixed seed and free of
// any display-server dependency, which keeps it directly testable.
package walk

import (
	"fmt"
	"math/rand"
	"time"
)

// Point is a position on the walk grid, in cell coordinates.
type Point struct {
	X, Y int
}

// StepSet selects the neighborhood the walker samples a direction from on
// each step.
type StepSet int

const (
	// StepOrthogonal moves in the four cardinal directions.
	StepOrthogonal StepSet = iota
	// StepDiagonal moves in the four cardinal plus four diagonal directions.
	StepDiagonal
)

// Direction offset tables, indexed by StepSet. The first four entries of
// the diagonal table match the orthogonal table so that direction indices
// stay stable across step sets: up, right, down, left, then up-right,
// down-right, down-left, up-left.
var stepOffsets = [][]Point{
	StepOrthogonal: {{0, -1}, {1, 0}, {0, 1}, {-1, 0}},
	StepDiagonal:   {{0, -1}, {1, 0}, {0, 1}, {-1, 0}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}},
}

// String returns the configuration-file spelling of the step set.
func (s StepSet) String() string {
	switch s {
	case StepOrthogonal:
		return "orthogonal"
	case StepDiagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("StepSet(%d)", int(s))
	}
}

// ParseStepSet parses the configuration-file spelling of a step set.
func ParseStepSet(s string) (StepSet, error) {
	switch s {
	case "orthogonal":
		return StepOrthogonal, nil
	case "diagonal":
		return StepDiagonal, nil
	default:
		return 0, fmt.Errorf("unknown step set %q (want \"orthogonal\" or \"diagonal\")", s)
	}
}

// BoundaryPolicy decides what happens when a step would carry the walker
// past a grid edge.
type BoundaryPolicy int

const (
	// BoundaryClamp pins the offending coordinate to the nearest edge cell.
	BoundaryClamp BoundaryPolicy = iota
	// BoundaryReflect bounces the offending coordinate back off the edge.
	BoundaryReflect
	// BoundaryWrap re-enters the grid from the opposite edge.
	BoundaryWrap
)

// String returns the configuration-file spelling of the boundary policy.
func (b BoundaryPolicy) String() string {
	switch b {
	case BoundaryClamp:
		return "clamp"
	case BoundaryReflect:
		return "reflect"
	case BoundaryWrap:
		return "wrap"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(b))
	}
}

// ParseBoundaryPolicy parses the configuration-file spelling of a boundary
// policy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "clamp":
		return BoundaryClamp, nil
	case "reflect":
		return BoundaryReflect, nil
	case "wrap":
		return BoundaryWrap, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q (want \"clamp\", \"reflect\" or \"wrap\")", s)
	}
}

// apply folds a candidate coordinate back into [0, n) according to the
// policy. Grids with a single cell along an axis collapse every candidate
// to zero under all policies.
func (b BoundaryPolicy) apply(v, n int) int {
	if n <= 1 {
		return 0
	}
	switch b {
	case BoundaryClamp:
		if v < 0 {
			return 0
		}
		if v >= n {
			return n - 1
		}
		return v
	case BoundaryReflect:
		period := 2 * (n - 1)
		v %= period
		if v < 0 {
			v += period
		}
		if v >= n {
			v = period - v
		}
		return v
	case BoundaryWrap:
		v %= n
		if v < 0 {
			v += n
		}
		return v
	default:
		return 0
	}
}

// Walker is a random walker on a width x height cell grid. It is not safe
// for concurrent use; the frame loop owns it.
type Walker struct {
	width, height int
	steps         StepSet
	boundary      BoundaryPolicy
	pos           Point
	rng           *rand.Rand
}

// NewWalker creates a walker starting at the grid center. A zero seed
// derives one from the current time; any other value gives a fully
// reproducible walk.
func NewWalker(width, height int, steps StepSet, boundary BoundaryPolicy, seed int64) *Walker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewWalkerSource(width, height, steps, boundary, rand.NewSource(seed))
}

// NewWalkerSource creates a walker drawing direction indices from the given
// source. Tests use this to script the walk.
func NewWalkerSource(width, height int, steps StepSet, boundary BoundaryPolicy, src rand.Source) *Walker {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Walker{
		width:    width,
		height:   height,
		steps:    steps,
		boundary: boundary,
		pos:      Point{X: width / 2, Y: height / 2},
		rng:      rand.New(src),
	}
}

// Pos returns the walker's current position.
func (w *Walker) Pos() Point {
	return w.pos
}

// SetPos moves the walker to p, folded into bounds by the walker's
// boundary policy.
func (w *Walker) SetPos(p Point) {
	w.pos = Point{
		X: w.boundary.apply(p.X, w.width),
		Y: w.boundary.apply(p.Y, w.height),
	}
}

// Size returns the walker's grid dimensions.
func (w *Walker) Size() (width, height int) {
	return w.width, w.height
}

// Resize changes the grid dimensions and re-centers the walker. The random
// stream is left untouched so a resize does not fork the walk.
func (w *Walker) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	w.width = width
	w.height = height
	w.pos = Point{X: width / 2, Y: height / 2}
}

// SetRules switches the step set and boundary policy in place, preserving
// the walker's position and random stream. Used on configuration reload.
func (w *Walker) SetRules(steps StepSet, boundary BoundaryPolicy) {
	w.steps = steps
	w.boundary = boundary
}

// Advance consumes exactly one value from the random stream, moves the
// walker one step and returns the new position. Out-of-bounds candidates
// are folded back per the boundary policy, so the result is always a valid
// cell.
func (w *Walker) Advance() Point {
	offsets := stepOffsets[w.steps]
	off := offsets[w.rng.Intn(len(offsets))]
	w.pos = Point{
		X: w.boundary.apply(w.pos.X+off.X, w.width),
		Y: w.boundary.apply(w.pos.Y+off.Y, w.height),
	}
	return w.pos
}
