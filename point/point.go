// Package point holds the weighted data points that feed the curve fitter.
//
// A Point is a 2-D position with an uncertainty (delta) whose inverse square is
// used as the regression weight. Points live in a Set, which preserves insertion
// order so that fitting sums are reproducible, and which decides point
// relevance from its graph bounds and each point's transient "returning" flag.
//
// The package is single-threaded: a Set must not be mutated concurrently.
package point

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/errs"
)

// Position is a location on the graph.
type Position struct {
	X float64
	Y float64
}

// Finite reports whether both coordinates are finite numbers.
func (p Position) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Point is a weighted data point.
type Point struct {
	// ID is the reference handed back to the caller on insertion.
	ID uuid.UUID
	// Position is the point location.
	Position Position
	// Delta is the point uncertainty. It is always positive for points held by a Set.
	Delta float64
	// Returning marks a point that is transitioning off the graph. Such points
	// never count towards a fit.
	Returning bool
}

// Weight returns the regression weight 1/delta².
func (p Point) Weight() float64 {
	return 1 / (p.Delta * p.Delta)
}

// Relevant reports whether the point counts towards fitting: it must lie within
// bounds and must not be returning.
func (p Point) Relevant(bounds Bounds) bool {
	return !p.Returning && bounds.Contains(p.Position)
}

// Bounds is the closed rectangle of the graph area.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultBounds is the graph area used when none is configured.
var DefaultBounds = Bounds{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Validate checks that the bounds are finite and non-empty.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.MinX, b.MaxX, b.MinY, b.MaxY} {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite edge", errs.ErrInvalidBounds)
		}
	}
	if b.MinX >= b.MaxX || b.MinY >= b.MaxY {
		return fmt.Errorf("%w: min must be below max", errs.ErrInvalidBounds)
	}

	return nil
}

// DeltaLimits bounds the uncertainty a point may carry.
type DeltaLimits struct {
	// Min is the smallest delta. It must be strictly positive, as a zero delta
	// yields an infinite weight.
	Min float64
	// Max is the largest delta.
	Max float64
	// Default is the delta given to points added without an explicit value.
	Default float64
}

// DefaultDeltaLimits are the limits used when none are configured.
var DefaultDeltaLimits = DeltaLimits{Min: 0.01, Max: 10, Default: 0.8}

// Clamp restricts delta to [Min, Max]. Non-positive or NaN input maps to Min.
func (l DeltaLimits) Clamp(delta float64) float64 {
	if math.IsNaN(delta) || delta < l.Min {
		return l.Min
	}
	if delta > l.Max {
		return l.Max
	}

	return delta
}

// Validate checks that 0 < Min <= Default <= Max.
func (l DeltaLimits) Validate() error {
	if !(l.Min > 0) || !isFinite(l.Max) {
		return fmt.Errorf("%w: min must be positive and max finite", errs.ErrInvalidDeltaLimits)
	}
	if l.Min > l.Max {
		return fmt.Errorf("%w: min %g exceeds max %g", errs.ErrInvalidDeltaLimits, l.Min, l.Max)
	}
	if l.Default < l.Min || l.Default > l.Max {
		return fmt.Errorf("%w: default %g outside [%g, %g]", errs.ErrInvalidDeltaLimits, l.Default, l.Min, l.Max)
	}

	return nil
}

// UniqueXCount returns the number of distinct X values among points, compared
// with exact floating-point equality.
func UniqueXCount(points []Point) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[p.Position.X] = struct{}{}
	}

	return len(seen)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
