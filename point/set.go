package point

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/errs"
)

// Set is an insertion-ordered collection of points.
//
// All deltas entering the set are clamped to its DeltaLimits, so members
// always carry a positive, finite weight.
type Set struct {
	bounds Bounds
	limits DeltaLimits
	points []Point
}

// NewSet creates an empty set with the given graph bounds and delta limits.
//
// Returns:
//   - *Set: the new set
//   - error: ErrInvalidBounds or ErrInvalidDeltaLimits
func NewSet(bounds Bounds, limits DeltaLimits) (*Set, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	return &Set{bounds: bounds, limits: limits}, nil
}

// NewDefaultSet creates an empty set using DefaultBounds and DefaultDeltaLimits.
func NewDefaultSet() *Set {
	return &Set{bounds: DefaultBounds, limits: DefaultDeltaLimits}
}

// Bounds returns the graph bounds used for relevance.
func (s *Set) Bounds() Bounds {
	return s.bounds
}

// DeltaLimits returns the delta clamp limits.
func (s *Set) DeltaLimits() DeltaLimits {
	return s.limits
}

// Len returns the number of points, relevant or not.
func (s *Set) Len() int {
	return len(s.points)
}

// Add inserts a new point at pos with the given delta and returns its ID.
func (s *Set) Add(pos Position, delta float64) (uuid.UUID, error) {
	if !pos.Finite() {
		return uuid.Nil, fmt.Errorf("position: %w", errs.ErrNonFiniteValue)
	}

	p := Point{
		ID:       uuid.New(),
		Position: pos,
		Delta:    s.limits.Clamp(delta),
	}
	s.points = append(s.points, p)

	return p.ID, nil
}

// Insert appends p keeping its ID. It is used to restore saved sessions.
// A nil ID is replaced with a fresh one.
func (s *Set) Insert(p Point) (uuid.UUID, error) {
	if !p.Position.Finite() {
		return uuid.Nil, fmt.Errorf("position: %w", errs.ErrNonFiniteValue)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	} else if s.indexOf(p.ID) >= 0 {
		return uuid.Nil, fmt.Errorf("%w: %s", errs.ErrDuplicatePoint, p.ID)
	}
	p.Delta = s.limits.Clamp(p.Delta)
	s.points = append(s.points, p)

	return p.ID, nil
}

// Remove deletes the point with the given ID, keeping the order of the rest.
func (s *Set) Remove(id uuid.UUID) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", errs.ErrPointNotFound, id)
	}
	s.points = append(s.points[:i], s.points[i+1:]...)

	return nil
}

// SetPosition moves the point with the given ID.
func (s *Set) SetPosition(id uuid.UUID, pos Position) error {
	if !pos.Finite() {
		return fmt.Errorf("position: %w", errs.ErrNonFiniteValue)
	}

	return s.update(id, func(p *Point) { p.Position = pos })
}

// SetDelta changes the uncertainty of the point with the given ID.
// The value is clamped to the set's DeltaLimits.
func (s *Set) SetDelta(id uuid.UUID, delta float64) error {
	return s.update(id, func(p *Point) { p.Delta = s.limits.Clamp(delta) })
}

// SetReturning flags or unflags the point as transitioning off the graph.
func (s *Set) SetReturning(id uuid.UUID, returning bool) error {
	return s.update(id, func(p *Point) { p.Returning = returning })
}

// Get returns a copy of the point with the given ID.
func (s *Set) Get(id uuid.UUID) (Point, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Point{}, false
	}

	return s.points[i], true
}

// All returns a copy of every point in insertion order.
func (s *Set) All() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)

	return out
}

// Relevant returns the points that count towards fitting, in insertion order.
func (s *Set) Relevant() []Point {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if p.Relevant(s.bounds) {
			out = append(out, p)
		}
	}

	return out
}

// UniqueXCount returns the number of distinct X values among relevant points.
func (s *Set) UniqueXCount() int {
	return UniqueXCount(s.Relevant())
}

// Clear removes every point.
func (s *Set) Clear() {
	s.points = s.points[:0]
}

func (s *Set) update(id uuid.UUID, fn func(p *Point)) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", errs.ErrPointNotFound, id)
	}
	fn(&s.points[i])

	return nil
}

// indexOf is a linear scan; a set holds at most a few dozen points.
func (s *Set) indexOf(id uuid.UUID) int {
	for i := range s.points {
		if s.points[i].ID == id {
			return i
		}
	}

	return -1
}
