package curve

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
	"github.com/arloliu/curvefit/snapshot"
)

// ManualSlots is the number of manual coefficients a model keeps, enough for
// the highest supported order.
const ManualSlots = regression.MaxOrder + 1

// Model owns a point set and keeps the fitted curve and its statistics in
// sync with it.
//
// Every mutating method recomputes before it returns: coefficients first
// (dispatching on the fit mode), then chi-squared and r-squared from the fresh
// coefficients, then observer notification. Readers therefore never see stale
// state.
//
// A Model is not safe for concurrent use.
type Model struct {
	logger *slog.Logger
	points *point.Set

	order  int
	mode   format.FitMode
	manual [ManualSlots]float64

	coeffs     []float64
	goodness   regression.Goodness
	rank       int
	degenerate bool

	observers []subscription
	nextSubID uint64
	notifying bool
}

// New creates a model with no points and computes its initial curve.
//
// Parameters:
//   - opts: WithLogger, WithBounds, WithDeltaLimits, WithOrder, WithFitMode, WithObserver
//
// Returns:
//   - *Model: the model
//   - error: an option validation error
func New(opts ...Option) (*Model, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	set, err := point.NewSet(cfg.Bounds, cfg.DeltaLimits)
	if err != nil {
		return nil, err
	}

	m := &Model{
		logger: cfg.Logger,
		points: set,
		order:  cfg.Order,
		mode:   cfg.FitMode,
	}
	for _, obs := range cfg.Observers {
		m.Subscribe(obs)
	}
	m.Recompute()

	return m, nil
}

// AddPoint adds a point and returns its ID. The delta is clamped to the
// configured limits.
func (m *Model) AddPoint(pos point.Position, delta float64) (uuid.UUID, error) {
	m.mustNotBeNotifying()

	id, err := m.points.Add(pos, delta)
	if err != nil {
		return uuid.Nil, err
	}
	m.Recompute()

	return id, nil
}

// RemovePoint removes the point with the given ID.
func (m *Model) RemovePoint(id uuid.UUID) error {
	return m.mutatePoints(func(s *point.Set) error { return s.Remove(id) })
}

// SetPointPosition moves a point.
func (m *Model) SetPointPosition(id uuid.UUID, pos point.Position) error {
	return m.mutatePoints(func(s *point.Set) error { return s.SetPosition(id, pos) })
}

// SetPointDelta changes a point's uncertainty, clamped to the configured limits.
func (m *Model) SetPointDelta(id uuid.UUID, delta float64) error {
	return m.mutatePoints(func(s *point.Set) error { return s.SetDelta(id, delta) })
}

// SetPointRelevance marks a point as counting towards the fit or as
// transitioning off the graph. Out-of-bounds points stay irrelevant either way.
func (m *Model) SetPointRelevance(id uuid.UUID, relevant bool) error {
	return m.mutatePoints(func(s *point.Set) error { return s.SetReturning(id, !relevant) })
}

func (m *Model) mutatePoints(fn func(s *point.Set) error) error {
	m.mustNotBeNotifying()

	if err := fn(m.points); err != nil {
		return err
	}
	m.Recompute()

	return nil
}

// SetOrder changes the polynomial order.
//
// Returns:
//   - error: ErrInvalidOrder when order is outside [1, 3]
func (m *Model) SetOrder(order int) error {
	m.mustNotBeNotifying()

	if order < regression.MinOrder || order > regression.MaxOrder {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, order)
	}
	m.order = order
	m.Recompute()

	return nil
}

// SetFitMode switches between best and adjustable fitting.
//
// Returns:
//   - error: ErrInvalidFitMode for an unknown mode
func (m *Model) SetFitMode(mode format.FitMode) error {
	m.mustNotBeNotifying()

	if !mode.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFitMode, mode)
	}
	m.mode = mode
	m.Recompute()

	return nil
}

// SetManualCoefficients replaces the user-supplied coefficients used in
// adjustable mode. Fewer than ManualSlots values leave the higher slots zero.
//
// Returns:
//   - error: ErrInvalidCoefficientCount or ErrNonFiniteValue
func (m *Model) SetManualCoefficients(coeffs []float64) error {
	m.mustNotBeNotifying()

	if len(coeffs) > ManualSlots {
		return fmt.Errorf("%w: got %d, max %d", errs.ErrInvalidCoefficientCount, len(coeffs), ManualSlots)
	}
	for _, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("manual coefficients: %w", errs.ErrNonFiniteValue)
		}
	}

	m.manual = [ManualSlots]float64{}
	copy(m.manual[:], coeffs)
	m.Recompute()

	return nil
}

// Reset restores order 1, best-fit mode, no points and zero manual
// coefficients, then recomputes.
func (m *Model) Reset() {
	m.mustNotBeNotifying()

	m.order = regression.MinOrder
	m.mode = format.FitBest
	m.manual = [ManualSlots]float64{}
	m.points.Clear()
	m.goodness = regression.Goodness{}
	m.Recompute()
}

// Recompute refreshes coefficients and statistics from the current inputs and
// notifies observers. Mutators call it already; calling it again with
// unchanged inputs yields identical results.
func (m *Model) Recompute() {
	m.mustNotBeNotifying()

	relevant := m.points.Relevant()

	switch m.mode {
	case format.FitAdjustable:
		m.coeffs = regression.AdjustableFit(m.manual[:], m.order)
		m.rank = m.order + 1
		m.degenerate = false
	default:
		sol := regression.Solve(relevant, m.order)
		m.coeffs = sol.Coefficients
		m.rank = sol.Rank
		m.degenerate = sol.Degenerate
	}
	m.goodness = regression.GoodnessOfFit(relevant, m.coeffs, m.order)

	m.logger.Debug("curve recomputed",
		"mode", m.mode.String(),
		"order", m.order,
		"relevant_points", len(relevant),
		"rank", m.rank,
		"degenerate", m.degenerate,
		"chi_squared", m.goodness.ChiSquared,
		"r_squared", m.goodness.RSquared,
	)

	m.notify()
}

// Coefficients returns a copy of the order+1 current coefficients, constant
// term first.
func (m *Model) Coefficients() []float64 {
	out := make([]float64, len(m.coeffs))
	copy(out, m.coeffs)

	return out
}

// ChiSquared returns the reduced chi-squared of the current curve.
func (m *Model) ChiSquared() float64 {
	return m.goodness.ChiSquared
}

// RSquared returns the r-squared of the current curve, NaN when undefined.
func (m *Model) RSquared() float64 {
	return m.goodness.RSquared
}

// Order returns the polynomial order.
func (m *Model) Order() int {
	return m.order
}

// FitMode returns the fit mode.
func (m *Model) FitMode() format.FitMode {
	return m.mode
}

// ManualCoefficients returns a copy of all manual coefficient slots.
func (m *Model) ManualCoefficients() []float64 {
	out := make([]float64, ManualSlots)
	copy(out, m.manual[:])

	return out
}

// Rank returns the size of the last solved system. In adjustable mode it is order+1.
func (m *Model) Rank() int {
	return m.rank
}

// Degenerate reports whether the last best fit fell back to zero coefficients.
func (m *Model) Degenerate() bool {
	return m.degenerate
}

// Bounds returns the graph area that decides relevance.
func (m *Model) Bounds() point.Bounds {
	return m.points.Bounds()
}

// DeltaLimits returns the clamp range for point uncertainties.
func (m *Model) DeltaLimits() point.DeltaLimits {
	return m.points.DeltaLimits()
}

// Point returns the point with the given ID.
func (m *Model) Point(id uuid.UUID) (point.Point, bool) {
	return m.points.Get(id)
}

// Points returns every point in insertion order.
func (m *Model) Points() []point.Point {
	return m.points.All()
}

// RelevantPoints returns the points that count towards the fit.
func (m *Model) RelevantPoints() []point.Point {
	return m.points.Relevant()
}

// IsCurvePresent reports whether there is a curve to draw: at least two
// relevant points, or adjustable mode, where the user supplies the shape.
func (m *Model) IsCurvePresent() bool {
	return m.mode == format.FitAdjustable || len(m.points.Relevant()) >= 2
}

// Evaluate returns the curve value at x.
//
// It panics if the coefficient count does not match the order, which can only
// happen through a bug in the model.
func (m *Model) Evaluate(x float64) float64 {
	if len(m.coeffs) != m.order+1 {
		panic(fmt.Sprintf("curve: %d coefficients for order %d", len(m.coeffs), m.order))
	}

	sum := 0.0
	p := 1.0
	for _, c := range m.coeffs {
		if c != 0 {
			sum += c * p
		}
		p *= x
	}

	return sum
}

// Sample evaluates the curve at n evenly spaced x values from from to to,
// both ends included.
//
// Returns:
//   - []point.Position: the samples, or nil when no curve is present
//   - error: ErrInvalidSampleCount when n < 2, ErrNonFiniteValue for a non-finite range
func (m *Model) Sample(from, to float64, n int) ([]point.Position, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidSampleCount, n)
	}
	if !(point.Position{X: from, Y: to}).Finite() {
		return nil, fmt.Errorf("sample range: %w", errs.ErrNonFiniteValue)
	}
	if !m.IsCurvePresent() {
		return nil, nil
	}

	out := make([]point.Position, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		x := from + float64(i)*step
		if i == n-1 {
			x = to
		}
		out[i] = point.Position{X: x, Y: m.Evaluate(x)}
	}

	return out, nil
}

// Snapshot captures the model inputs. Derived values are not stored since
// Restore recomputes them.
func (m *Model) Snapshot() snapshot.Session {
	return snapshot.Session{
		Order:              m.order,
		Mode:               m.mode,
		ManualCoefficients: m.manual,
		Points:             m.points.All(),
	}
}

// Restore replaces the model inputs with s and recomputes. On error the model
// is left unchanged.
//
// Returns:
//   - error: ErrInvalidOrder, ErrInvalidFitMode, ErrNonFiniteValue or ErrDuplicatePoint
func (m *Model) Restore(s snapshot.Session) error {
	m.mustNotBeNotifying()

	if err := s.Validate(); err != nil {
		return err
	}

	set, err := point.NewSet(m.points.Bounds(), m.points.DeltaLimits())
	if err != nil {
		return err
	}
	for _, p := range s.Points {
		if _, err := set.Insert(p); err != nil {
			return err
		}
	}

	m.points = set
	m.order = s.Order
	m.mode = s.Mode
	m.manual = s.ManualCoefficients
	m.Recompute()

	return nil
}
