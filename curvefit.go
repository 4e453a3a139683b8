// Package curvefit fits low-order polynomials to weighted 2-D data points.
//
// Every point carries an uncertainty (delta) whose inverse square weights it in
// a least-squares fit of order 1 to 3. The fit is scored with reduced
// chi-squared and r-squared, and can be replaced by user-supplied coefficients
// ("adjustable" mode) to compare a guess against the data.
//
// # Core Features
//
//   - Weighted least squares via the normal equations (gonum)
//   - Graceful degradation to zero coefficients for singular systems
//   - Reduced chi-squared and r-squared goodness of fit
//   - Editable models that recompute and notify observers on every change
//   - Order comparison ranking orders 1..3 by chi-squared
//   - Compact binary session snapshots with optional compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// One-shot fitting:
//
//	model, err := curvefit.FitPoints(
//	    []float64{0, 1, 2},  // x
//	    []float64{1, 3, 5},  // y
//	    []float64{1, 1, 1},  // delta, nil for the default
//	    1,                   // order
//	)
//	fmt.Println(model.Formula) // y = 1.00 + 2.00x
//
// Interactive editing:
//
//	m, _ := curvefit.NewModel(curve.WithOrder(2))
//	id, _ := m.AddPoint(point.Position{X: 1, Y: 2}, 0.5)
//	_ = m.SetPointPosition(id, point.Position{X: 1, Y: 2.5})
//	fmt.Println(m.Coefficients(), m.ChiSquared(), m.RSquared())
//
// Saving and restoring:
//
//	data, _ := curvefit.SaveModel(m, snapshot.WithCompression(format.CompressionS2))
//	restored, _ := curvefit.LoadModel(data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. The building blocks are
// point (weighted points and sets), regression (fitting and statistics), curve
// (the editable model) and snapshot (the binary session format).
package curvefit

import (
	"fmt"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
	"github.com/arloliu/curvefit/snapshot"
)

// NewModel creates an editable curve model.
//
// Parameters:
//   - opts: curve.WithOrder, curve.WithFitMode, curve.WithBounds,
//     curve.WithDeltaLimits, curve.WithLogger, curve.WithObserver
//
// Returns:
//   - *curve.Model: a model with no points
//   - error: an option validation error
func NewModel(opts ...curve.Option) (*curve.Model, error) {
	return curve.New(opts...)
}

// FitPoints fits a polynomial of the given order to parallel coordinate slices.
//
// All points count towards the fit; graph bounds do not apply. Deltas are
// clamped to point.DefaultDeltaLimits, and a nil deltas slice gives every point
// the default delta.
//
// Parameters:
//   - xs, ys: coordinates, same length
//   - deltas: per-point uncertainties, nil or the same length as xs
//   - order: polynomial degree, 1 to 3
//
// Returns:
//   - *regression.Model: coefficients, statistics, formula and estimator
//   - error: on mismatched lengths, non-finite values or an invalid order
func FitPoints(xs, ys, deltas []float64, order int) (*regression.Model, error) {
	points, err := makePoints(xs, ys, deltas)
	if err != nil {
		return nil, err
	}

	return regression.Fit(points, order)
}

// ComparePoints fits every order to the coordinates and ranks the results,
// best first. Inputs follow FitPoints.
func ComparePoints(xs, ys, deltas []float64) (*regression.Result, error) {
	points, err := makePoints(xs, ys, deltas)
	if err != nil {
		return nil, err
	}

	return regression.Analyze(points)
}

// SaveModel encodes the inputs of m as a binary snapshot.
func SaveModel(m *curve.Model, opts ...snapshot.EncoderOption) ([]byte, error) {
	return snapshot.Encode(m.Snapshot(), opts...)
}

// LoadModel decodes a snapshot into a new model built with opts.
func LoadModel(data []byte, opts ...curve.Option) (*curve.Model, error) {
	s, err := snapshot.Decode(data)
	if err != nil {
		return nil, err
	}

	m, err := curve.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Restore(s); err != nil {
		return nil, err
	}

	return m, nil
}

func makePoints(xs, ys, deltas []float64) ([]point.Point, error) {
	if len(xs) != len(ys) || (deltas != nil && len(deltas) != len(xs)) {
		return nil, fmt.Errorf("curvefit: mismatched lengths x=%d y=%d delta=%d", len(xs), len(ys), len(deltas))
	}

	limits := point.DefaultDeltaLimits
	points := make([]point.Point, len(xs))
	for i := range xs {
		pos := point.Position{X: xs[i], Y: ys[i]}
		if !pos.Finite() {
			return nil, fmt.Errorf("point %d: %w", i, errs.ErrNonFiniteValue)
		}
		delta := limits.Default
		if deltas != nil {
			delta = limits.Clamp(deltas[i])
		}
		points[i] = point.Point{Position: pos, Delta: delta}
	}

	return points, nil
}
