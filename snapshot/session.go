package snapshot

import (
	"fmt"
	"math"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
)

// Session holds the inputs of a curve model. Coefficients and statistics are
// derived data and are recomputed on restore.
type Session struct {
	// Order is the polynomial degree.
	Order int
	// Mode is the fit mode.
	Mode format.FitMode
	// ManualCoefficients are the user-supplied coefficients for every order.
	ManualCoefficients [regression.MaxOrder + 1]float64
	// Points are the model points in insertion order.
	Points []point.Point
}

// Validate checks the order, the fit mode and that every value is finite.
func (s Session) Validate() error {
	if s.Order < regression.MinOrder || s.Order > regression.MaxOrder {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, s.Order)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFitMode, s.Mode)
	}
	for _, c := range s.ManualCoefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("manual coefficients: %w", errs.ErrNonFiniteValue)
		}
	}
	for i, p := range s.Points {
		if !p.Position.Finite() || math.IsNaN(p.Delta) {
			return fmt.Errorf("point %d: %w", i, errs.ErrNonFiniteValue)
		}
	}

	return nil
}
