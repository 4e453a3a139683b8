package regression

import (
	"fmt"
	"math"

	"github.com/arloliu/curvefit/format"
)

// Model is a fitted curve with its statistics.
//
// Fields:
//   - Order: polynomial degree
//   - Mode: how the coefficients were obtained
//   - Coefficients: order+1 ascending-power coefficients
//   - ChiSquared, RSquared: goodness of fit (see GoodnessOfFit)
//   - Rank, Degenerate: solver details, meaningful for FitBest only
//   - Formula: human-readable curve
//   - Estimator: evaluates the curve
type Model struct {
	// Order is the polynomial degree.
	Order int
	// Mode is the fit mode that produced the coefficients.
	Mode format.FitMode
	// Coefficients contains order+1 ascending-power coefficients.
	Coefficients []float64
	// ChiSquared is the reduced chi-squared.
	ChiSquared float64
	// RSquared is the coefficient of determination, NaN when undefined.
	RSquared float64
	// Rank is the size of the solved normal-equations system.
	Rank int
	// Degenerate reports that the best fit fell back to zero coefficients.
	Degenerate bool
	// Formula is a human-readable representation of the curve.
	Formula string
	// Estimator evaluates the curve.
	Estimator Estimator
}

// String returns a summary of the model.
func (m *Model) String() string {
	r2 := "undefined"
	if !math.IsNaN(m.RSquared) {
		r2 = fmt.Sprintf("%.4f", m.RSquared)
	}

	return fmt.Sprintf("Model{Order: %d, Mode: %s, χ²: %.4f, R²: %s, Formula: %s}",
		m.Order, m.Mode, m.ChiSquared, r2, m.Formula)
}

// Result is the outcome of comparing fits of several orders.
//
// Fields:
//   - BestFit: the model with the lowest reduced chi-squared
//   - AllModels: every fitted model, best first
type Result struct {
	// BestFit is the preferred model.
	BestFit *Model
	// AllModels contains every candidate, ranked best first.
	AllModels []*Model
}

// String returns a summary of the result.
func (r *Result) String() string {
	if r.BestFit == nil {
		return "Result{BestFit: nil}"
	}

	return fmt.Sprintf("Result{BestFit: %s, TotalModels: %d}", r.BestFit, len(r.AllModels))
}
