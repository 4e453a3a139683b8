package regression

import (
	"math"

	"github.com/arloliu/curvefit/point"
)

// Epsilon is the general tolerance used by the goodness-of-fit statistics.
const Epsilon = 1e-10

// Goodness holds the goodness-of-fit statistics of a curve.
type Goodness struct {
	// ChiSquared is the reduced chi-squared: weighted residual sum of squares
	// over the degrees of freedom. Always >= 0.
	ChiSquared float64
	// RSquared is the fraction of weighted variance explained by the curve,
	// in [0, 1], or NaN when the y values have no variance.
	RSquared float64
}

// GoodnessOfFit computes reduced chi-squared and r-squared of the polynomial
// coeffs against points.
//
// With fewer than two points both statistics are 0. r-squared is NaN when the
// weighted variance of y is below Epsilon, 1 when the weighted mean squared
// residual is below Epsilon, and clamped to 0 when the curve is worse than the
// weighted mean.
//
// Parameters:
//   - points: relevant points, summed in slice order
//   - coeffs: ascending-power coefficients
//   - order: polynomial degree, used for the degrees of freedom
//
// Returns:
//   - Goodness: the two statistics
func GoodnessOfFit(points []point.Point, coeffs []float64, order int) Goodness {
	n := len(points)
	if n < 2 {
		return Goodness{}
	}

	var sumW, sumWY, sumWYY, sumWYFit, sumWFitFit float64
	for _, p := range points {
		w := 1 / (p.Delta * p.Delta)
		y := p.Position.Y
		yFit := evaluate(coeffs, p.Position.X)

		sumW += w
		sumWY += w * y
		sumWYY += w * y * y
		sumWYFit += w * y * yFit
		sumWFitFit += w * yFit * yFit
	}

	weightAvg := sumW / float64(n)
	// Equal to sumW up to rounding.
	denom := weightAvg * float64(n)

	yAvg := sumWY / denom
	yyAvg := sumWYY / denom

	residualSumSq := sumWYY - 2*sumWYFit + sumWFitFit
	avgResidualSq := residualSumSq / denom
	avgSq := yyAvg - yAvg*yAvg

	dof := max(n-order-1, 1)

	g := Goodness{ChiSquared: math.Abs(residualSumSq) / float64(dof)}

	switch {
	case math.Abs(avgSq) < Epsilon:
		g.RSquared = math.NaN()
	case math.Abs(avgResidualSq) < Epsilon:
		g.RSquared = 1
	case avgResidualSq/avgSq > 1:
		g.RSquared = 0
	default:
		g.RSquared = 1 - avgResidualSq/avgSq
	}

	return g
}
