package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/curvefit/point"
)

const (
	// MinOrder is the lowest supported polynomial degree.
	MinOrder = 1
	// MaxOrder is the highest supported polynomial degree.
	MaxOrder = 3

	// DeterminantEpsilon is the threshold at or below which the normal-equations
	// matrix is treated as singular.
	DeterminantEpsilon = 1e-30
)

// Solution is the outcome of a weighted least-squares solve.
type Solution struct {
	// Coefficients holds order+1 ascending-power coefficients.
	Coefficients []float64
	// Rank is the size of the solved system: min(order+1, distinct x count).
	Rank int
	// Determinant is the determinant of the normal-equations matrix (0 when Rank is 0).
	Determinant float64
	// Degenerate is true when the system could not be solved and the
	// coefficients are all zero.
	Degenerate bool
}

// BestFit returns the weighted least-squares polynomial coefficients of the
// given degree, in ascending power order (constant term first).
//
// The points are used as given: callers pass only relevant points. When the
// system is degenerate (too few distinct x values or a singular matrix) the
// result is order+1 zeros.
//
// Parameters:
//   - points: relevant points, summed in slice order
//   - order: polynomial degree in [MinOrder, MaxOrder]
//
// Returns:
//   - []float64: order+1 coefficients
func BestFit(points []point.Point, order int) []float64 {
	return Solve(points, order).Coefficients
}

// AdjustableFit returns the first order+1 entries of manual, the
// user-supplied ascending-power coefficients. Missing trailing entries read as zero.
func AdjustableFit(manual []float64, order int) []float64 {
	out := make([]float64, order+1)
	copy(out, manual)

	return out
}

// Solve builds and solves the weighted normal equations
//
//	X[j][k] = Σ x^(j+k) / δ²
//	Y[j]    = Σ x^j · y / δ²
//
// for j, k in [0, m), where m = min(order+1, distinct x count). The solved
// coefficients fill the low m slots and the remaining slots are zero.
//
// A system with fewer than two distinct x values, with non-finite power sums,
// or whose determinant magnitude is at most DeterminantEpsilon or not finite,
// is degenerate and yields zeros.
//
// Solve panics if order is outside [MinOrder, MaxOrder] or if the solver
// produces a non-finite coefficient, both of which indicate a caller bug.
func Solve(points []point.Point, order int) Solution {
	if !validOrder(order) {
		panic(fmt.Sprintf("regression: order %d outside [%d, %d]", order, MinOrder, MaxOrder))
	}

	sol := Solution{Coefficients: make([]float64, order+1)}

	m := min(order+1, point.UniqueXCount(points))
	sol.Rank = m
	if m < 2 {
		sol.Degenerate = true
		return sol
	}

	x := mat.NewDense(m, m, nil)
	y := mat.NewVecDense(m, nil)
	pw := make([]float64, 2*m-1)

	for _, p := range points {
		d2 := p.Delta * p.Delta
		powers(p.Position.X, pw)
		for j := 0; j < m; j++ {
			for k := 0; k < m; k++ {
				x.Set(j, k, x.At(j, k)+pw[j+k]/d2)
			}
			y.SetVec(j, y.AtVec(j)+pw[j]*p.Position.Y/d2)
		}
	}

	// Power sums overflow for very large x or tiny deltas; the determinant is
	// then NaN or infinite and the system cannot be solved.
	if !allFinite(x.RawMatrix().Data) || !allFinite(y.RawVector().Data) {
		sol.Determinant = math.NaN()
		sol.Degenerate = true
		return sol
	}

	sol.Determinant = mat.Det(x)
	if !(math.Abs(sol.Determinant) > DeterminantEpsilon) || math.IsInf(sol.Determinant, 0) {
		sol.Degenerate = true
		return sol
	}

	var a mat.VecDense
	if err := a.SolveVec(x, y); err != nil {
		// An ill-conditioned matrix still yields a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			panic(fmt.Sprintf("regression: solve failed past the singularity guard: %v", err))
		}
	}

	for i := 0; i < m; i++ {
		sol.Coefficients[i] = a.AtVec(i)
	}
	if !allFinite(sol.Coefficients) {
		panic(fmt.Sprintf("regression: non-finite coefficient %v", sol.Coefficients))
	}

	return sol
}
