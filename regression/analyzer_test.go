package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/point"
)

func parabola() []point.Point {
	points := make([]point.Point, 0, 7)
	for x := -3.0; x <= 3; x++ {
		points = append(points, pt(x, x*x, 1))
	}

	return points
}

func TestFit(t *testing.T) {
	points := []point.Point{pt(1, 1, 1), pt(2, 2, 1), pt(3, 3, 1)}

	model, err := Fit(points, 1)
	require.NoError(t, err)
	require.Equal(t, 1, model.Order)
	require.Equal(t, format.FitBest, model.Mode)
	require.Equal(t, 2, model.Rank)
	require.False(t, model.Degenerate)
	require.InDeltaSlice(t, []float64{0, 1}, model.Coefficients, 1e-12)
	require.InDelta(t, 0, model.ChiSquared, 1e-12)
	require.Equal(t, 1.0, model.RSquared)
	require.Equal(t, "y = 0.00 + 1.00x", model.Formula)
	require.InDelta(t, 10, model.Estimator.Estimate(10), 1e-9)
	require.Equal(t, 1, model.Estimator.Order())

	t.Run("invalid order", func(t *testing.T) {
		_, err := Fit(points, 0)
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
		_, err = Fit(points, 4)
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
	})

	t.Run("degenerate", func(t *testing.T) {
		model, err := Fit([]point.Point{pt(1, 1, 1), pt(1, 5, 1)}, 2)
		require.NoError(t, err)
		require.True(t, model.Degenerate)
		require.Equal(t, []float64{0, 0, 0}, model.Coefficients)
		require.Equal(t, "y = 0.00 + 0.00x + 0.00x²", model.Formula)
	})
}

func TestFitAdjustable(t *testing.T) {
	points := []point.Point{pt(0, 2, 1), pt(1, 3, 1), pt(2, 4, 1)}

	model, err := FitAdjustable(points, []float64{2, 1, 7, 9}, 1)
	require.NoError(t, err)
	require.Equal(t, format.FitAdjustable, model.Mode)
	require.Equal(t, []float64{2, 1}, model.Coefficients)
	require.Equal(t, 2, model.Rank)
	require.InDelta(t, 0, model.ChiSquared, 1e-12)
	require.Equal(t, 1.0, model.RSquared)

	t.Run("non-finite coefficient", func(t *testing.T) {
		_, err := FitAdjustable(points, []float64{math.NaN(), 1}, 1)
		require.ErrorIs(t, err, errs.ErrNonFiniteValue)
	})

	t.Run("non-finite coefficient above order is ignored", func(t *testing.T) {
		_, err := FitAdjustable(points, []float64{1, 1, math.Inf(1)}, 1)
		require.NoError(t, err)
	})

	t.Run("invalid order", func(t *testing.T) {
		_, err := FitAdjustable(points, []float64{1, 1}, 5)
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
	})
}

func TestAnalyze(t *testing.T) {
	result, err := Analyze(parabola())
	require.NoError(t, err)
	require.Len(t, result.AllModels, 3)
	require.Same(t, result.AllModels[0], result.BestFit)

	// The line cannot describe a parabola, so it ranks last.
	require.NotEqual(t, 1, result.BestFit.Order)
	require.Equal(t, 1, result.AllModels[2].Order)
	require.InDelta(t, 0, result.BestFit.ChiSquared, 1e-9)

	for i := 1; i < len(result.AllModels); i++ {
		require.LessOrEqual(t, result.AllModels[i-1].ChiSquared, result.AllModels[i].ChiSquared)
	}
}

func TestAnalyze_TiesPreferLowerOrder(t *testing.T) {
	// All points share x, so every order is degenerate with identical statistics.
	points := []point.Point{pt(2, 1, 1), pt(2, 3, 1), pt(2, 5, 1)}

	result, err := Analyze(points)
	require.NoError(t, err)
	require.Equal(t, 1, result.BestFit.Order)
	require.Equal(t, 2, result.AllModels[1].Order)
	require.Equal(t, 3, result.AllModels[2].Order)
}

func TestAnalyze_DegenerateRanksLast(t *testing.T) {
	// Large deltas scale the normal matrix by 1e-10 per row and column, which
	// pushes only the cubic determinant under DeterminantEpsilon.
	points := parabola()
	for i := range points {
		points[i].Delta = 1e5
	}

	result, err := Analyze(points)
	require.NoError(t, err)

	last := result.AllModels[len(result.AllModels)-1]
	require.Equal(t, 3, last.Order)
	require.True(t, last.Degenerate)
	require.Equal(t, []float64{0, 0, 0, 0}, last.Coefficients)

	require.Equal(t, 2, result.BestFit.Order)
	require.False(t, result.BestFit.Degenerate)
}

func TestAnalyze_Options(t *testing.T) {
	t.Run("restricted orders", func(t *testing.T) {
		result, err := Analyze(parabola(), WithOrders(1, 2, 2))
		require.NoError(t, err)
		require.Len(t, result.AllModels, 2)
		require.Equal(t, 2, result.BestFit.Order)
	})

	t.Run("invalid order", func(t *testing.T) {
		_, err := Analyze(parabola(), WithOrders(1, 4))
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
	})

	t.Run("empty orders", func(t *testing.T) {
		_, err := Analyze(parabola(), WithOrders())
		require.ErrorIs(t, err, errs.ErrInvalidOrder)
	})
}

func TestAnalyze_InsufficientPoints(t *testing.T) {
	_, err := Analyze(nil)
	require.ErrorIs(t, err, errs.ErrInsufficientPoints)

	_, err = Analyze([]point.Point{pt(1, 1, 1)})
	require.ErrorIs(t, err, errs.ErrInsufficientPoints)
}

func TestModelString(t *testing.T) {
	m := &Model{Order: 1, Mode: format.FitBest, RSquared: math.NaN(), Formula: "y = 0.00 + 0.00x"}
	require.Equal(t, "Model{Order: 1, Mode: best, χ²: 0.0000, R²: undefined, Formula: y = 0.00 + 0.00x}", m.String())

	r := &Result{BestFit: m, AllModels: []*Model{m}}
	require.Contains(t, r.String(), "TotalModels: 1")
	require.Equal(t, "Result{BestFit: nil}", (&Result{}).String())
}
