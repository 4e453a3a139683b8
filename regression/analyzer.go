package regression

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/point"
)

// Fit computes the weighted least-squares model of the given order.
//
// Parameters:
//   - points: relevant points
//   - order: polynomial degree in [MinOrder, MaxOrder]
//
// Returns:
//   - *Model: the best-fit model with statistics and estimator
//   - error: ErrInvalidOrder
//
// Example:
//
//	model, err := regression.Fit(set.Relevant(), 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	y := model.Estimator.Estimate(1.5)
func Fit(points []point.Point, order int) (*Model, error) {
	if !validOrder(order) {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, order)
	}

	sol := Solve(points, order)

	return newModel(points, order, format.FitBest, sol.Coefficients, sol.Rank, sol.Degenerate), nil
}

// FitAdjustable builds the model for user-supplied coefficients.
//
// Parameters:
//   - points: relevant points, used for the statistics only
//   - manual: ascending-power coefficients; the first order+1 are used
//   - order: polynomial degree in [MinOrder, MaxOrder]
//
// Returns:
//   - *Model: the adjustable model with statistics and estimator
//   - error: ErrInvalidOrder or ErrNonFiniteValue
func FitAdjustable(points []point.Point, manual []float64, order int) (*Model, error) {
	if !validOrder(order) {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, order)
	}

	coeffs := AdjustableFit(manual, order)
	if !allFinite(coeffs) {
		return nil, fmt.Errorf("coefficients: %w", errs.ErrNonFiniteValue)
	}

	return newModel(points, order, format.FitAdjustable, coeffs, order+1, false), nil
}

// Analyze fits every candidate order and ranks the models.
//
// Models are ranked by reduced chi-squared, lowest first, since it accounts for
// the degrees of freedom each extra coefficient consumes; ties go to the lower
// order. Degenerate fits rank after every solvable fit.
//
// Parameters:
//   - points: relevant points; at least two are required
//   - opts: WithOrders to restrict the candidates
//
// Returns:
//   - *Result: best model and all candidates
//   - error: ErrInsufficientPoints or an option error
func Analyze(points []point.Point, opts ...AnalyzeOption) (*Result, error) {
	cfg := defaultAnalyzeConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInsufficientPoints, len(points))
	}

	models := make([]*Model, 0, len(cfg.Orders))
	for _, order := range cfg.Orders {
		m, err := Fit(points, order)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	slices.SortStableFunc(models, func(a, b *Model) int {
		if a.Degenerate != b.Degenerate {
			if a.Degenerate {
				return 1
			}

			return -1
		}
		if c := cmp.Compare(a.ChiSquared, b.ChiSquared); c != 0 {
			return c
		}

		return cmp.Compare(a.Order, b.Order)
	})

	return &Result{BestFit: models[0], AllModels: models}, nil
}

func newModel(points []point.Point, order int, mode format.FitMode, coeffs []float64, rank int, degenerate bool) *Model {
	g := GoodnessOfFit(points, coeffs, order)
	est := &PolynomialEstimator{coeffs: coeffs}

	return &Model{
		Order:        order,
		Mode:         mode,
		Coefficients: est.Coefficients(),
		ChiSquared:   g.ChiSquared,
		RSquared:     g.RSquared,
		Rank:         rank,
		Degenerate:   degenerate,
		Formula:      formatPolynomial(coeffs),
		Estimator:    est,
	}
}
