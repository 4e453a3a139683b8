// Package curve orchestrates curve fitting over an editable set of points.
//
// A Model owns a point.Set and keeps the fitted polynomial, its reduced
// chi-squared and its r-squared consistent with it. Each mutator (adding,
// moving or removing points, changing the order, the fit mode or the manual
// coefficients) recomputes synchronously and then notifies observers, which
// re-read whatever they display.
//
// # Fit Modes
//
//   - format.FitBest: weighted least squares over the relevant points
//   - format.FitAdjustable: the user's manual coefficients, truncated to the order
//
// # Usage
//
//	m, err := curve.New(curve.WithOrder(2), curve.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	unsubscribe := m.Subscribe(curve.ObserverFunc(func(m *curve.Model) {
//	    fmt.Println(m.Coefficients(), m.ChiSquared(), m.RSquared())
//	}))
//	defer unsubscribe()
//
//	id, _ := m.AddPoint(point.Position{X: 1, Y: 1}, 0.5)
//	_ = m.SetPointRelevance(id, false)
//
// A Model has exactly one writer. Observers run inside the mutating call and
// must not mutate the model; doing so panics.
package curve
