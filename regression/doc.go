// Package regression fits polynomials of order 1 to 3 to weighted 2-D points
// and measures how well a curve describes them.
//
// # Key Features
//
//   - **Weighted least squares**: points are weighted by 1/δ², where δ is the
//     point uncertainty
//   - **Graceful degradation**: systems with too few distinct x values or a
//     singular matrix yield zero coefficients instead of an error
//   - **Goodness of fit**: reduced chi-squared and r-squared with defined
//     sentinels for undefined cases
//   - **Order comparison**: rank orders 1–3 by reduced chi-squared
//
// # Usage Patterns
//
// ## Best Fit
//
//	coeffs := regression.BestFit(set.Relevant(), 2) // [c0, c1, c2]
//	g := regression.GoodnessOfFit(set.Relevant(), coeffs, 2)
//	fmt.Printf("χ²=%.3f R²=%.3f\n", g.ChiSquared, g.RSquared)
//
// ## Adjustable Fit
//
// User-supplied coefficients pass through unchanged, truncated to the order:
//
//	coeffs := regression.AdjustableFit([]float64{2, 1, 0, 0}, 1) // [2, 1]
//
// ## Models
//
// Fit bundles coefficients, statistics, a formula and an Estimator:
//
//	model, err := regression.Fit(points, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Formula)
//	y := model.Estimator.Estimate(0.5)
//
// # Normal Equations
//
// For a system of size m = min(order+1, distinct x count) the solver builds
//
//	X[j][k] = Σ x_i^(j+k) / δ_i²
//	Y[j]    = Σ x_i^j · y_i / δ_i²
//
// and solves X·A = Y with gonum. Sums run in slice order and powers are formed
// by repeated multiplication, so results are reproducible for a given point order.
// Coefficient slots above m are zero.
//
// # Statistics
//
// Reduced chi-squared is the weighted residual sum of squares divided by
// max(n − order − 1, 1). r-squared is 1 − (weighted mean squared residual /
// weighted variance of y), reported as NaN when the variance is below Epsilon,
// 1 when the residual is below Epsilon, and 0 when the curve is worse than the
// weighted mean. Fewer than two points give 0 for both.
package regression
