package regression

import (
	"fmt"

	"github.com/arloliu/curvefit/errs"
)

// Estimator evaluates a fitted curve.
type Estimator interface {
	// Estimate returns the curve value at x.
	Estimate(x float64) float64
	// Order returns the polynomial degree.
	Order() int
	// Coefficients returns the ascending-power coefficients.
	Coefficients() []float64
	// SetCoefficients replaces the coefficients. The count must be between
	// MinOrder+1 and MaxOrder+1 and every value must be finite.
	SetCoefficients(coeffs []float64) error
}

// PolynomialEstimator implements the polynomial y = c0 + c1·x + c2·x² + c3·x³,
// truncated to its order.
type PolynomialEstimator struct {
	coeffs []float64
}

var _ Estimator = (*PolynomialEstimator)(nil)

// NewPolynomialEstimator creates an estimator from ascending-power coefficients.
//
// Parameters:
//   - coeffs: between MinOrder+1 and MaxOrder+1 finite coefficients, constant term first
//
// Returns:
//   - *PolynomialEstimator: the estimator, owning a copy of coeffs
//   - error: ErrInvalidCoefficientCount or ErrNonFiniteValue
func NewPolynomialEstimator(coeffs []float64) (*PolynomialEstimator, error) {
	e := &PolynomialEstimator{}
	if err := e.SetCoefficients(coeffs); err != nil {
		return nil, err
	}

	return e, nil
}

// Estimate returns Σ c_k·x^k.
func (p *PolynomialEstimator) Estimate(x float64) float64 {
	return evaluate(p.coeffs, x)
}

// Order returns the polynomial degree.
func (p *PolynomialEstimator) Order() int {
	return len(p.coeffs) - 1
}

// Coefficients returns a copy of the coefficients.
func (p *PolynomialEstimator) Coefficients() []float64 {
	out := make([]float64, len(p.coeffs))
	copy(out, p.coeffs)

	return out
}

// SetCoefficients updates the coefficients, which also sets the order.
func (p *PolynomialEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) < MinOrder+1 || len(coeffs) > MaxOrder+1 {
		return fmt.Errorf("%w: polynomial expects %d to %d coefficients, got %d",
			errs.ErrInvalidCoefficientCount, MinOrder+1, MaxOrder+1, len(coeffs))
	}
	if !allFinite(coeffs) {
		return fmt.Errorf("coefficients: %w", errs.ErrNonFiniteValue)
	}

	p.coeffs = append(p.coeffs[:0], coeffs...)

	return nil
}

// String returns the curve formula.
func (p *PolynomialEstimator) String() string {
	return formatPolynomial(p.coeffs)
}
