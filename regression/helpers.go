package regression

import (
	"fmt"
	"math"
	"strings"
)

// powers fills dst with x^0, x^1, ..., x^(len(dst)-1) by repeated multiplication.
//
// Every power in this package is computed this way so that fitting, statistics
// and evaluation round identically.
func powers(x float64, dst []float64) {
	p := 1.0
	for i := range dst {
		dst[i] = p
		p *= x
	}
}

// evaluate returns Σ coeffs[k]·x^k.
func evaluate(coeffs []float64, x float64) float64 {
	sum := 0.0
	p := 1.0
	for _, c := range coeffs {
		// 0·Inf is NaN; a zero term contributes nothing even when x^k overflows.
		if c != 0 {
			sum += c * p
		}
		p *= x
	}

	return sum
}

func validOrder(order int) bool {
	return order >= MinOrder && order <= MaxOrder
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

var superscripts = []string{"", "", "²", "³"}

// formatPolynomial renders ascending-power coefficients as "y = a + bx + cx² + dx³".
func formatPolynomial(coeffs []float64) string {
	var sb strings.Builder
	sb.WriteString("y = ")
	for k, c := range coeffs {
		if math.Abs(c) < 0.005 {
			c = 0 // never print "-0.00"
		}
		switch {
		case k == 0:
			fmt.Fprintf(&sb, "%.2f", c)
			continue
		case c < 0:
			fmt.Fprintf(&sb, " - %.2f", -c)
		default:
			fmt.Fprintf(&sb, " + %.2f", c)
		}
		sb.WriteString("x")
		if k < len(superscripts) {
			sb.WriteString(superscripts[k])
		} else {
			fmt.Fprintf(&sb, "^%d", k)
		}
	}

	return sb.String()
}
