package regression

import (
	"fmt"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/options"
)

// AnalyzeConfig holds the candidate orders compared by Analyze.
type AnalyzeConfig struct {
	Orders []int
}

// defaultAnalyzeConfig compares every supported order.
func defaultAnalyzeConfig() AnalyzeConfig {
	orders := make([]int, 0, MaxOrder-MinOrder+1)
	for o := MinOrder; o <= MaxOrder; o++ {
		orders = append(orders, o)
	}

	return AnalyzeConfig{Orders: orders}
}

// AnalyzeOption is a functional option for AnalyzeConfig.
type AnalyzeOption = options.Option[*AnalyzeConfig]

// WithOrders restricts the candidate orders. Duplicates are ignored.
func WithOrders(orders ...int) AnalyzeOption {
	return options.New(func(cfg *AnalyzeConfig) error {
		if len(orders) == 0 {
			return fmt.Errorf("%w: no candidate orders", errs.ErrInvalidOrder)
		}

		seen := make(map[int]bool, len(orders))
		cfg.Orders = cfg.Orders[:0]
		for _, o := range orders {
			if !validOrder(o) {
				return fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, o)
			}
			if seen[o] {
				continue
			}
			seen[o] = true
			cfg.Orders = append(cfg.Orders, o)
		}

		return nil
	})
}
