package curve

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
)

// Config holds the construction settings of a Model.
type Config struct {
	Logger      *slog.Logger
	Bounds      point.Bounds
	DeltaLimits point.DeltaLimits
	Order       int
	FitMode     format.FitMode
	Observers   []Observer
}

func defaultConfig() Config {
	return Config{
		Logger:      slog.New(slog.DiscardHandler),
		Bounds:      point.DefaultBounds,
		DeltaLimits: point.DefaultDeltaLimits,
		Order:       regression.MinOrder,
		FitMode:     format.FitBest,
	}
}

// Option is a functional option for New.
type Option = options.Option[*Config]

// WithLogger sets the logger used for recompute diagnostics. A nil logger
// discards output.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(cfg *Config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		cfg.Logger = logger
	})
}

// WithBounds sets the graph area that decides point relevance.
func WithBounds(bounds point.Bounds) Option {
	return options.New(func(cfg *Config) error {
		if err := bounds.Validate(); err != nil {
			return err
		}
		cfg.Bounds = bounds

		return nil
	})
}

// WithDeltaLimits sets the clamp range for point uncertainties.
func WithDeltaLimits(limits point.DeltaLimits) Option {
	return options.New(func(cfg *Config) error {
		if err := limits.Validate(); err != nil {
			return err
		}
		cfg.DeltaLimits = limits

		return nil
	})
}

// WithOrder sets the initial polynomial order.
func WithOrder(order int) Option {
	return options.New(func(cfg *Config) error {
		if order < regression.MinOrder || order > regression.MaxOrder {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidOrder, order)
		}
		cfg.Order = order

		return nil
	})
}

// WithFitMode sets the initial fit mode.
func WithFitMode(mode format.FitMode) Option {
	return options.New(func(cfg *Config) error {
		if !mode.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidFitMode, mode)
		}
		cfg.FitMode = mode

		return nil
	})
}

// WithObserver subscribes obs before the initial recompute, so it sees the
// first notification too.
func WithObserver(obs Observer) Option {
	return options.NoError(func(cfg *Config) {
		if obs != nil {
			cfg.Observers = append(cfg.Observers, obs)
		}
	})
}
