package server

import (
	"log/slog"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/events"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/metrics"
	"github.com/arloliu/curvefit/snapshot"
	"github.com/arloliu/curvefit/store"
)

// ManagerConfig holds the dependencies of a Manager.
type ManagerConfig struct {
	Store          store.Store
	Publisher      events.Publisher
	Metrics        *metrics.Collector
	Logger         *slog.Logger
	ModelOptions   []curve.Option
	EncoderOptions []snapshot.EncoderOption
}

func defaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Publisher: events.NopPublisher{},
		Logger:    slog.New(slog.DiscardHandler),
	}
}

// ManagerOption is a functional option for NewManager.
type ManagerOption = options.Option[*ManagerConfig]

// WithStore sets where session snapshots are persisted. Without it sessions
// live in a MemoryStore.
func WithStore(s store.Store) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		cfg.Store = s
	})
}

// WithPublisher sets the change event publisher.
func WithPublisher(p events.Publisher) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		if p == nil {
			p = events.NopPublisher{}
		}
		cfg.Publisher = p
	})
}

// WithMetrics attaches a metrics collector to every session.
func WithMetrics(c *metrics.Collector) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		cfg.Metrics = c
	})
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		cfg.Logger = logger
	})
}

// WithModelOptions sets options applied to every new curve model, such as
// bounds and delta limits.
func WithModelOptions(opts ...curve.Option) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		cfg.ModelOptions = append(cfg.ModelOptions, opts...)
	})
}

// WithEncoderOptions sets how session snapshots are encoded.
func WithEncoderOptions(opts ...snapshot.EncoderOption) ManagerOption {
	return options.NoError(func(cfg *ManagerConfig) {
		cfg.EncoderOptions = append(cfg.EncoderOptions, opts...)
	})
}
