// Package metrics exposes Prometheus instrumentation for curve models and
// sessions.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/curvefit/curve"
)

const namespace = "curvefit"

// Collector counts recomputes and tracks session state. Attach it to a model
// with Subscribe or curve.WithObserver.
type Collector struct {
	recomputes     *prometheus.CounterVec
	degenerate     prometheus.Counter
	relevantPoints prometheus.Histogram
	sessions       prometheus.Gauge
}

var _ curve.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Curve recomputes by fit mode.",
		}, []string{"mode"}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_fits_total",
			Help:      "Best fits over two or more relevant points that fell back to zero coefficients.",
		}),
		relevantPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relevant_points",
			Help:      "Relevant points per recompute.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
	}

	for _, m := range []prometheus.Collector{c.recomputes, c.degenerate, c.relevantPoints, c.sessions} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return c, nil
}

// CurveChanged records one recompute of m.
func (c *Collector) CurveChanged(m *curve.Model) {
	relevant := len(m.RelevantPoints())

	c.recomputes.WithLabelValues(m.FitMode().String()).Inc()
	// Sessions with fewer than two points are always degenerate; only count
	// fits that had data to work with.
	if m.Degenerate() && relevant >= 2 {
		c.degenerate.Inc()
	}
	c.relevantPoints.Observe(float64(relevant))
}

func (c *Collector) SessionOpened() { c.sessions.Inc() }
func (c *Collector) SessionClosed() { c.sessions.Dec() }
