package events

import (
	"log/slog"
	"math"
	"time"

	"github.com/arloliu/curvefit/curve"
)

// Notifier publishes a CurveChangedEvent each time the model it observes
// recomputes. Publish failures are logged, never returned, so a broker outage
// does not block editing.
type Notifier struct {
	sessionID string
	pub       Publisher
	logger    *slog.Logger
	now       func() time.Time
}

var _ curve.Observer = (*Notifier)(nil)

// NewNotifier creates a notifier for one session. A nil logger discards.
func NewNotifier(sessionID string, pub Publisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Notifier{sessionID: sessionID, pub: pub, logger: logger, now: time.Now}
}

func (n *Notifier) CurveChanged(m *curve.Model) {
	evt := NewCurveChangedEvent(n.sessionID, m, n.now())
	if err := n.pub.Publish(SubjectSessionChanged(n.sessionID), evt); err != nil {
		n.logger.Warn("failed to publish curve change", "session_id", n.sessionID, "error", err)
	}
}

// NewCurveChangedEvent captures the current state of m.
func NewCurveChangedEvent(sessionID string, m *curve.Model, at time.Time) CurveChangedEvent {
	evt := CurveChangedEvent{
		SessionID:      sessionID,
		Order:          m.Order(),
		Mode:           m.FitMode().String(),
		Coefficients:   m.Coefficients(),
		ChiSquared:     m.ChiSquared(),
		RelevantPoints: len(m.RelevantPoints()),
		Degenerate:     m.Degenerate(),
		Timestamp:      at.UTC(),
	}
	if r2 := m.RSquared(); !math.IsNaN(r2) {
		evt.RSquared = &r2
	}

	return evt
}
