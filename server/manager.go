package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/events"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/metrics"
	"github.com/arloliu/curvefit/snapshot"
	"github.com/arloliu/curvefit/store"
)

// session pairs a curve model with the lock that serializes its single writer.
type session struct {
	id          uuid.UUID
	mu          sync.Mutex
	model       *curve.Model
	unsubscribe []func()
	// deleted is set under mu once Delete has claimed the session. Callers that
	// fetched it earlier must not touch or persist it afterwards.
	deleted bool
}

// Manager holds the active sessions, loading them from the store on first use
// and persisting a snapshot after every mutation.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	store      store.Store
	pub        events.Publisher
	collector  *metrics.Collector
	logger     *slog.Logger
	modelOpts  []curve.Option
	encodeOpts []snapshot.EncoderOption
	now        func() time.Time
}

// NewManager creates a session manager.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	cfg := defaultManagerConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}

	// Reject bad model options up front rather than on the first request.
	if _, err := curve.New(cfg.ModelOptions...); err != nil {
		return nil, fmt.Errorf("model options: %w", err)
	}

	return &Manager{
		sessions:   make(map[uuid.UUID]*session),
		store:      cfg.Store,
		pub:        cfg.Publisher,
		collector:  cfg.Metrics,
		logger:     cfg.Logger,
		modelOpts:  cfg.ModelOptions,
		encodeOpts: cfg.EncoderOptions,
		now:        time.Now,
	}, nil
}

// Create starts a new session. Extra options override the manager's model
// options, for example the initial order.
func (m *Manager) Create(ctx context.Context, opts ...curve.Option) (uuid.UUID, error) {
	model, err := curve.New(append(m.modelOptions(), opts...)...)
	if err != nil {
		return uuid.Nil, err
	}

	return m.add(ctx, model)
}

// Import starts a new session from an encoded snapshot.
func (m *Manager) Import(ctx context.Context, data []byte) (uuid.UUID, error) {
	s, err := snapshot.Decode(data)
	if err != nil {
		return uuid.Nil, err
	}

	model, err := curve.New(m.modelOptions()...)
	if err != nil {
		return uuid.Nil, err
	}
	if err := model.Restore(s); err != nil {
		return uuid.Nil, err
	}

	return m.add(ctx, model)
}

func (m *Manager) add(ctx context.Context, model *curve.Model) (uuid.UUID, error) {
	sess := m.attach(uuid.New(), model)
	if err := m.persist(ctx, sess); err != nil {
		m.detach(sess, false)
		return uuid.Nil, err
	}

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	m.publish(events.SubjectSessionCreated(sess.id.String()), events.SessionEvent{
		SessionID: sess.id.String(),
		Timestamp: m.now().UTC(),
	})
	m.logger.Info("session created", "session_id", sess.id)

	return sess.id, nil
}

// Read runs fn with exclusive access to the session model. fn must not mutate it.
func (m *Manager) Read(ctx context.Context, id uuid.UUID, fn func(model *curve.Model) error) error {
	sess, err := m.get(ctx, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.deleted {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}

	return fn(sess.model)
}

// Update runs fn with exclusive access to the session model and persists the
// session when fn succeeds.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, fn func(model *curve.Model) error) error {
	sess, err := m.get(ctx, id)
	if err != nil {
		return err
	}

	return m.update(ctx, sess, fn)
}

func (m *Manager) update(ctx context.Context, sess *session, fn func(model *curve.Model) error) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.deleted {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, sess.id)
	}
	if err := fn(sess.model); err != nil {
		return err
	}

	return m.persist(ctx, sess)
}

// Snapshot encodes the session.
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var data []byte
	err := m.Read(ctx, id, func(model *curve.Model) error {
		var err error
		data, err = snapshot.Encode(model.Snapshot(), m.encodeOpts...)

		return err
	})

	return data, err
}

// Delete removes a session from memory and from the store.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	sess, cached := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if cached {
		m.detach(sess, true)
	}

	err := m.store.Delete(ctx, id)
	if err != nil && !(cached && errors.Is(err, errs.ErrSessionNotFound)) {
		return err
	}

	m.publish(events.SubjectSessionDeleted(id.String()), events.SessionEvent{
		SessionID: id.String(),
		Timestamp: m.now().UTC(),
	})
	m.logger.Info("session deleted", "session_id", id)

	return nil
}

// List describes every persisted session.
func (m *Manager) List(ctx context.Context) ([]store.Info, error) {
	return m.store.List(ctx)
}

// Close drops all sessions from memory. Persisted snapshots are kept.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*session)
	m.mu.Unlock()

	for _, sess := range sessions {
		m.detach(sess, false)
	}
}

func (m *Manager) get(ctx context.Context, id uuid.UUID) (*session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return sess, nil
	}

	data, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	model, err := curve.New(m.modelOptions()...)
	if err != nil {
		return nil, err
	}
	if err := model.Restore(s); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have loaded it meanwhile.
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	sess = m.attach(id, model)
	m.sessions[id] = sess
	m.logger.Debug("session loaded", "session_id", id, "points", len(s.Points))

	return sess, nil
}

// attach subscribes the session observers after the model is fully built, so
// construction and restore do not emit events.
func (m *Manager) attach(id uuid.UUID, model *curve.Model) *session {
	sess := &session{id: id, model: model}
	sess.unsubscribe = append(sess.unsubscribe,
		model.Subscribe(events.NewNotifier(id.String(), m.pub, m.logger)))
	if m.collector != nil {
		sess.unsubscribe = append(sess.unsubscribe, model.Subscribe(m.collector))
		m.collector.SessionOpened()
	}

	return sess
}

// detach unsubscribes the session observers. With deleted set, requests still
// holding the session see it as gone.
func (m *Manager) detach(sess *session, deleted bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.deleted = sess.deleted || deleted

	for _, unsubscribe := range sess.unsubscribe {
		unsubscribe()
	}
	sess.unsubscribe = nil
	if m.collector != nil {
		m.collector.SessionClosed()
	}
}

func (m *Manager) persist(ctx context.Context, sess *session) error {
	data, err := snapshot.Encode(sess.model.Snapshot(), m.encodeOpts...)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.id, err)
	}
	if err := m.store.Save(ctx, sess.id, data); err != nil {
		m.logger.Error("failed to persist session", "session_id", sess.id, "error", err)
		return err
	}

	return nil
}

func (m *Manager) publish(subject string, evt any) {
	if err := m.pub.Publish(subject, evt); err != nil {
		m.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func (m *Manager) modelOptions() []curve.Option {
	return append([]curve.Option{curve.WithLogger(m.logger)}, m.modelOpts...)
}
