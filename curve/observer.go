package curve

// Observer is notified after every recompute. Implementations may read the
// model but must not mutate it.
type Observer interface {
	CurveChanged(m *Model)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(m *Model)

// CurveChanged calls f(m).
func (f ObserverFunc) CurveChanged(m *Model) {
	f(m)
}

type subscription struct {
	id  uint64
	obs Observer
}

// Subscribe registers obs and returns a function that removes it. The
// returned function is idempotent.
func (m *Model) Subscribe(obs Observer) (unsubscribe func()) {
	m.nextSubID++
	id := m.nextSubID
	m.observers = append(m.observers, subscription{id: id, obs: obs})

	return func() {
		for i, s := range m.observers {
			if s.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) notify() {
	if len(m.observers) == 0 {
		return
	}

	m.notifying = true
	defer func() { m.notifying = false }()

	// Observers may unsubscribe while being notified.
	subs := make([]subscription, len(m.observers))
	copy(subs, m.observers)
	for _, s := range subs {
		s.obs.CurveChanged(m)
	}
}

// mustNotBeNotifying panics when a mutation happens from inside an observer
// callback. The model has a single writer.
func (m *Model) mustNotBeNotifying() {
	if m.notifying {
		panic("curve: model mutated from inside a change notification")
	}
}
