package store

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/errs"
)

type memoryRecord struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore keeps snapshots in process memory. It is the default when no
// database is configured, and is used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]memoryRecord
	closed  bool
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]memoryRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id uuid.UUID, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errs.ErrStoreClosed
	}
	s.records[id] = memoryRecord{
		data:      append([]byte(nil), snapshot...),
		updatedAt: s.now(),
	}

	return nil
}

func (s *MemoryStore) Load(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errs.ErrStoreClosed
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}

	return append([]byte(nil), rec.data...), nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errs.ErrStoreClosed
	}
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	delete(s.records, id)

	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errs.ErrStoreClosed
	}
	out := make([]Info, 0, len(s.records))
	for id, rec := range s.records {
		out = append(out, Info{ID: id, UpdatedAt: rec.updatedAt, Size: len(rec.data)})
	}
	sortInfos(out)

	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil

	return nil
}

// sortInfos orders by ID. Byte order matches the order of the canonical
// string form.
func sortInfos(infos []Info) {
	slices.SortFunc(infos, func(a, b Info) int { return bytes.Compare(a.ID[:], b.ID[:]) })
}
