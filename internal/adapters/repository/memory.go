package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/domain/model"
)

const defaultMemoryCapacity = 10_000

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the most recent assessments in a fixed-size ring.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []model.Assessment
	next     int // slot the next Save writes
	size     int
	index    map[uuid.UUID]int // id -> slot
	closed   bool
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultMemoryCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]model.Assessment, s.capacity)
	s.index = make(map[uuid.UUID]int, s.capacity)
	return s
}

// Save implements Store. When full, the oldest assessment is dropped.
func (s *MemoryStore) Save(_ context.Context, a model.Assessment) error { //nolint:gocritic // hugeParam: stored by value
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.index[a.ID]; ok {
		return nil
	}

	if s.size == s.capacity {
		delete(s.index, s.ring[s.next].ID)
	} else {
		s.size++
	}
	s.ring[s.next] = a
	s.index[a.ID] = s.next
	s.next = (s.next + 1) % s.capacity
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (model.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.index[id]
	if !ok {
		return model.Assessment{}, ErrNotFound
	}
	return s.ring[slot], nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]model.Assessment, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Assessment, 0, min(f.Limit, s.size))
	// walk backwards from the most recent write
	for i := 1; i <= s.size && len(out) < f.Limit; i++ {
		slot := (s.next - i + s.capacity) % s.capacity
		if f.match(&s.ring[slot]) {
			out = append(out, s.ring[slot])
		}
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

// Capacity returns the ring size.
func (s *MemoryStore) Capacity() int { return s.capacity }

// Ping implements Pinger. A closed ring no longer accepts writes.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store. Stored assessments remain readable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
