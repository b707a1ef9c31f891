package app

import (
	"fmt"
	"sync"

	"github.com/randomtoy/oracle-go/internal/domain"
)

// ReadingStore keeps in-progress readings in memory. A reading is dropped when
// the client discards it or starts a new one in its place.
type ReadingStore struct {
	mu       sync.RWMutex
	readings map[string]*Reading
}

func NewReadingStore() *ReadingStore {
	return &ReadingStore{readings: make(map[string]*Reading)}
}

func (s *ReadingStore) Put(r *Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[r.ID] = r
}

func (s *ReadingStore) Get(id string) (*Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrReadingNotFound, id)
	}
	return r, nil
}

// Delete discards the reading together with its follow-up conversation.
func (s *ReadingStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[id]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrReadingNotFound, id)
	}
	delete(s.readings, id)
	return nil
}

// Replace stores r and drops the reading it supersedes, if any.
func (s *ReadingStore) Replace(old string, r *Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old != "" {
		delete(s.readings, old)
	}
	s.readings[r.ID] = r
}

func (s *ReadingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}
