package store

import (
	"sync"

	"github.com/i474232898/tempus/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given key.
	ErrNotFound = weather.ErrNotFound
)

// viewEntry is the current view for one key plus its advice cursor.
type viewEntry struct {
	view     weather.View
	rotation *weather.Rotation
}

// MemoryViewStore is a concurrency-safe in-memory view state. Each key holds
// exactly one view; saving replaces it as a whole.
type MemoryViewStore struct {
	mu sync.RWMutex

	// key: weather.ViewKey
	data map[string]*viewEntry
}

// NewMemoryViewStore creates an empty MemoryViewStore.
func NewMemoryViewStore() *MemoryViewStore {
	return &MemoryViewStore{
		data: make(map[string]*viewEntry),
	}
}

// SaveView replaces the view for key and rewinds its advice rotation.
func (s *MemoryViewStore) SaveView(key string, view weather.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.data[key]; ok {
		entry.view = view
		entry.rotation.Reset(view.Advice)
		return
	}
	s.data[key] = &viewEntry{
		view:     view,
		rotation: weather.NewRotation(view.Advice),
	}
}

// GetView returns the current view for key.
func (s *MemoryViewStore) GetView(key string) (weather.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return weather.View{}, ErrNotFound
	}
	return entry.view, nil
}

// CurrentAdvice returns the advice for key with its active variant. The
// read holds the store lock so a concurrent SaveView cannot split it.
func (s *MemoryViewStore) CurrentAdvice(key string) (weather.AdviceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return weather.AdviceState{}, ErrNotFound
	}
	return entry.rotation.State(), nil
}

// NextAdvice advances the advice rotation for key.
func (s *MemoryViewStore) NextAdvice(key string) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return "", 0, ErrNotFound
	}
	text, idx := entry.rotation.Next()
	return text, idx, nil
}
