package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/tempus/internal/common"
	"github.com/i474232898/tempus/internal/settings"
	"github.com/i474232898/tempus/internal/weather"
)

// MemoryPreferenceStore keeps display preferences per profile ID.
type MemoryPreferenceStore struct {
	mu sync.RWMutex

	data map[string]*settings.Preferences

	// retention configuration
	maxHistory   int // max search entries per profile (0 = unlimited)
	defaultUnits weather.Units
	clock        clockwork.Clock
}

// NewMemoryPreferenceStore creates a store. A nil clock uses real time.
func NewMemoryPreferenceStore(maxHistory int, defaultUnits weather.Units, clock clockwork.Clock) *MemoryPreferenceStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryPreferenceStore{
		data:         make(map[string]*settings.Preferences),
		maxHistory:   maxHistory,
		defaultUnits: defaultUnits,
		clock:        clock,
	}
}

// Create registers a new profile with default preferences.
func (s *MemoryPreferenceStore) Create() settings.Preferences {
	p := settings.Defaults(uuid.NewString(), s.defaultUnits)
	p.UpdatedAt = s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[p.ID] = &p
	return clonePreferences(p)
}

// Get returns the preferences for id.
func (s *MemoryPreferenceStore) Get(id string) (settings.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return settings.Preferences{}, ErrNotFound
	}
	return clonePreferences(*p), nil
}

// Update applies a partial change.
func (s *MemoryPreferenceStore) Update(id string, u settings.Update) (settings.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return settings.Preferences{}, ErrNotFound
	}
	u.Apply(p)
	p.UpdatedAt = s.clock.Now().UTC()
	return clonePreferences(*p), nil
}

// RecordSearch puts loc at the front of the search history, drops an older
// entry for the same city and enforces retention. The searched city also
// becomes the last city.
func (s *MemoryPreferenceStore) RecordSearch(id string, loc weather.Location) (settings.Preferences, error) {
	now := s.clock.Now().UTC()
	entry := settings.SearchEntry{
		City:       strings.TrimSpace(loc.City),
		Country:    strings.TrimSpace(loc.Country),
		SearchedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return settings.Preferences{}, ErrNotFound
	}

	history := make([]settings.SearchEntry, 0, len(p.SearchHistory)+1)
	history = append(history, entry)
	for _, e := range p.SearchHistory {
		if common.EqualFoldTrim(e.City, entry.City) && common.EqualFoldTrim(e.Country, entry.Country) {
			continue
		}
		history = append(history, e)
	}

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[:s.maxHistory]
	}

	last := entry.Location()
	p.SearchHistory = history
	p.LastCity = &last
	p.UpdatedAt = now
	return clonePreferences(*p), nil
}

// ClearHistory empties the search history. The last city is kept.
func (s *MemoryPreferenceStore) ClearHistory(id string) (settings.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return settings.Preferences{}, ErrNotFound
	}
	p.SearchHistory = []settings.SearchEntry{}
	p.UpdatedAt = s.clock.Now().UTC()
	return clonePreferences(*p), nil
}

func clonePreferences(p settings.Preferences) settings.Preferences {
	p.SearchHistory = append([]settings.SearchEntry{}, p.SearchHistory...)
	if p.LastCity != nil {
		loc := *p.LastCity
		p.LastCity = &loc
	}
	return p
}
