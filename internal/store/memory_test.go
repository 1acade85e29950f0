package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/tempus/internal/settings"
	"github.com/i474232898/tempus/internal/weather"
)

func TestMemoryViewStoreReplacesViewAndRewindsAdvice(t *testing.T) {
	s := NewMemoryViewStore()
	key := weather.ViewKey(weather.Location{City: "Oslo", Country: "NO"}, weather.UnitsMetric)

	_, err := s.GetView(key)
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.NextAdvice(key)
	require.ErrorIs(t, err, ErrNotFound)

	cold := weather.SelectAdvisory(weather.Known(-3), weather.UnitsMetric, "Clear", weather.Known(1))
	require.Len(t, cold.Variants, 2)
	s.SaveView(key, weather.View{Advice: cold})

	state, err := s.CurrentAdvice(key)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, cold.Variants[0], state.Text)
	assert.Equal(t, cold, state.Advice)

	text, idx, err := s.NextAdvice(key)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, cold.Variants[1], text)

	// A new snapshot starts again at the first variant.
	hot := weather.SelectAdvisory(weather.Known(31), weather.UnitsMetric, "Clear", weather.Known(1))
	s.SaveView(key, weather.View{Advice: hot})
	state, err = s.CurrentAdvice(key)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, weather.AdviceHot, state.Advice.Category)
	assert.Equal(t, hot.Variants[0], state.Text)
}

func TestMemoryViewStoreAdviceStaysConsistentAcrossSaves(t *testing.T) {
	s := NewMemoryViewStore()
	key := weather.ViewKey(weather.Location{City: "Oslo"}, weather.UnitsMetric)

	snapshots := []weather.Advice{
		weather.SelectAdvisory(weather.Known(-3), weather.UnitsMetric, "Clear", weather.Known(1)),
		weather.SelectAdvisory(weather.Known(31), weather.UnitsMetric, "Clear", weather.Known(1)),
	}
	s.SaveView(key, weather.View{Advice: snapshots[0]})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.SaveView(key, weather.View{Advice: snapshots[i%2]})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _, _ = s.NextAdvice(key)
		}
	}()

	for i := 0; i < 500; i++ {
		state, err := s.CurrentAdvice(key)
		require.NoError(t, err)
		require.Contains(t, state.Advice.Variants, state.Text)
		require.Equal(t, state.Advice.Variant(state.Index), state.Text)
	}
	wg.Wait()
}

func TestPreferenceStoreLifecycle(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	s := NewMemoryPreferenceStore(3, weather.UnitsImperial, clock)

	p := s.Create()
	require.NotEmpty(t, p.ID)
	assert.Equal(t, weather.UnitsImperial, p.Units)
	assert.Equal(t, settings.ThemeDark, p.Theme)
	assert.Empty(t, p.SearchHistory)

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	theme := "light"
	lock := true
	clock.Advance(time.Minute)
	p, err = s.Update(p.ID, settings.Update{Theme: &theme, LockScreen: &lock})
	require.NoError(t, err)
	assert.Equal(t, settings.ThemeLight, p.Theme)
	assert.True(t, p.LockScreen)
	assert.Equal(t, clock.Now().UTC(), p.UpdatedAt)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPreferenceStoreSearchHistory(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewMemoryPreferenceStore(3, weather.UnitsMetric, clock)
	id := s.Create().ID

	for _, city := range []string{"Paris", "Berlin", "Rome", "paris ", "Madrid"} {
		clock.Advance(time.Second)
		_, err := s.RecordSearch(id, weather.Location{City: city})
		require.NoError(t, err)
	}

	p, err := s.Get(id)
	require.NoError(t, err)

	var cities []string
	for _, e := range p.SearchHistory {
		cities = append(cities, e.City)
	}
	assert.Equal(t, []string{"Madrid", "paris", "Rome"}, cities)
	require.NotNil(t, p.LastCity)
	assert.Equal(t, "Madrid", p.LastCity.City)

	p, err = s.ClearHistory(id)
	require.NoError(t, err)
	assert.Empty(t, p.SearchHistory)
	assert.NotNil(t, p.LastCity)

	_, err = s.RecordSearch("missing", weather.Location{City: "Paris"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPreferenceStoreReturnsCopies(t *testing.T) {
	s := NewMemoryPreferenceStore(0, weather.UnitsMetric, nil)
	id := s.Create().ID
	p, err := s.RecordSearch(id, weather.Location{City: "Lima"})
	require.NoError(t, err)

	p.SearchHistory[0].City = "changed"
	p.LastCity.City = "changed"

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Lima", got.SearchHistory[0].City)
	assert.Equal(t, "Lima", got.LastCity.City)
}
