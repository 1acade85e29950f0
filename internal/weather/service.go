package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Service orchestrates fetching from the provider, computing the display
// view and publishing it to the view store.
type Service struct {
	provider Provider
	views    ViewStore
	observer Observer
	clock    clockwork.Clock
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver reports fetch and refresh measurements to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock sets the time source used for FetchedAt.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewService creates a new Service.
func NewService(provider Provider, views ViewStore, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		views:    views,
		observer: noopObserver{},
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches current conditions and the forecast concurrently, recomputes
// the view and replaces the stored one. A failed forecast yields a view with
// no daily or hourly entries; a failed current fetch fails the refresh and
// keeps the previous view.
func (s *Service) Refresh(ctx context.Context, loc Location, units Units) (View, error) {
	if s.provider == nil {
		log.Printf("ERROR: no provider available to fetch weather data for %s", loc.Key())
		return View{}, fmt.Errorf("no weather provider configured")
	}

	var (
		wg         sync.WaitGroup
		current    CurrentConditions
		currentErr error
		samples    []WeatherSample
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := s.clock.Now()
		current, currentErr = s.provider.FetchCurrent(ctx, loc, units)
		s.observer.ObserveFetch(s.provider.Name(), "current", currentErr, s.clock.Since(start))
	}()
	go func() {
		defer wg.Done()
		start := s.clock.Now()
		list, err := s.provider.FetchForecast(ctx, loc, units)
		s.observer.ObserveFetch(s.provider.Name(), "forecast", err, s.clock.Since(start))
		if err != nil {
			// Partial success: the current conditions are still worth showing.
			log.Printf("provider %s forecast failed for %s: %v", s.provider.Name(), loc.Key(), err)
			return
		}
		samples = list
	}()
	wg.Wait()

	if currentErr != nil {
		return View{}, fmt.Errorf("fetching current weather for %s: %w", loc.Key(), currentErr)
	}

	view := BuildView(loc, units, current, samples)
	view.FetchedAt = s.clock.Now().UTC()

	s.views.SaveView(ViewKey(loc, units), view)
	s.observer.ObserveRefresh(view)
	log.Printf("DEBUG: refreshed %s (%s): %d days, %d hourly", loc.Key(), units, len(view.Daily), len(view.Hourly))
	return view, nil
}

// BuildView runs the three core units over freshly fetched data.
func BuildView(loc Location, units Units, current CurrentConditions, samples []WeatherSample) View {
	if samples == nil {
		samples = []WeatherSample{}
	}
	cur := current.Sample
	return View{
		Location: loc,
		Units:    units,
		Current:  current,
		Daily:    AggregateDaily(samples),
		Hourly:   DeriveHourly(SelectHourly(samples, ""), units),
		Advice:   SelectAdvisory(cur.Temperature, units, cur.ConditionMain, cur.WindSpeed),
		Samples:  samples,
	}
}

// GetView returns the stored view, refreshing when none exists or when
// forceRefresh is set.
func (s *Service) GetView(ctx context.Context, loc Location, units Units, forceRefresh bool) (View, error) {
	if !forceRefresh {
		view, err := s.views.GetView(ViewKey(loc, units))
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return View{}, err
		}
	}
	return s.Refresh(ctx, loc, units)
}

// Hourly returns hourly details for dayKey (YYYY-MM-DD), or the upcoming
// hours when dayKey is empty.
func (s *Service) Hourly(ctx context.Context, loc Location, units Units, dayKey string) ([]HourlyDetail, error) {
	view, err := s.GetView(ctx, loc, units, false)
	if err != nil {
		return nil, err
	}
	return DeriveHourly(SelectHourly(view.Samples, dayKey), units), nil
}

// CurrentAdvice returns the advice of the stored view and its active
// variant, fetching the view first when none exists.
func (s *Service) CurrentAdvice(ctx context.Context, loc Location, units Units) (AdviceState, error) {
	if _, err := s.GetView(ctx, loc, units, false); err != nil {
		return AdviceState{}, err
	}
	return s.views.CurrentAdvice(ViewKey(loc, units))
}

// NextAdvice advances the rotation of the stored view. It does not fetch.
func (s *Service) NextAdvice(loc Location, units Units) (string, int, error) {
	return s.views.NextAdvice(ViewKey(loc, units))
}
