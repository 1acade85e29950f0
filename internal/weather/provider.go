package weather

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when nothing is held for a key.
var ErrNotFound = errors.New("not found")

// ErrLocationNotFound is returned by providers when the upstream API does not know the city.
var ErrLocationNotFound = errors.New("location not found")

// Provider abstracts the upstream weather API (OpenWeatherMap).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentConditions, error)
	// FetchForecast returns 3-hour samples in chronological order.
	FetchForecast(ctx context.Context, loc Location, units Units) ([]WeatherSample, error)
}

// ViewStore holds the latest view per view key together with its advice rotation.
type ViewStore interface {
	// SaveView replaces the view for key and rewinds its advice rotation.
	SaveView(key string, view View)
	GetView(key string) (View, error)
	// CurrentAdvice reads the advice and its active variant atomically.
	CurrentAdvice(key string) (AdviceState, error)
	NextAdvice(key string) (string, int, error)
}

// Observer receives fetch and refresh measurements.
type Observer interface {
	ObserveFetch(provider, kind string, err error, elapsed time.Duration)
	ObserveRefresh(view View)
}

type noopObserver struct{}

func (noopObserver) ObserveFetch(string, string, error, time.Duration) {}
func (noopObserver) ObserveRefresh(View)                              {}
