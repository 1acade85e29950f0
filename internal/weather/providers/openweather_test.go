package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/tempus/internal/weather"
)

const forecastBody = `{
  "list": [
    {"dt": 1718200800, "main": {"temp": 21.5, "temp_min": 20.1, "temp_max": 22.0, "pressure": 1012, "humidity": 60},
     "weather": [{"main": "Clouds", "icon": "03d"}], "clouds": {"all": 40}, "wind": {"speed": 3.2, "deg": 200}},
    {"dt": 1718190000, "main": {"temp": 18.0, "humidity": 70},
     "weather": [{"main": "Rain", "icon": "10n"}], "rain": {"3h": 1.25, "1h": 0.4}},
    {"main": {"temp": 99}},
    {"dt": 1718211600, "snow": {"1h": 0.7}}
  ]
}`

const currentBody = `{
  "dt": 1718200000, "name": "Paris", "sys": {"country": "FR"},
  "main": {"temp": 64.4, "humidity": 55},
  "weather": [{"main": "Clear", "icon": "01d"}],
  "wind": {"speed": 5}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key", srv.URL)
	p.client.backoff = Backoff{MaxRetries: 2, Initial: time.Millisecond, Max: 5 * time.Millisecond}
	return p
}

func TestOpenWeatherFetchForecast(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "Paris,FR", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(forecastBody))
	})

	samples, err := p.FetchForecast(context.Background(), weather.Location{City: "Paris", Country: "FR"}, weather.UnitsMetric)
	require.NoError(t, err)
	require.Len(t, samples, 3, "entry without dt is dropped")

	// Sorted by timestamp.
	assert.Equal(t, time.Unix(1718190000, 0).UTC(), samples[0].Timestamp)
	assert.Equal(t, time.Unix(1718200800, 0).UTC(), samples[1].Timestamp)

	rainy := samples[0]
	assert.Equal(t, 1.25, rainy.PrecipitationMM, "3h preferred over 1h")
	assert.Equal(t, "Rain", rainy.ConditionMain)
	assert.False(t, rainy.TemperatureMin.IsKnown())
	assert.False(t, rainy.WindDirection.IsKnown())

	cloudy := samples[1]
	assert.Equal(t, 0.0, cloudy.PrecipitationMM)
	assert.Equal(t, 20.1, cloudy.TemperatureMin.Or(0))
	assert.Equal(t, 200.0, cloudy.WindDirection.Or(0))
	assert.Equal(t, 40.0, cloudy.CloudCover.Or(0))
	assert.Equal(t, "03d", cloudy.ConditionIcon)

	snowy := samples[2]
	assert.Equal(t, 0.7, snowy.PrecipitationMM)
	assert.False(t, snowy.Temperature.IsKnown())
	assert.False(t, snowy.HasCondition())
}

func TestOpenWeatherFetchCurrent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(currentBody))
	})

	cur, err := p.FetchCurrent(context.Background(), weather.Location{City: "paris"}, weather.UnitsImperial)
	require.NoError(t, err)
	assert.Equal(t, "Paris", cur.City)
	assert.Equal(t, "FR", cur.Country)
	assert.Equal(t, 64.4, cur.Sample.Temperature.Or(0))
	assert.Equal(t, "Clear", cur.Sample.ConditionMain)
}

func TestOpenWeatherRequiresAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "", "")
	_, err := p.FetchCurrent(context.Background(), weather.Location{City: "Paris"}, weather.UnitsMetric)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoAPIKey)
}

func TestOpenWeatherDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := p.FetchForecast(context.Background(), weather.Location{City: "Nowhere"}, weather.UnitsMetric)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenWeatherUnknownCitiesKeepCircuitClosed(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Paris,FR" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(currentBody))
	})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := p.FetchCurrent(ctx, weather.Location{City: "Nowhere"}, weather.UnitsMetric)
		require.ErrorIs(t, err, weather.ErrLocationNotFound)
	}

	cur, err := p.FetchCurrent(ctx, weather.Location{City: "Paris", Country: "FR"}, weather.UnitsMetric)
	require.NoError(t, err)
	assert.Equal(t, "Paris", cur.City)
}

func TestOpenWeatherServerErrorsOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx := context.Background()
	paris := weather.Location{City: "Paris"}

	// Two calls of three attempts each exceed five consecutive failures.
	for i := 0; i < 2; i++ {
		_, err := p.FetchCurrent(ctx, paris, weather.UnitsMetric)
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.FetchCurrent(ctx, paris, weather.UnitsMetric)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(6), calls.Load())
}

func TestOpenWeatherUnauthorized(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := p.FetchCurrent(context.Background(), weather.Location{City: "Paris"}, weather.UnitsMetric)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpected)
	assert.NotErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeatherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	})

	samples, err := p.FetchForecast(context.Background(), weather.Location{City: "Paris"}, weather.UnitsMetric)
	require.NoError(t, err)
	assert.Len(t, samples, 3)
	assert.Equal(t, int32(3), calls.Load())
}
