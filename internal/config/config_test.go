package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/tempus/internal/weather"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "HTTP_TIMEOUT", "FETCH_INTERVAL",
		"DEFAULT_UNITS", "SEARCH_HISTORY_LIMIT", "PORT",
		"WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, weather.UnitsMetric, cfg.DefaultUnits)
	assert.Equal(t, 8, cfg.SearchHistoryLimit)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.Locations)
}

func TestLoadCustom(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FETCH_INTERVAL", "30m")
	t.Setenv("DEFAULT_UNITS", "imperial")
	t.Setenv("SEARCH_HISTORY_LIMIT", "5")
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, Austin")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR,US")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.OpenWeatherAPIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Minute, cfg.FetchInterval)
	assert.Equal(t, weather.UnitsImperial, cfg.DefaultUnits)
	assert.Equal(t, 5, cfg.SearchHistoryLimit)
	assert.Equal(t, []weather.Location{
		{City: "Paris", Country: "FR"},
		{City: "Austin", Country: "US"},
	}, cfg.Locations)
}

func TestLoadKeepsFractionalInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_INTERVAL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.FetchInterval)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"HTTP_TIMEOUT": "soon"}},
		{"zero timeout", map[string]string{"HTTP_TIMEOUT": "0s"}},
		{"bad interval", map[string]string{"FETCH_INTERVAL": "often"}},
		{"sub-minute interval", map[string]string{"FETCH_INTERVAL": "30s"}},
		{"bad units", map[string]string{"DEFAULT_UNITS": "kelvin"}},
		{"mismatched locations", map[string]string{"WEATHER_LOCATION_CITY": "Paris,Rome", "WEATHER_LOCATION_COUNTRY": "FR"}},
		{"empty city entry", map[string]string{"WEATHER_LOCATION_CITY": "Paris,", "WEATHER_LOCATION_COUNTRY": "FR,IT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
