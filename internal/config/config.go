package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/tempus/internal/weather"
)

// minFetchInterval keeps background refreshes within the provider's rate limits.
const minFetchInterval = time.Minute

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// FetchInterval controls how often the scheduler refreshes each location.
	FetchInterval time.Duration

	// DefaultUnits applies when a request or a new profile names none.
	DefaultUnits weather.Units

	// Locations refreshed in the background.
	Locations []weather.Location

	// SearchHistoryLimit is the max number of searches kept per profile (0 = unlimited).
	SearchHistoryLimit int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %q", os.Getenv("HTTP_TIMEOUT"))
	}
	cfg.HTTPTimeout = timeout

	// Scheduler interval: default 15 minutes, used as given.
	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	if interval < minFetchInterval {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL %s: must be at least %s", interval, minFetchInterval)
	}
	cfg.FetchInterval = interval

	units := getenvDefault("DEFAULT_UNITS", string(weather.UnitsMetric))
	if units != string(weather.UnitsMetric) && units != string(weather.UnitsImperial) {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS %q: must be metric or imperial", units)
	}
	cfg.DefaultUnits = weather.Units(units)

	cfg.SearchHistoryLimit = getenvInt("SEARCH_HISTORY_LIMIT", 8)
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadLocations pairs WEATHER_LOCATION_CITY with WEATHER_LOCATION_COUNTRY.
// Both are comma separated; an unset city list means no background refresh.
func loadLocations() ([]weather.Location, error) {
	city := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	if city == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		c := strings.TrimSpace(cities[i])
		if c == "" {
			return nil, fmt.Errorf("WEATHER_LOCATION_CITY entry %d is empty", i)
		}
		locs = append(locs, weather.Location{
			City:    c,
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
