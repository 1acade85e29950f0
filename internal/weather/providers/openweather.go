package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/i474232898/tempus/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap using
// the /weather (current) and /forecast (5 day / 3 hour) endpoints.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *resilientClient
}

// NewOpenWeatherProvider creates the provider. An empty baseURL selects the public API.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newResilientClient("openweather", client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// owmItem is the shape shared by the current endpoint and each forecast list
// entry. Every field is optional; normalize turns absences into unknowns.
type owmItem struct {
	Dt   *int64 `json:"dt"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		TempMin  *float64 `json:"temp_min"`
		TempMax  *float64 `json:"temp_max"`
		Pressure *float64 `json:"pressure"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Clouds *struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Rain *owmPrecip `json:"rain"`
	Snow *owmPrecip `json:"snow"`
}

type owmPrecip struct {
	OneH   *float64 `json:"1h"`
	ThreeH *float64 `json:"3h"`
}

// amount prefers the 3-hour accumulation over the 1-hour one.
func (p *owmPrecip) amount() *float64 {
	if p == nil {
		return nil
	}
	if p.ThreeH != nil {
		return p.ThreeH
	}
	return p.OneH
}

type owmCurrent struct {
	owmItem
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmForecast struct {
	List []owmItem `json:"list"`
}

// FetchCurrent returns the current conditions and the resolved city label.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location, units weather.Units) (weather.CurrentConditions, error) {
	var payload owmCurrent
	if err := p.get(ctx, "/weather", loc, units, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	city := payload.Name
	if city == "" {
		city = loc.City
	}
	country := payload.Sys.Country
	if country == "" {
		country = loc.Country
	}

	sample := normalize(payload.owmItem)
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now().UTC()
	}

	return weather.CurrentConditions{
		City:    city,
		Country: country,
		Sample:  sample,
	}, nil
}

// FetchForecast returns the 3-hour forecast list sorted by timestamp. Entries
// without a timestamp cannot be placed on a day and are dropped.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, units weather.Units) ([]weather.WeatherSample, error) {
	var payload owmForecast
	if err := p.get(ctx, "/forecast", loc, units, &payload); err != nil {
		return nil, err
	}

	samples := make([]weather.WeatherSample, 0, len(payload.List))
	for _, item := range payload.List {
		if item.Dt == nil {
			continue
		}
		samples = append(samples, normalize(item))
	}
	sortSamples(samples)
	return samples, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, loc weather.Location, units weather.Units, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather: %w", errNoAPIKey)
	}
	if strings.TrimSpace(loc.City) == "" {
		return fmt.Errorf("openweather: city is required")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", string(units))

	// city,country
	q := strings.TrimSpace(loc.City)
	if loc.Country != "" {
		q = fmt.Sprintf("%s,%s", q, strings.TrimSpace(loc.Country))
	}
	values.Set("q", q)

	resp, err := p.client.get(ctx, p.baseURL+path+"?"+values.Encode())
	if err != nil {
		var se httpStatusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return fmt.Errorf("openweather %s: %q: %w", path, loc.City, weather.ErrLocationNotFound)
		}
		return fmt.Errorf("openweather %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweather %s: decoding response: %w", path, err)
	}
	return nil
}

// normalize validates one loosely typed payload entry into a WeatherSample.
func normalize(item owmItem) weather.WeatherSample {
	var s weather.WeatherSample

	if item.Dt != nil {
		s.Timestamp = time.Unix(*item.Dt, 0).UTC()
	}
	if m := item.Main; m != nil {
		s.Temperature = weather.FromPtr(m.Temp)
		s.TemperatureMin = weather.FromPtr(m.TempMin)
		s.TemperatureMax = weather.FromPtr(m.TempMax)
		s.Pressure = weather.FromPtr(m.Pressure)
		s.Humidity = weather.FromPtr(m.Humidity)
	}
	if item.Clouds != nil {
		s.CloudCover = weather.FromPtr(item.Clouds.All)
	}
	if w := item.Wind; w != nil {
		s.WindSpeed = weather.FromPtr(w.Speed)
		s.WindDirection = weather.FromPtr(w.Deg)
	}

	precip := item.Rain.amount()
	if precip == nil {
		precip = item.Snow.amount()
	}
	if precip != nil {
		s.PrecipitationMM = weather.FromPtr(precip).Or(0)
	}

	if len(item.Weather) > 0 {
		s.ConditionMain = item.Weather[0].Main
		s.ConditionIcon = item.Weather[0].Icon
	}
	return s
}

func sortSamples(samples []weather.WeatherSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}
