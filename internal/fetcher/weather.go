package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

const weatherUpstream = "openweathermap"

// WeatherReport is the normalized weather fetch result.
type WeatherReport struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	TempC     float64 `json:"temp_c"`
	Condition string  `json:"condition"`
}

// Summary renders the report as the user-facing weather text.
// Weather replies bypass the composer model and use this directly.
func (w *WeatherReport) Summary() string {
	return fmt.Sprintf("Weather in %s, %s:\nTemperature: %.1f°C\nCondition: %s",
		w.City, w.Country, w.TempC, w.Condition)
}

// WeatherFetcher queries the OpenWeatherMap current-weather endpoint.
type WeatherFetcher struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewWeatherFetcher creates a weather fetcher. baseURL is the service
// root without a trailing slash (tests point it at a local server).
func NewWeatherFetcher(apiKey, baseURL string, timeout time.Duration) *WeatherFetcher {
	return &WeatherFetcher{
		client:  newHTTPClient(timeout),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name implements Fetcher.
func (f *WeatherFetcher) Name() string { return "get_weather" }

// RequiredParams implements Fetcher.
func (f *WeatherFetcher) RequiredParams() []string { return []string{"city"} }

// openWeatherResponse mirrors the subset of the OpenWeatherMap payload
// the assistant uses.
type openWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch implements Fetcher with one call to /data/2.5/weather.
func (f *WeatherFetcher) Fetch(ctx context.Context, params map[string]string) (*Result, *Error) {
	city := cleanParam(params["city"])
	if city == "" {
		return nil, MissingParamError(f.Name(), "city")
	}
	if f.apiKey == "" {
		return nil, newError(apperrors.ErrUpstreamUnavailable, weatherUpstream,
			"weather API key not configured", apperrors.ErrUpstreamUnavailable)
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", f.apiKey)
	q.Set("units", "metric")
	endpoint := f.baseURL + "/data/2.5/weather?" + q.Encode()

	resp, ferr := getJSON(ctx, f.client, weatherUpstream, endpoint)
	if ferr != nil {
		return nil, ferr
	}
	defer func() { _ = resp.Body.Close() }()

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, malformedError(weatherUpstream, err)
	}
	if payload.Name == "" || len(payload.Weather) == 0 {
		return nil, malformedError(weatherUpstream,
			fmt.Errorf("incomplete weather data for %q", city))
	}

	return &Result{
		Kind: intent.Weather,
		Weather: &WeatherReport{
			City:      payload.Name,
			Country:   payload.Sys.Country,
			TempC:     payload.Main.Temp,
			Condition: payload.Weather[0].Description,
		},
	}, nil
}
