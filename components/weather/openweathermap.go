package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/places"
)

const (
	owmWeatherURL = "http://api.openweathermap.org/data/2.5/weather"
	owmGeocodeURL = "http://api.openweathermap.org/geo/1.0/direct"
)

// OpenWeatherMap reads current conditions from the OpenWeatherMap
// current-weather endpoint and doubles as the secondary geocoder via
// the geo endpoint. URLs and HTTPClient are exported so tests can
// point the client at a local server.
type OpenWeatherMap struct {
	APIKey     string
	WeatherURL string
	GeocodeURL string
	HTTPClient *http.Client
}

// NewOpenWeatherMap builds a client with production defaults.
func NewOpenWeatherMap(apiKey string) *OpenWeatherMap {
	return &OpenWeatherMap{
		APIKey:     apiKey,
		WeatherURL: owmWeatherURL,
		GeocodeURL: owmGeocodeURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Current fetches metric current conditions for pt.
func (c *OpenWeatherMap) Current(ctx context.Context, pt geo.Point) (*Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pt.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.APIKey)

	var payload owmWeather
	if err := getJSON(ctx, c.HTTPClient, c.WeatherURL+"?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("openweathermap: %w", err)
	}
	return payload.conditions(pt), nil
}

// Geocode resolves a place name through the OWM geo endpoint, scoped
// to India. A clean answer with no matches returns
// places.ErrNoResults.
func (c *OpenWeatherMap) Geocode(ctx context.Context, location string) (*places.GeoResult, error) {
	q := url.Values{}
	q.Set("q", countryScoped(location))
	q.Set("limit", "1")
	q.Set("appid", c.APIKey)

	var results []owmGeoResult
	if err := getJSON(ctx, c.HTTPClient, c.GeocodeURL+"?"+q.Encode(), nil, &results); err != nil {
		return nil, fmt.Errorf("openweathermap: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("openweathermap: %q: %w", location, places.ErrNoResults)
	}
	r := results[0]
	name := r.Name
	if name == "" {
		name = location
	}
	return &places.GeoResult{
		Name:    name,
		State:   r.State,
		Country: r.Country,
		Point:   geo.Point{Lat: r.Lat, Lon: r.Lon},
		Source:  SourceOpenWeatherMap,
	}, nil
}

type owmGeoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// countryScoped rewrites a free-text location into the comma-separated
// form the geo endpoint expects, with a trailing country code.
func countryScoped(location string) string {
	loc := strings.ReplaceAll(strings.TrimSpace(location), ", ", ",")
	return loc + ",IN"
}

type owmWeather struct {
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	VisibilityM *float64 `json:"visibility"`
	Clouds      struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Rain map[string]float64 `json:"rain"`
	Snow map[string]float64 `json:"snow"`
	Name string             `json:"name"`
}

func (w *owmWeather) conditions(pt geo.Point) *Conditions {
	c := &Conditions{
		Place:         w.Name,
		Point:         pt,
		Source:        SourceOpenWeatherMap,
		TemperatureC:  w.Main.Temp,
		FeelsLikeC:    w.Main.FeelsLike,
		HumidityPct:   w.Main.Humidity,
		PressureHPa:   w.Main.Pressure,
		WindSpeedMS:   w.Wind.Speed,
		WindDeg:       w.Wind.Deg,
		CloudCoverPct: w.Clouds.All,
	}
	if len(w.Weather) > 0 {
		c.Description = w.Weather[0].Description
	}
	if w.VisibilityM != nil {
		c.VisibilityKm = f64(*w.VisibilityM / 1000)
	}
	// Rain and snow report the last hour in millimetres; absent blocks
	// mean no precipitation, not no data.
	c.PrecipMM = f64(w.Rain["1h"] + w.Snow["1h"])
	return c
}

// getJSON performs a GET with optional headers and decodes a 200
// response into out. Non-2xx responses become a *fallback.StatusError
// so the chain can classify them.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &fallback.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
