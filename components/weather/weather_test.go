package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/places"
)

var ludhiana = geo.Point{Lat: 30.9010, Lon: 75.8573}

const owmBody = `{
	"main": {"temp": 28.4, "feels_like": 30.1, "humidity": 62, "pressure": 1008},
	"weather": [{"description": "scattered clouds"}],
	"wind": {"speed": 3.4, "deg": 210},
	"visibility": 6000,
	"clouds": {"all": 40},
	"rain": {"1h": 0.4},
	"name": "Ludhiana"
}`

const vcBody = `{
	"resolvedAddress": "Ludhiana, Punjab, India",
	"currentConditions": {
		"temp": 31.0, "feelslike": 33.5, "humidity": 55,
		"precip": 0, "precipprob": 70, "windspeed": 18.0, "winddir": 200,
		"visibility": 8, "uvindex": 9, "cloudcover": 75,
		"conditions": "Partially cloudy"
	}
}`

func wantFloat(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s is nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestOpenWeatherMapCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "metric" {
			t.Errorf("units = %q, want metric", q.Get("units"))
		}
		if q.Get("appid") != "owm-key" {
			t.Errorf("appid = %q, want owm-key", q.Get("appid"))
		}
		if q.Get("lat") == "" || q.Get("lon") == "" {
			t.Error("lat/lon missing from request")
		}
		fmt.Fprint(w, owmBody)
	}))
	defer srv.Close()

	c := NewOpenWeatherMap("owm-key")
	c.WeatherURL = srv.URL
	c.HTTPClient = srv.Client()

	cond, err := c.Current(context.Background(), ludhiana)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cond.Source != SourceOpenWeatherMap {
		t.Errorf("Source = %q, want %q", cond.Source, SourceOpenWeatherMap)
	}
	if cond.Place != "Ludhiana" {
		t.Errorf("Place = %q, want Ludhiana", cond.Place)
	}
	if cond.Description != "scattered clouds" {
		t.Errorf("Description = %q", cond.Description)
	}
	wantFloat(t, "TemperatureC", cond.TemperatureC, 28.4)
	wantFloat(t, "FeelsLikeC", cond.FeelsLikeC, 30.1)
	wantFloat(t, "HumidityPct", cond.HumidityPct, 62)
	wantFloat(t, "PressureHPa", cond.PressureHPa, 1008)
	wantFloat(t, "WindSpeedMS", cond.WindSpeedMS, 3.4)
	wantFloat(t, "VisibilityKm", cond.VisibilityKm, 6)
	wantFloat(t, "CloudCoverPct", cond.CloudCoverPct, 40)
	wantFloat(t, "PrecipMM", cond.PrecipMM, 0.4)
	if cond.RainChancePct != nil {
		t.Error("RainChancePct should be nil for openweathermap readings")
	}
	if cond.UVIndex != nil {
		t.Error("UVIndex should be nil for openweathermap readings")
	}
}

func TestVisualCrossingCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "30.9010,75.8573") {
			t.Errorf("path = %q, want the coordinate pair", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "vc-key" {
			t.Errorf("key = %q, want vc-key", q.Get("key"))
		}
		if q.Get("unitGroup") != "metric" {
			t.Errorf("unitGroup = %q, want metric", q.Get("unitGroup"))
		}
		if q.Get("include") != "current" {
			t.Errorf("include = %q, want current", q.Get("include"))
		}
		fmt.Fprint(w, vcBody)
	}))
	defer srv.Close()

	c := NewVisualCrossing("vc-key")
	c.TimelineURL = srv.URL
	c.HTTPClient = srv.Client()

	cond, err := c.Current(context.Background(), ludhiana)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cond.Source != SourceVisualCrossing {
		t.Errorf("Source = %q, want %q", cond.Source, SourceVisualCrossing)
	}
	if cond.Place != "Ludhiana, Punjab, India" {
		t.Errorf("Place = %q", cond.Place)
	}
	if cond.Description != "Partially cloudy" {
		t.Errorf("Description = %q", cond.Description)
	}
	wantFloat(t, "TemperatureC", cond.TemperatureC, 31)
	wantFloat(t, "WindSpeedMS", cond.WindSpeedMS, 18*kmhToMS)
	wantFloat(t, "RainChancePct", cond.RainChancePct, 70)
	wantFloat(t, "UVIndex", cond.UVIndex, 9)
	wantFloat(t, "PrecipMM", cond.PrecipMM, 0)
	if cond.PressureHPa != nil {
		t.Error("PressureHPa should be nil for visualcrossing readings")
	}
}

func TestServiceFallsBackToSecondary(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, vcBody)
	}))
	defer up.Close()

	owm := NewOpenWeatherMap("owm-key")
	owm.WeatherURL = down.URL
	owm.HTTPClient = down.Client()
	vc := NewVisualCrossing("vc-key")
	vc.TimelineURL = up.URL
	vc.HTTPClient = up.Client()

	svc := NewService([]ConditionsProvider{
		fallback.ProviderFunc(SourceOpenWeatherMap, owm.Current),
		fallback.ProviderFunc(SourceVisualCrossing, vc.Current),
	})

	cond, inv, err := svc.Current(context.Background(), ludhiana)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !inv.Fallback() {
		t.Error("Fallback() = false, want true")
	}
	if inv.Provider != SourceVisualCrossing {
		t.Errorf("Provider = %q, want %q", inv.Provider, SourceVisualCrossing)
	}
	if cond.Source != SourceVisualCrossing {
		t.Errorf("Source = %q, want %q", cond.Source, SourceVisualCrossing)
	}
	if len(inv.Attempts) != 1 {
		t.Fatalf("Attempts = %d, want 1", len(inv.Attempts))
	}
	if inv.Attempts[0].Provider != SourceOpenWeatherMap {
		t.Errorf("demoted provider = %q, want %q", inv.Attempts[0].Provider, SourceOpenWeatherMap)
	}
	if inv.Attempts[0].Kind != fallback.Transient {
		t.Errorf("demotion kind = %v, want transient", inv.Attempts[0].Kind)
	}
}

func TestServiceExhaustsWhenAllProvidersFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer down.Close()

	owm := NewOpenWeatherMap("owm-key")
	owm.WeatherURL = down.URL
	owm.HTTPClient = down.Client()
	vc := NewVisualCrossing("vc-key")
	vc.TimelineURL = down.URL
	vc.HTTPClient = down.Client()

	svc := NewService([]ConditionsProvider{
		fallback.ProviderFunc(SourceOpenWeatherMap, owm.Current),
		fallback.ProviderFunc(SourceVisualCrossing, vc.Current),
	})

	cond, inv, err := svc.Current(context.Background(), ludhiana)
	if cond != nil {
		t.Fatalf("conditions = %+v, want nil when every provider fails", cond)
	}
	var exhausted *fallback.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *fallback.ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(exhausted.Attempts))
	}
	if inv.Provider != "" {
		t.Errorf("Provider = %q, want empty on exhaustion", inv.Provider)
	}
}

func TestProvidersSkipsBlankKeys(t *testing.T) {
	both := Providers("a", "b")
	if len(both) != 2 {
		t.Fatalf("len = %d, want 2", len(both))
	}
	if both[0].Name() != SourceOpenWeatherMap || both[1].Name() != SourceVisualCrossing {
		t.Errorf("order = %s, %s", both[0].Name(), both[1].Name())
	}
	if only := Providers("", "b"); len(only) != 1 || only[0].Name() != SourceVisualCrossing {
		t.Errorf("secondary-only chain wrong: %d members", len(only))
	}
	if none := Providers("", ""); len(none) != 0 {
		t.Errorf("len = %d, want 0 with no keys", len(none))
	}
}

func TestOpenWeatherMapGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Ludhiana,Punjab,IN" {
			t.Errorf("q = %q, want Ludhiana,Punjab,IN", q.Get("q"))
		}
		if q.Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", q.Get("limit"))
		}
		if q.Get("appid") != "owm-key" {
			t.Errorf("appid = %q, want owm-key", q.Get("appid"))
		}
		fmt.Fprint(w, `[{"name": "Ludhiana", "lat": 30.9010, "lon": 75.8573, "country": "IN", "state": "Punjab"}]`)
	}))
	defer srv.Close()

	c := NewOpenWeatherMap("owm-key")
	c.GeocodeURL = srv.URL
	c.HTTPClient = srv.Client()

	got, err := c.Geocode(context.Background(), "Ludhiana, Punjab")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if got.Name != "Ludhiana" || got.State != "Punjab" {
		t.Errorf("Name = %q, State = %q", got.Name, got.State)
	}
	if got.Point.Lat != 30.9010 || got.Point.Lon != 75.8573 {
		t.Errorf("Point = %+v", got.Point)
	}
	if got.Source != SourceOpenWeatherMap {
		t.Errorf("Source = %q, want %q", got.Source, SourceOpenWeatherMap)
	}
}

func TestOpenWeatherMapGeocodeNoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := NewOpenWeatherMap("owm-key")
	c.GeocodeURL = srv.URL
	c.HTTPClient = srv.Client()

	if _, err := c.Geocode(context.Background(), "Nowhereville"); !errors.Is(err, places.ErrNoResults) {
		t.Fatalf("err = %v, want places.ErrNoResults", err)
	}
}

func TestConditionsSummary(t *testing.T) {
	c := &Conditions{
		TemperatureC:  f64(28.4),
		FeelsLikeC:    f64(30.1),
		Description:   "scattered clouds",
		HumidityPct:   f64(62),
		WindSpeedMS:   f64(3.4),
		RainChancePct: f64(70),
	}
	want := "28.4°C (feels like 30.1°C), scattered clouds, humidity 62%, wind 3.4 m/s, rain chance 70%"
	if got := c.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if got := (&Conditions{}).Summary(); got != "" {
		t.Errorf("empty Summary() = %q, want empty", got)
	}
}
