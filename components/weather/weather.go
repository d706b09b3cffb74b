// Package weather answers current-conditions queries for a coordinate.
// Two upstream providers are supported, OpenWeatherMap and Visual
// Crossing; the Service runs them as a fallback chain so a reading is
// returned whenever at least one of them is reachable. Readings carry
// the name of the provider that produced them.
package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
)

// Provider names as they appear in readings, attempt records and logs.
const (
	SourceOpenWeatherMap = "openweathermap"
	SourceVisualCrossing = "visualcrossing"
)

// OpCurrent is the chain operation name for current conditions.
const OpCurrent = "weather.current"

// Conditions is a normalized current-weather reading. Optional fields
// are pointers: not every provider reports every value, and a missing
// value must stay distinguishable from zero. Pressure is reported by
// OpenWeatherMap only, rain chance and UV index by Visual Crossing
// only.
type Conditions struct {
	// Place is the display name the provider attached to the
	// coordinate, when it reports one.
	Place string
	Point geo.Point

	TemperatureC  *float64
	FeelsLikeC    *float64
	HumidityPct   *float64
	PressureHPa   *float64
	WindSpeedMS   *float64
	WindDeg       *float64
	VisibilityKm  *float64
	CloudCoverPct *float64
	RainChancePct *float64
	PrecipMM      *float64
	UVIndex       *float64

	// Description is the provider's one-line condition text, e.g.
	// "scattered clouds".
	Description string
	// Source names the provider the reading came from.
	Source string
}

// Summary renders the reading as a single line for replies.
func (c *Conditions) Summary() string {
	parts := make([]string, 0, 5)
	if c.TemperatureC != nil {
		s := fmt.Sprintf("%.1f°C", *c.TemperatureC)
		if c.FeelsLikeC != nil {
			s += fmt.Sprintf(" (feels like %.1f°C)", *c.FeelsLikeC)
		}
		parts = append(parts, s)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if c.HumidityPct != nil {
		parts = append(parts, fmt.Sprintf("humidity %.0f%%", *c.HumidityPct))
	}
	if c.WindSpeedMS != nil {
		parts = append(parts, fmt.Sprintf("wind %.1f m/s", *c.WindSpeedMS))
	}
	if c.RainChancePct != nil {
		parts = append(parts, fmt.Sprintf("rain chance %.0f%%", *c.RainChancePct))
	}
	return strings.Join(parts, ", ")
}

// ConditionsProvider is one backend able to answer current conditions.
type ConditionsProvider = fallback.Provider[geo.Point, *Conditions]

// Providers builds the chain members for the configured keys, primary
// first. A blank key leaves that provider out.
func Providers(openWeatherKey, visualCrossingKey string) []ConditionsProvider {
	var out []ConditionsProvider
	if openWeatherKey != "" {
		c := NewOpenWeatherMap(openWeatherKey)
		out = append(out, fallback.ProviderFunc(SourceOpenWeatherMap, c.Current))
	}
	if visualCrossingKey != "" {
		c := NewVisualCrossing(visualCrossingKey)
		out = append(out, fallback.ProviderFunc(SourceVisualCrossing, c.Current))
	}
	return out
}

// Service answers current conditions with provider fallback and turns
// readings into field advice.
type Service struct {
	chain   *fallback.Chain[geo.Point, *Conditions]
	advisor *Advisor
}

// NewService builds the service over providers in fallback order.
func NewService(providers []ConditionsProvider, opts ...fallback.Option) *Service {
	return &Service{
		chain:   fallback.New(OpCurrent, providers, opts...),
		advisor: DefaultAdvisor(),
	}
}

// Current returns the first reading the chain produces. The Invocation
// is non-nil in every case and names the provider that answered.
func (s *Service) Current(ctx context.Context, pt geo.Point) (*Conditions, *fallback.Invocation, error) {
	return s.chain.Invoke(ctx, pt)
}

// Advise derives field advice from a reading.
func (s *Service) Advise(c *Conditions) []string {
	return s.advisor.Advise(c)
}

func f64(v float64) *float64 { return &v }
