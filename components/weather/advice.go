package weather

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// msToKmh converts reading wind speed to the unit the rule table uses.
const msToKmh = 3.6

// Rule maps one reading threshold to a line of field advice. When is a
// boolean expression over the reading parameters: temperature (°C),
// humidity (%), rain_probability (%), wind_speed (km/h), uv_index and
// pressure (hPa). A rule whose parameters are missing from the reading
// is skipped, so partial readings still produce whatever advice they
// can support.
type Rule struct {
	Name string
	When string
	// Text is the advice line. When Value is set, Text is a printf
	// format and the named parameter is interpolated.
	Text  string
	Value string
}

// DefaultRules returns the built-in advisory thresholds.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "frost", When: "temperature < 10",
			Text: "Cold conditions - protect sensitive crops from frost"},
		{Name: "heat", When: "temperature > 35",
			Text: "Hot conditions - ensure adequate irrigation and shade"},
		{Name: "temperate", When: "temperature >= 10 && temperature <= 35",
			Text: "Temperature %.1f°C - suitable for most crops", Value: "temperature"},

		{Name: "fungal-risk", When: "humidity > 80",
			Text: "High humidity - monitor for fungal diseases"},
		{Name: "dry-air", When: "humidity < 40",
			Text: "Low humidity - increase irrigation frequency"},
		{Name: "humidity-ok", When: "humidity >= 40 && humidity <= 80",
			Text: "Humidity %.0f%% - good for crop growth", Value: "humidity"},

		{Name: "rain-likely", When: "rain_probability > 60",
			Text: "High rain chance (%.0f%%) - delay spraying", Value: "rain_probability"},
		{Name: "rain-unlikely", When: "rain_probability < 20",
			Text: "Low rain chance - good for field operations"},

		{Name: "strong-wind", When: "wind_speed > 15",
			Text: "Strong winds - avoid pesticide spraying"},
		{Name: "moderate-wind", When: "wind_speed > 8 && wind_speed <= 15",
			Text: "Moderate winds - use drift-reducing nozzles"},

		{Name: "uv-high", When: "uv_index > 8",
			Text: "High UV - protect workers and livestock"},
		{Name: "uv-moderate", When: "uv_index > 5 && uv_index <= 8",
			Text: "Moderate UV - good for photosynthesis"},

		{Name: "pressure-falling", When: "pressure < 1000",
			Text: "Low pressure - weather changes expected"},
		{Name: "pressure-stable", When: "pressure > 1020",
			Text: "High pressure - stable weather expected"},
	}
}

// Advisor evaluates a rule table against readings.
type Advisor struct {
	rules    []Rule
	compiled []*govaluate.EvaluableExpression
}

// NewAdvisor compiles the rule table. With no rules it uses
// DefaultRules.
func NewAdvisor(rules ...Rule) (*Advisor, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	compiled := make([]*govaluate.EvaluableExpression, 0, len(rules))
	for _, r := range rules {
		exp, err := govaluate.NewEvaluableExpression(r.When)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, exp)
	}
	return &Advisor{rules: rules, compiled: compiled}, nil
}

// DefaultAdvisor returns an advisor over the built-in rules. It panics
// only if the built-in table fails to compile.
func DefaultAdvisor() *Advisor {
	a, err := NewAdvisor()
	if err != nil {
		panic(err)
	}
	return a
}

// Advise returns the advice lines whose conditions hold for c, in rule
// order.
func (a *Advisor) Advise(c *Conditions) []string {
	params := adviceParams(c)
	out := make([]string, 0, len(a.rules))
	for i, rule := range a.rules {
		res, err := a.compiled[i].Evaluate(params)
		if err != nil {
			// Parameter absent from the reading.
			continue
		}
		hold, ok := res.(bool)
		if !ok || !hold {
			continue
		}
		text := rule.Text
		if rule.Value != "" {
			if v, found := params[rule.Value]; found {
				text = fmt.Sprintf(rule.Text, v)
			}
		}
		out = append(out, text)
	}
	return out
}

func adviceParams(c *Conditions) map[string]interface{} {
	params := make(map[string]interface{}, 6)
	add := func(name string, v *float64) {
		if v != nil {
			params[name] = *v
		}
	}
	add("temperature", c.TemperatureC)
	add("humidity", c.HumidityPct)
	add("rain_probability", c.RainChancePct)
	add("uv_index", c.UVIndex)
	add("pressure", c.PressureHPa)
	// Readings carry wind in m/s; the rule table speaks km/h.
	if c.WindSpeedMS != nil {
		params["wind_speed"] = *c.WindSpeedMS * msToKmh
	}
	return params
}
