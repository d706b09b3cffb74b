// Package weather answers weather questions for the farmer's location:
// current conditions from the provider chain plus rule-based field advice.
package weather

import (
	"context"
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/weather"
	"github.com/krishidhan/sahayak/tools"
)

const (
	// Name is the registry key of the tool.
	Name = "weather_advisory"
	// DefaultPriority renders weather before other grounding sections.
	DefaultPriority = 50

	description = "Current weather conditions and field advice for the farmer's location"
)

// queryTerms mark a query as a weather question.
var queryTerms = []string{"weather", "rain", "forecast", "temperature"}

// ConditionsService is the slice of weather.Service the tool needs.
type ConditionsService interface {
	Current(ctx context.Context, pt geo.Point) (*weather.Conditions, *fallback.Invocation, error)
	Advise(c *weather.Conditions) []string
}

// Payload is the structured answer: the reading and the advice derived
// from it.
type Payload struct {
	Location   string              `json:"location"`
	Point      geo.Point           `json:"point"`
	Conditions *weather.Conditions `json:"conditions"`
	Advice     []string            `json:"advice,omitempty"`
}

// Tool serves current-weather queries.
type Tool struct {
	tools.Config
	svc ConditionsService
}

var _ tools.Tool = (*Tool)(nil)

// New builds the weather tool over svc.
func New(svc ConditionsService, opts ...tools.Option) *Tool {
	t := &Tool{svc: svc}
	for _, opt := range opts {
		opt(&t.Config)
	}
	if t.Name() == "" {
		t.SetName(Name)
	}
	if t.Description() == "" {
		t.SetDescription(description)
	}
	if t.Priority() == 0 {
		t.SetPriority(DefaultPriority)
	}
	return t
}

// IsRelevant matches queries that mention weather, rain, forecast or
// temperature.
func (t *Tool) IsRelevant(query string, _ components.SessionSnapshot) bool {
	return tools.ContainsAny(strings.ToLower(query), queryTerms)
}

// Execute reads current conditions for the session location. Without a
// location, or with every provider down, it fails with a plain message
// and no reading at all.
func (t *Tool) Execute(ctx context.Context, query string, snap components.SessionSnapshot) *tools.Result {
	if !snap.HasLocation() {
		return tools.Failure(t.Name(), "I don't know your location yet. Tell me your village and state, for example: set my location to Patna, Bihar.")
	}
	place := snap.Location.Describe()
	pt := geo.Point{Lat: snap.Location.Lat, Lon: snap.Location.Lon}
	if pt.IsZero() {
		return tools.Failure(t.Name(), "I could not place "+place+" on the map, so I cannot fetch its weather.")
	}

	cond, inv, err := t.svc.Current(ctx, pt)
	if err != nil {
		res := tools.Failure(t.Name(), "Weather services are unreachable right now, so I cannot give a reading for "+place+".")
		res.ChainMeta(inv)
		return res
	}
	if cond.Place != "" {
		place = cond.Place
	}
	advice := t.svc.Advise(cond)

	res := &tools.Result{
		Tool:    t.Name(),
		Success: true,
		Payload: &Payload{
			Location:   place,
			Point:      pt,
			Conditions: cond,
			Advice:     advice,
		},
		Message: renderMessage(place, cond, advice),
	}
	res.ChainMeta(inv)
	return res
}

func renderMessage(place string, cond *weather.Conditions, advice []string) string {
	sb := new(strings.Builder)
	sb.WriteString("Weather for " + place + ": " + cond.Summary())
	if len(advice) > 0 {
		sb.WriteString("\nField advice:")
		for _, line := range advice {
			sb.WriteString("\n- " + line)
		}
	}
	return sb.String()
}
