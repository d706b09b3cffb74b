// Package fpo answers farmer-producer-organization queries from the
// in-process registry: nearest entries when the session has coordinates,
// a state listing when it only has a state.
package fpo

import (
	"context"
	"fmt"
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fpo"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/tools"
)

const (
	// Name is the registry key of the tool.
	Name = "fpo_search"
	// DefaultPriority slots FPO results after places.
	DefaultPriority = 30

	description = "Nearest farmer producer organizations from the FPO directory"
)

// queryTerms mark a query as an FPO question.
var queryTerms = []string{"fpo", "producer"}

// Payload is the structured answer. Matches is set on the nearest path,
// Entries on the by-state path.
type Payload struct {
	Location string      `json:"location"`
	Matches  []fpo.Match `json:"matches,omitempty"`
	Entries  []fpo.Entry `json:"entries,omitempty"`
}

// Config carries the FPO tool settings on top of the shared tool
// configuration.
type Config struct {
	tools.Config
	limit int
}

// Option configures the FPO tool.
type Option func(*Config)

// WithLimit caps how many organizations a lookup returns.
func WithLimit(n int) Option {
	return func(c *Config) {
		c.limit = n
	}
}

// Tool serves FPO lookups.
type Tool struct {
	Config
	registry *fpo.Registry
}

var _ tools.Tool = (*Tool)(nil)

// New builds the FPO tool over the given directory.
func New(registry *fpo.Registry, opts ...Option) *Tool {
	t := &Tool{registry: registry}
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
	if t.limit <= 0 {
		t.limit = fpo.DefaultLimit
	}
	return t
}

// IsRelevant matches "fpo" and "producer" mentions.
func (t *Tool) IsRelevant(query string, _ components.SessionSnapshot) bool {
	return tools.ContainsAny(strings.ToLower(query), queryTerms)
}

// Execute ranks directory entries by distance from the session location.
// With a state but no usable coordinates it lists the state's entries
// instead; without either it fails, because inventing an FPO is worse
// than admitting the gap.
func (t *Tool) Execute(_ context.Context, query string, snap components.SessionSnapshot) *tools.Result {
	loc := snap.Location
	if loc == nil || (loc.Name == "" && loc.State == "") {
		return tools.Failure(t.Name(), "I need your village or at least your state to find producer organizations. For example: set my location to Patna, Bihar.")
	}
	pt := geo.Point{Lat: loc.Lat, Lon: loc.Lon}
	if !pt.IsZero() {
		matches := t.registry.Nearest(pt, t.limit)
		if len(matches) == 0 {
			return tools.Failure(t.Name(), "The FPO directory has no entries with coordinates to rank from "+placeName(loc)+".")
		}
		return &tools.Result{
			Tool:    t.Name(),
			Success: true,
			Payload: &Payload{Location: placeName(loc), Matches: matches},
			Message: renderNearest(placeName(loc), matches),
		}
	}
	if loc.State == "" {
		return tools.Failure(t.Name(), "I could not place "+placeName(loc)+" on the map, so I cannot rank producer organizations by distance.")
	}
	entries := t.registry.ByState(loc.State)
	if len(entries) == 0 {
		return tools.Failure(t.Name(), "The FPO directory has no entries for "+loc.State+".")
	}
	if len(entries) > t.limit {
		entries = entries[:t.limit]
	}
	return &tools.Result{
		Tool:    t.Name(),
		Success: true,
		Payload: &Payload{Location: loc.State, Entries: entries},
		Message: renderByState(loc.State, entries),
	}
}

func renderNearest(place string, matches []fpo.Match) string {
	sb := new(strings.Builder)
	sb.WriteString("Farmer producer organizations near " + place + ":")
	for i, m := range matches {
		fmt.Fprintf(sb, "\n%d. %s - %s, %s (%.1f km)", i+1, m.Entry.Name, m.Entry.District, m.Entry.State, m.DistanceKm)
	}
	return sb.String()
}

func renderByState(state string, entries []fpo.Entry) string {
	sb := new(strings.Builder)
	sb.WriteString("Farmer producer organizations in " + state + ":")
	for i, e := range entries {
		fmt.Fprintf(sb, "\n%d. %s - %s", i+1, e.Name, e.District)
	}
	return sb.String()
}

func placeName(loc *components.Location) string {
	if loc.Name == "" {
		return loc.State
	}
	return loc.Describe()
}
