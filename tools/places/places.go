// Package places answers "where can I find ..." queries: agri-input
// shops by category and Krishi Vigyan Kendra centres, ranked by distance
// from the farmer's location.
package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/places"
	"github.com/krishidhan/sahayak/tools"
)

const (
	// Name is the registry key of the tool.
	Name = "places_search"
	// DefaultPriority slots place results after weather.
	DefaultPriority = 40

	description = "Nearby agricultural shops and Krishi Vigyan Kendra centres"
)

// Payload kinds.
const (
	KindShop = "shop"
	KindKVK  = "kvk"
)

// SearchService is the slice of places.Service the tool needs.
type SearchService interface {
	SearchNearby(ctx context.Context, q places.Query) ([]places.Place, *fallback.Invocation, error)
	SearchKVK(ctx context.Context, center geo.Point) ([]places.Place, *fallback.Invocation, error)
	Stats() places.Stats
}

// Payload is the structured answer: the matched places in distance order.
type Payload struct {
	Kind     string         `json:"kind"`
	Keyword  string         `json:"keyword,omitempty"`
	Location string         `json:"location"`
	Places   []places.Place `json:"places"`
}

// Tool serves shop and KVK lookups.
type Tool struct {
	tools.Config
	svc SearchService
}

var _ tools.Tool = (*Tool)(nil)

// New builds the places tool over svc.
func New(svc SearchService, opts ...tools.Option) *Tool {
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

// IsRelevant matches KVK mentions and shop phrases ("fertilizer shop",
// "buy seeds", "tractor dealer").
func (t *Tool) IsRelevant(query string, _ components.SessionSnapshot) bool {
	if places.IsKVKQuery(query) {
		return true
	}
	_, ok := places.KeywordFor(query)
	return ok
}

// Execute searches around the session location. KVK queries take the
// wider district radius and the name filter; shop queries search the
// category mapped from the keyword.
func (t *Tool) Execute(ctx context.Context, query string, snap components.SessionSnapshot) *tools.Result {
	if !snap.HasLocation() {
		return tools.Failure(t.Name(), "I don't know your location yet. Tell me your village and state, for example: set my location to Patna, Bihar.")
	}
	place := snap.Location.Describe()
	center := geo.Point{Lat: snap.Location.Lat, Lon: snap.Location.Lon}
	if center.IsZero() {
		return tools.Failure(t.Name(), "I could not place "+place+" on the map, so I cannot search nearby.")
	}
	statsBefore := t.svc.Stats()

	var (
		kind    string
		keyword string
		hits    []places.Place
		inv     *fallback.Invocation
		err     error
	)
	if places.IsKVKQuery(query) {
		kind, keyword = KindKVK, places.KVKQuery
		hits, inv, err = t.svc.SearchKVK(ctx, center)
	} else {
		kind = KindShop
		keyword, _ = places.KeywordFor(query)
		hits, inv, err = t.svc.SearchNearby(ctx, places.Query{
			Text:       keyword,
			Categories: places.CategoriesFor(keyword),
			Center:     center,
		})
	}
	if err != nil {
		res := tools.Failure(t.Name(), "Place search services are unreachable right now, so I cannot look up "+keyword+" near "+place+".")
		res.ChainMeta(inv)
		return res
	}
	if len(hits) == 0 {
		res := tools.Failure(t.Name(), "I could not find any "+keyword+" near "+place+".")
		res.ChainMeta(inv)
		return res
	}

	res := &tools.Result{
		Tool:    t.Name(),
		Success: true,
		Payload: &Payload{
			Kind:     kind,
			Keyword:  keyword,
			Location: place,
			Places:   hits,
		},
		Message: renderMessage(keyword, place, hits),
	}
	res.ChainMeta(inv)
	if t.svc.Stats().Hits > statsBefore.Hits {
		res.SetMeta(tools.MetaCache, "hit")
	}
	return res
}

func renderMessage(keyword, place string, hits []places.Place) string {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "%s near %s:", keyword, place)
	for i, p := range hits {
		fmt.Fprintf(sb, "\n%d. %s", i+1, p.Name)
		if p.Address != "" {
			sb.WriteString(" - " + p.Address)
		}
		fmt.Fprintf(sb, " (%.1f km)", p.DistanceKm)
		if p.MapsURL != "" {
			sb.WriteString("\n   " + p.MapsURL)
		}
	}
	return sb.String()
}
