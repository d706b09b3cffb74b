// Package places resolves place names to coordinates and finds nearby
// points of interest. Geoapify is the primary backend for both
// concerns; Foursquare seconds the POI search and the OpenWeatherMap
// geo endpoint seconds geocoding. The Service fronts the provider
// chains with a TTL result cache and a local rate limiter.
package places

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/krishidhan/sahayak/components/geo"
)

// Provider names as they appear in results, attempt records and logs.
const (
	SourceGeoapify   = "geoapify"
	SourceFoursquare = "foursquare"
)

// Chain operation names.
const (
	OpGeocode = "places.geocode"
	OpSearch  = "places.search"
)

// ErrNoResults marks a provider that answered cleanly but found
// nothing. It advances the chain so the next provider gets its turn.
var ErrNoResults = errors.New("no matching places")

// GeoResult is a place name resolved to a coordinate.
type GeoResult struct {
	// Name is the provider's display name for the match.
	Name     string
	State    string
	District string
	Country  string
	Point    geo.Point
	// Source names the provider that resolved the place.
	Source string
}

// Describe renders the result for replies and location commits.
func (g *GeoResult) Describe() string {
	if g.State != "" && !strings.Contains(g.Name, g.State) {
		return g.Name + ", " + g.State
	}
	return g.Name
}

// Geocoder resolves a free-text place description to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*GeoResult, error)
}

// Search defaults, matching the upstream provider limits.
const (
	DefaultRadiusM = 20000
	DefaultLimit   = 5
	// KVKRadiusM widens the net for Krishi Vigyan Kendra lookups;
	// districts typically host a single centre.
	KVKRadiusM = 50000
)

// Query describes a nearby-place lookup around a center point.
type Query struct {
	// Text is the free-text search term, e.g. "fertilizer shop".
	Text string
	// Categories narrows provider-side category filtering where the
	// provider supports it; Foursquare ignores it and searches Text.
	Categories []string
	Center     geo.Point
	RadiusM    int
	Limit      int
}

func (q Query) withDefaults() Query {
	if q.RadiusM <= 0 {
		q.RadiusM = DefaultRadiusM
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// key builds the cache key. Coordinates are rounded so nearby repeat
// queries share an entry.
func (q Query) key() string {
	return fmt.Sprintf("%s|%s|%.4f|%.4f|%d|%d",
		strings.ToLower(q.Text), strings.ToLower(strings.Join(q.Categories, ",")),
		q.Center.Lat, q.Center.Lon, q.RadiusM, q.Limit)
}

// Place is one point of interest near the query center.
type Place struct {
	Name       string
	Address    string
	Point      geo.Point
	DistanceKm float64
	// Source names the provider that returned the match.
	Source  string
	MapsURL string
}

func osmURL(pt geo.Point) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%v&mlon=%v#map=16/%v/%v",
		pt.Lat, pt.Lon, pt.Lat, pt.Lon)
}

func roundKm(d float64) float64 {
	return math.Round(d*10) / 10
}

// agriKeywords holds the shop phrases we map to category filters, in
// match-priority order.
var agriKeywords = []string{
	"fertilizer shop",
	"seed shop",
	"pesticide shop",
	"farm machinery dealer",
	"tractor dealer",
	"agricultural supply store",
}

var agriCategories = map[string][]string{
	"fertilizer shop":           {"commercial.agricultural", "shop.farm", "shop.garden"},
	"seed shop":                 {"commercial.agricultural", "shop.farm"},
	"pesticide shop":            {"commercial.agricultural", "shop.farm"},
	"farm machinery dealer":     {"commercial.agricultural"},
	"tractor dealer":            {"commercial.agricultural"},
	"agricultural supply store": {"commercial.agricultural", "shop.farm"},
}

// CategoriesFor returns the Geoapify category filter for the first
// shop keyword contained in query, defaulting to the general
// agricultural category.
func CategoriesFor(query string) []string {
	q := strings.ToLower(query)
	for _, k := range agriKeywords {
		if strings.Contains(q, k) {
			return agriCategories[k]
		}
	}
	return []string{"commercial.agricultural"}
}

// looseShopTerms maps bare commodity fragments to their canonical shop
// phrase. They only count when the query also sounds like a purchase,
// so "seed rate for wheat" does not turn into a shop hunt.
var looseShopTerms = []struct {
	frag    string
	keyword string
}{
	{"farm machinery", "farm machinery dealer"},
	{"tractor", "tractor dealer"},
	{"fertilizer", "fertilizer shop"},
	{"pesticide", "pesticide shop"},
	{"seed", "seed shop"},
}

var purchaseTerms = []string{"shop", "store", "dealer", "buy", "purchase", "supplier", "market"}

// KeywordFor extracts the canonical shop phrase from a query. Exact
// phrases such as "fertilizer shop" always match; bare commodity words
// match only alongside a purchase term.
func KeywordFor(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, k := range agriKeywords {
		if strings.Contains(q, k) {
			return k, true
		}
	}
	var purchase bool
	for _, w := range purchaseTerms {
		if strings.Contains(q, w) {
			purchase = true
			break
		}
	}
	if !purchase {
		return "", false
	}
	for _, lt := range looseShopTerms {
		if strings.Contains(q, lt.frag) {
			return lt.keyword, true
		}
	}
	return "", false
}

// KVKQuery is the text searched for Krishi Vigyan Kendra lookups.
const KVKQuery = "Krishi Vigyan Kendra"

var kvkQueryTerms = []string{"krishi vigyan kendra", "vigyan kendra", "kvk"}

// IsKVKQuery reports whether a query asks for a Krishi Vigyan Kendra.
func IsKVKQuery(query string) bool {
	q := strings.ToLower(query)
	for _, t := range kvkQueryTerms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

var (
	kvkNameTerms    = []string{"krishi vigyan kendra", "kvk", "agricultural", "farm", "rural"}
	kvkAddressTerms = []string{"krishi vigyan kendra", "kvk"}
	kvkRejectTerms  = []string{"school", "college", "university", "hospital", "bank"}
)

// KeepKVK reports whether a place search hit looks like an actual
// Krishi Vigyan Kendra. Text search returns plenty of schools and
// colleges whose names merely mention agriculture; those are dropped.
func KeepKVK(name, address string) bool {
	name = strings.ToLower(name)
	address = strings.ToLower(address)
	for _, t := range kvkNameTerms {
		if strings.Contains(name, t) {
			return true
		}
	}
	for _, t := range kvkAddressTerms {
		if strings.Contains(address, t) {
			return true
		}
	}
	for _, t := range kvkRejectTerms {
		if strings.Contains(name, t) {
			return false
		}
	}
	return strings.Contains(name, "krishi")
}

// FilterKVK drops search hits that fail KeepKVK. The input slice is
// left untouched.
func FilterKVK(hits []Place) []Place {
	out := make([]Place, 0, len(hits))
	for _, p := range hits {
		if KeepKVK(p.Name, p.Address) {
			out = append(out, p)
		}
	}
	return out
}
