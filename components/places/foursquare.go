package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/krishidhan/sahayak/components/geo"
)

const (
	fsqPlacesURL = "https://places-api.foursquare.com/places/search"
	// fsqAPIVersion pins the Foursquare places API revision.
	fsqAPIVersion = "2025-06-17"
	// fsqMaxRadiusM is the widest radius the endpoint accepts.
	fsqMaxRadiusM = 100000
)

// Foursquare searches nearby POIs by text query. It has no category
// taxonomy compatible with Geoapify's, so Query.Categories is ignored.
type Foursquare struct {
	APIKey     string
	PlacesURL  string
	HTTPClient *http.Client
}

// NewFoursquare builds a client with production defaults.
func NewFoursquare(apiKey string) *Foursquare {
	return &Foursquare{
		APIKey:     apiKey,
		PlacesURL:  fsqPlacesURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchNearby finds POIs around the query center, nearest first. A
// clean answer with no results returns ErrNoResults.
func (c *Foursquare) SearchNearby(ctx context.Context, query Query) ([]Place, error) {
	query = query.withDefaults()
	radius := query.RadiusM
	if radius > fsqMaxRadiusM {
		radius = fsqMaxRadiusM
	}

	q := url.Values{}
	q.Set("query", query.Text)
	q.Set("ll", fmt.Sprintf("%s,%s", formatCoord(query.Center.Lat), formatCoord(query.Center.Lon)))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("limit", strconv.Itoa(query.Limit))

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Places-Api-Version", fsqAPIVersion)
	header.Set("Authorization", "Bearer "+c.APIKey)

	var payload fsqSearchResponse
	if err := fetchJSON(ctx, c.HTTPClient, c.PlacesURL+"?"+q.Encode(), header, &payload); err != nil {
		return nil, fmt.Errorf("foursquare: %w", err)
	}

	places := make([]Place, 0, len(payload.Results))
	for _, res := range payload.Results {
		if res.Latitude == nil || res.Longitude == nil {
			continue
		}
		pt := geo.Point{Lat: *res.Latitude, Lon: *res.Longitude}
		name := res.Name
		if name == "" {
			name = query.Text
		}
		places = append(places, Place{
			Name:       name,
			Address:    res.Location.join(),
			Point:      pt,
			DistanceKm: roundKm(query.Center.DistanceKm(pt)),
			Source:     SourceFoursquare,
			MapsURL:    osmURL(pt),
		})
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("foursquare: %q: %w", query.Text, ErrNoResults)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })
	return places, nil
}

type fsqSearchResponse struct {
	Results []struct {
		Name      string      `json:"name"`
		Latitude  *float64    `json:"latitude"`
		Longitude *float64    `json:"longitude"`
		Location  fsqLocation `json:"location"`
	} `json:"results"`
}

type fsqLocation struct {
	Address  string `json:"address"`
	Locality string `json:"locality"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

func (l fsqLocation) join() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Address, l.Locality, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
