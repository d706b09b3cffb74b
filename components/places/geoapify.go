package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
)

const (
	geoapifyGeocodeURL = "https://api.geoapify.com/v1/geocode/search"
	geoapifyPlacesURL  = "https://api.geoapify.com/v2/places"
)

// Geoapify geocodes place names and searches nearby POIs. URLs and
// HTTPClient are exported so tests can point the client at a local
// server.
type Geoapify struct {
	APIKey     string
	GeocodeURL string
	PlacesURL  string
	// Country biases geocoding; defaults to India.
	Country    string
	HTTPClient *http.Client
}

// NewGeoapify builds a client with production defaults.
func NewGeoapify(apiKey string) *Geoapify {
	return &Geoapify{
		APIKey:     apiKey,
		GeocodeURL: geoapifyGeocodeURL,
		PlacesURL:  geoapifyPlacesURL,
		Country:    "IN",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Geocode resolves location to its best match. A clean answer with no
// features returns ErrNoResults.
func (c *Geoapify) Geocode(ctx context.Context, location string) (*GeoResult, error) {
	q := url.Values{}
	q.Set("text", location)
	q.Set("apiKey", c.APIKey)
	q.Set("limit", "1")
	if c.Country != "" {
		q.Set("country", c.Country)
	}

	var payload geoapifyFeatures
	if err := fetchJSON(ctx, c.HTTPClient, c.GeocodeURL+"?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("geoapify: %w", err)
	}
	if len(payload.Features) == 0 {
		return nil, fmt.Errorf("geoapify: %q: %w", location, ErrNoResults)
	}

	f := payload.Features[0]
	pt, ok := f.point()
	if !ok {
		return nil, fmt.Errorf("geoapify: %q: feature without coordinates: %w", location, ErrNoResults)
	}
	name := f.Properties.Formatted
	if name == "" {
		name = location
	}
	return &GeoResult{
		Name:     name,
		State:    f.Properties.State,
		District: f.Properties.District,
		Country:  f.Properties.Country,
		Point:    pt,
		Source:   SourceGeoapify,
	}, nil
}

// SearchNearby finds POIs around the query center, nearest first. A
// clean answer with no features returns ErrNoResults so the chain can
// consult the next provider.
func (c *Geoapify) SearchNearby(ctx context.Context, query Query) ([]Place, error) {
	query = query.withDefaults()
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("circle:%s,%s,%d",
		formatCoord(query.Center.Lon), formatCoord(query.Center.Lat), query.RadiusM))
	q.Set("bias", fmt.Sprintf("proximity:%s,%s",
		formatCoord(query.Center.Lon), formatCoord(query.Center.Lat)))
	q.Set("limit", strconv.Itoa(query.Limit))
	q.Set("apiKey", c.APIKey)
	if len(query.Categories) > 0 {
		q.Set("categories", strings.Join(query.Categories, ","))
	}
	if query.Text != "" {
		q.Set("text", query.Text)
	}

	var payload geoapifyFeatures
	if err := fetchJSON(ctx, c.HTTPClient, c.PlacesURL+"?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("geoapify: %w", err)
	}

	places := make([]Place, 0, len(payload.Features))
	for _, f := range payload.Features {
		pt, ok := f.point()
		if !ok {
			continue
		}
		name := f.Properties.Name
		if name == "" {
			name = query.Text
		}
		places = append(places, Place{
			Name:       name,
			Address:    f.Properties.Formatted,
			Point:      pt,
			DistanceKm: roundKm(query.Center.DistanceKm(pt)),
			Source:     SourceGeoapify,
			MapsURL:    osmURL(pt),
		})
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("geoapify: %q: %w", query.Text, ErrNoResults)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })
	return places, nil
}

type geoapifyFeatures struct {
	Features []geoapifyFeature `json:"features"`
}

type geoapifyFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name      string `json:"name"`
		Formatted string `json:"formatted"`
		Country   string `json:"country"`
		State     string `json:"state"`
		District  string `json:"district"`
	} `json:"properties"`
}

// point reads the GeoJSON coordinate pair, longitude first.
func (f *geoapifyFeature) point() (geo.Point, bool) {
	if len(f.Geometry.Coordinates) < 2 {
		return geo.Point{}, false
	}
	return geo.Point{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]}, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fetchJSON performs a GET with optional headers and decodes a 2xx
// response into out. Non-2xx responses become a *fallback.StatusError
// so the chain can classify them.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
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
