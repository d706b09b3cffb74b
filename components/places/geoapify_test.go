package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krishidhan/sahayak/components/geo"
)

var amritsar = geo.Point{Lat: 31.6340, Lon: 74.8723}

const geoapifyGeocodeBody = `{
	"features": [{
		"geometry": {"coordinates": [74.8723, 31.6340]},
		"properties": {
			"formatted": "Amritsar, Punjab, India",
			"country": "India",
			"state": "Punjab",
			"district": "Amritsar"
		}
	}]
}`

const geoapifyPlacesBody = `{
	"features": [
		{
			"geometry": {"coordinates": [74.9000, 31.7000]},
			"properties": {"name": "Verka Agro Store", "formatted": "GT Road, Verka, Punjab"}
		},
		{
			"geometry": {"coordinates": [74.8800, 31.6400]},
			"properties": {"name": "Majitha Fertilizers", "formatted": "Majitha Road, Amritsar, Punjab"}
		}
	]
}`

func TestGeoapifyGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("text") != "Amritsar" {
			t.Errorf("text = %q, want Amritsar", q.Get("text"))
		}
		if q.Get("apiKey") != "geo-key" {
			t.Errorf("apiKey = %q, want geo-key", q.Get("apiKey"))
		}
		if q.Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", q.Get("limit"))
		}
		if q.Get("country") != "IN" {
			t.Errorf("country = %q, want IN", q.Get("country"))
		}
		fmt.Fprint(w, geoapifyGeocodeBody)
	}))
	defer srv.Close()

	c := NewGeoapify("geo-key")
	c.GeocodeURL = srv.URL
	c.HTTPClient = srv.Client()

	got, err := c.Geocode(context.Background(), "Amritsar")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if got.Name != "Amritsar, Punjab, India" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.State != "Punjab" || got.District != "Amritsar" {
		t.Errorf("State = %q, District = %q", got.State, got.District)
	}
	if got.Point.Lat != 31.6340 || got.Point.Lon != 74.8723 {
		t.Errorf("Point = %+v", got.Point)
	}
	if got.Source != SourceGeoapify {
		t.Errorf("Source = %q, want %q", got.Source, SourceGeoapify)
	}
}

func TestGeoapifyGeocodeNoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	c := NewGeoapify("geo-key")
	c.GeocodeURL = srv.URL
	c.HTTPClient = srv.Client()

	if _, err := c.Geocode(context.Background(), "Nowhereville"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
}

func TestGeoapifySearchNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("categories") != "commercial.agricultural,shop.farm" {
			t.Errorf("categories = %q", q.Get("categories"))
		}
		if q.Get("text") != "seed shop" {
			t.Errorf("text = %q", q.Get("text"))
		}
		if q.Get("filter") == "" || q.Get("bias") == "" {
			t.Error("filter/bias missing")
		}
		fmt.Fprint(w, geoapifyPlacesBody)
	}))
	defer srv.Close()

	c := NewGeoapify("geo-key")
	c.PlacesURL = srv.URL
	c.HTTPClient = srv.Client()

	got, err := c.SearchNearby(context.Background(), Query{
		Text:       "seed shop",
		Categories: []string{"commercial.agricultural", "shop.farm"},
		Center:     amritsar,
	})
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Majitha Fertilizers sits well inside Verka's distance; nearest
	// must come first regardless of response order.
	if got[0].Name != "Majitha Fertilizers" {
		t.Errorf("first = %q, want Majitha Fertilizers", got[0].Name)
	}
	if got[0].DistanceKm >= got[1].DistanceKm {
		t.Errorf("distances not ascending: %v then %v", got[0].DistanceKm, got[1].DistanceKm)
	}
	for _, p := range got {
		if p.Source != SourceGeoapify {
			t.Errorf("Source = %q, want %q", p.Source, SourceGeoapify)
		}
		if p.MapsURL == "" {
			t.Errorf("%s has no maps URL", p.Name)
		}
	}
}

func TestGeoapifySearchNearbyEmptyAdvancesChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	c := NewGeoapify("geo-key")
	c.PlacesURL = srv.URL
	c.HTTPClient = srv.Client()

	if _, err := c.SearchNearby(context.Background(), Query{Text: "seed shop", Center: amritsar}); !errors.Is(err, ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
}
