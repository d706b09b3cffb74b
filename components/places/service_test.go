package places

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
)

type fakeSearcher struct {
	name    string
	calls   int
	last    Query
	err     error
	answers []Place
}

func (f *fakeSearcher) Name() string { return f.name }

func (f *fakeSearcher) Call(_ context.Context, q Query) ([]Place, error) {
	f.calls++
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return f.answers, nil
}

func somePlaces() []Place {
	return []Place{
		{Name: "Majitha Fertilizers", Address: "Majitha Road, Amritsar", DistanceKm: 1.0, Source: SourceGeoapify},
		{Name: "Verka Agro Store", Address: "GT Road, Verka", DistanceKm: 7.8, Source: SourceGeoapify},
	}
}

func TestServiceSearchCachesResults(t *testing.T) {
	searcher := &fakeSearcher{name: SourceGeoapify, answers: somePlaces()}
	svc := NewService(nil, []SearchProvider{searcher})

	query := Query{Text: "fertilizer shop", Center: amritsar}

	first, inv, err := svc.SearchNearby(context.Background(), query)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if inv.Provider != SourceGeoapify {
		t.Errorf("Provider = %q", inv.Provider)
	}

	second, inv2, err := svc.SearchNearby(context.Background(), query)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if searcher.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second hit must come from cache)", searcher.calls)
	}
	if inv2.Provider != SourceGeoapify {
		t.Errorf("cached Provider = %q, want original provider name", inv2.Provider)
	}
	if len(first) != len(second) || first[0].Name != second[0].Name {
		t.Errorf("cached answer differs: %v vs %v", first, second)
	}

	stats := svc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats = %+v, want 1 hit / 1 miss", stats)
	}

	// Mutating the returned slice must not poison the cache.
	second[0].Name = "mutated"
	third, _, _ := svc.SearchNearby(context.Background(), query)
	if third[0].Name != "Majitha Fertilizers" {
		t.Errorf("cache poisoned: %q", third[0].Name)
	}
}

func TestServiceRateLimiterDeniesAsQuota(t *testing.T) {
	searcher := &fakeSearcher{name: SourceGeoapify, answers: somePlaces()}
	svc := NewService(nil, []SearchProvider{searcher}, WithRateLimit(1, time.Minute))

	if _, _, err := svc.SearchNearby(context.Background(), Query{Text: "seed shop", Center: amritsar}); err != nil {
		t.Fatalf("first search: %v", err)
	}

	// Different text dodges the cache, so the limiter must answer.
	_, _, err := svc.SearchNearby(context.Background(), Query{Text: "pesticide shop", Center: amritsar})
	var exhausted *fallback.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *fallback.ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 1 || exhausted.Attempts[0].Kind != fallback.Quota {
		t.Fatalf("attempts = %+v, want one quota demotion", exhausted.Attempts)
	}
	if !errors.Is(err, fallback.ErrRateLimited) {
		t.Error("exhaustion should wrap ErrRateLimited")
	}
	if searcher.calls != 1 {
		t.Errorf("provider called %d times, want 1 (denial must not reach upstream)", searcher.calls)
	}
	if svc.Stats().Denials != 1 {
		t.Errorf("Denials = %d, want 1", svc.Stats().Denials)
	}
}

func TestServiceSearchFallsBackOnEmptyPrimary(t *testing.T) {
	primary := &fakeSearcher{name: SourceGeoapify, err: ErrNoResults}
	secondary := &fakeSearcher{name: SourceFoursquare, answers: somePlaces()}
	svc := NewService(nil, []SearchProvider{primary, secondary})

	got, inv, err := svc.SearchNearby(context.Background(), Query{Text: "seed shop", Center: amritsar})
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if inv.Provider != SourceFoursquare {
		t.Errorf("Provider = %q, want %q", inv.Provider, SourceFoursquare)
	}
	if len(inv.Attempts) != 1 || inv.Attempts[0].Provider != SourceGeoapify {
		t.Fatalf("attempts = %+v, want one geoapify demotion", inv.Attempts)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestServiceGeocodeChainOrder(t *testing.T) {
	calls := make([]string, 0, 2)
	failing := fallback.ProviderFunc(SourceGeoapify, func(_ context.Context, loc string) (*GeoResult, error) {
		calls = append(calls, SourceGeoapify)
		return nil, ErrNoResults
	})
	answering := fallback.ProviderFunc("openweathermap", func(_ context.Context, loc string) (*GeoResult, error) {
		calls = append(calls, "openweathermap")
		return &GeoResult{Name: "Amritsar", State: "Punjab", Point: amritsar, Source: "openweathermap"}, nil
	})
	svc := NewService([]GeocodeProvider{failing, answering}, nil)

	got, inv, err := svc.Geocode(context.Background(), "Amritsar")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if got.Source != "openweathermap" || inv.Provider != "openweathermap" {
		t.Errorf("Source = %q, Provider = %q", got.Source, inv.Provider)
	}
	if len(calls) != 2 || calls[0] != SourceGeoapify {
		t.Errorf("call order = %v", calls)
	}
}

func TestServiceSearchKVKFilters(t *testing.T) {
	searcher := &fakeSearcher{name: SourceGeoapify, answers: []Place{
		{Name: "Krishi Vigyan Kendra, Amritsar", Address: "Naag Kalan, Amritsar", DistanceKm: 12.0},
		{Name: "Khalsa College", Address: "GT Road, Amritsar", DistanceKm: 3.0},
		{Name: "District Agricultural Farm", Address: "Verka", DistanceKm: 6.0},
		{Name: "State Bank of India", Address: "Hall Bazar", DistanceKm: 1.0},
	}}
	svc := NewService(nil, []SearchProvider{searcher})

	got, _, err := svc.SearchKVK(context.Background(), amritsar)
	if err != nil {
		t.Fatalf("SearchKVK: %v", err)
	}
	if searcher.last.Text != KVKQuery {
		t.Errorf("query text = %q, want %q", searcher.last.Text, KVKQuery)
	}
	if searcher.last.RadiusM != KVKRadiusM {
		t.Errorf("radius = %d, want %d", searcher.last.RadiusM, KVKRadiusM)
	}
	if len(got) != 2 {
		t.Fatalf("kept = %v, want the kendra and the farm", got)
	}
	if got[0].Name != "Krishi Vigyan Kendra, Amritsar" || got[1].Name != "District Agricultural Farm" {
		t.Errorf("kept = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestServiceSearchKVKPropagatesExhaustion(t *testing.T) {
	svc := NewService(nil, []SearchProvider{&fakeSearcher{name: SourceGeoapify, err: ErrNoResults}})
	_, _, err := svc.SearchKVK(context.Background(), geo.Point{Lat: 30.9, Lon: 75.85})
	var exhausted *fallback.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *fallback.ExhaustedError", err)
	}
}
