package places

import (
	"context"
	"strings"
	"testing"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/places"
	"github.com/krishidhan/sahayak/tools"
)

type fakeService struct {
	hits        []places.Place
	inv         *fallback.Invocation
	err         error
	stats       places.Stats
	lastQuery   places.Query
	kvkCalls    int
	shopCalls   int
	hitOnSearch bool
}

func (f *fakeService) SearchNearby(_ context.Context, q places.Query) ([]places.Place, *fallback.Invocation, error) {
	f.shopCalls++
	f.lastQuery = q
	if f.hitOnSearch {
		f.stats.Hits++
	}
	return f.hits, f.inv, f.err
}

func (f *fakeService) SearchKVK(_ context.Context, _ geo.Point) ([]places.Place, *fallback.Invocation, error) {
	f.kvkCalls++
	return f.hits, f.inv, f.err
}

func (f *fakeService) Stats() places.Stats { return f.stats }

func batalaSnap() components.SessionSnapshot {
	return components.SessionSnapshot{
		Location: &components.Location{Name: "Batala", State: "Punjab", Lat: 31.8186, Lon: 75.2028},
	}
}

func geoapifyInv() *fallback.Invocation {
	return &fallback.Invocation{Op: places.OpSearch, Provider: places.SourceGeoapify}
}

func TestIsRelevant(t *testing.T) {
	tool := New(&fakeService{})
	tests := []struct {
		query string
		want  bool
	}{
		{"nearest KVK", true},
		{"fertilizer shop in Moga", true},
		{"where can I buy seeds", true},
		{"seed rate for wheat", false},
		{"weather tomorrow", false},
		{"pm kisan status", false},
	}
	for _, tt := range tests {
		if got := tool.IsRelevant(tt.query, components.SessionSnapshot{}); got != tt.want {
			t.Errorf("IsRelevant(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestExecuteShopSearch(t *testing.T) {
	svc := &fakeService{
		hits: []places.Place{
			{Name: "Kisan Khad Bhandar", Address: "GT Road, Batala", DistanceKm: 1.2, MapsURL: "https://www.openstreetmap.org/?mlat=31.82&mlon=75.20#map=16/31.82/75.20"},
			{Name: "Punjab Agro Store", Address: "Majitha Road", DistanceKm: 3.8},
		},
		inv: geoapifyInv(),
	}
	tool := New(svc)

	res := tool.Execute(context.Background(), "fertilizer shop near me", batalaSnap())
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Message)
	}
	if svc.shopCalls != 1 || svc.kvkCalls != 0 {
		t.Errorf("calls shop=%d kvk=%d", svc.shopCalls, svc.kvkCalls)
	}
	if svc.lastQuery.Text != "fertilizer shop" {
		t.Errorf("search text = %q", svc.lastQuery.Text)
	}
	if len(svc.lastQuery.Categories) == 0 {
		t.Error("no category filter passed")
	}
	payload := res.Payload.(*Payload)
	if payload.Kind != KindShop || len(payload.Places) != 2 {
		t.Errorf("payload = %+v", payload)
	}
	if res.Metadata[tools.MetaProvider] != places.SourceGeoapify {
		t.Errorf("provider_used = %q", res.Metadata[tools.MetaProvider])
	}
	for _, want := range []string{"fertilizer shop near Batala, Punjab:", "1. Kisan Khad Bhandar", "(1.2 km)", "2. Punjab Agro Store", "openstreetmap.org"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("message missing %q:\n%s", want, res.Message)
		}
	}
}

func TestExecuteKVKSearch(t *testing.T) {
	svc := &fakeService{
		hits: []places.Place{{Name: "Krishi Vigyan Kendra, Gurdaspur", DistanceKm: 18.4}},
		inv:  geoapifyInv(),
	}
	tool := New(svc)

	res := tool.Execute(context.Background(), "krishi vigyan kendra near batala", batalaSnap())
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Message)
	}
	if svc.kvkCalls != 1 || svc.shopCalls != 0 {
		t.Errorf("calls shop=%d kvk=%d", svc.shopCalls, svc.kvkCalls)
	}
	payload := res.Payload.(*Payload)
	if payload.Kind != KindKVK || payload.Keyword != places.KVKQuery {
		t.Errorf("payload = %+v", payload)
	}
}

func TestExecuteWithoutLocation(t *testing.T) {
	svc := new(fakeService)
	tool := New(svc)

	res := tool.Execute(context.Background(), "fertilizer shop", components.SessionSnapshot{})
	if res.Success {
		t.Error("succeeded without a location")
	}
	if svc.shopCalls+svc.kvkCalls != 0 {
		t.Error("searched without a location")
	}
}

func TestExecuteEmptyAndExhausted(t *testing.T) {
	empty := &fakeService{hits: nil, inv: geoapifyInv()}
	tool := New(empty)
	res := tool.Execute(context.Background(), "pesticide shop", batalaSnap())
	if res.Success {
		t.Error("empty search reported success")
	}
	if !strings.Contains(res.Message, "could not find") || !strings.Contains(res.Message, "pesticide shop") {
		t.Errorf("message = %q", res.Message)
	}

	down := &fakeService{
		err: &fallback.ExhaustedError{Op: places.OpSearch},
		inv: &fallback.Invocation{Op: places.OpSearch},
	}
	res = New(down).Execute(context.Background(), "pesticide shop", batalaSnap())
	if res.Success {
		t.Error("exhausted chain reported success")
	}
	if !strings.Contains(res.Message, "unreachable") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestExecuteMarksCacheHits(t *testing.T) {
	svc := &fakeService{
		hits: []places.Place{{Name: "Kisan Khad Bhandar", DistanceKm: 1.2}},
		inv:  geoapifyInv(),
	}
	tool := New(svc)

	res := tool.Execute(context.Background(), "fertilizer shop", batalaSnap())
	if res.Metadata[tools.MetaCache] == "hit" {
		t.Error("first lookup marked as cache hit")
	}

	// The service counts a hit during the call; the tool sees the delta.
	svc.hitOnSearch = true
	res = tool.Execute(context.Background(), "fertilizer shop", batalaSnap())
	if res.Metadata[tools.MetaCache] != "hit" {
		t.Errorf("cache metadata = %q, want hit", res.Metadata[tools.MetaCache])
	}
}
