package places

import (
	"reflect"
	"testing"
)

func TestKeepKVK(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"Krishi Vigyan Kendra, Ludhiana", "", true},
		{"KVK Bathinda", "", true},
		{"Punjab Agricultural University", "", true},
		{"District Rural Development Centre", "", true},
		{"DAV College", "GT Road", false},
		{"Green Valley School", "", false},
		{"State Bank of India", "Hall Bazar", false},
		{"Extension Centre", "Krishi Vigyan Kendra Road, Naag Kalan", true},
		{"Krishi Bhavan", "", true},
		{"City Hospital", "", false},
		{"Some Shop", "", false},
	}
	for _, tt := range tests {
		if got := KeepKVK(tt.name, tt.address); got != tt.want {
			t.Errorf("KeepKVK(%q, %q) = %v, want %v", tt.name, tt.address, got, tt.want)
		}
	}
}

func TestCategoriesFor(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"fertilizer shop near me", []string{"commercial.agricultural", "shop.farm", "shop.garden"}},
		{"where is the nearest seed shop", []string{"commercial.agricultural", "shop.farm"}},
		{"tractor dealer in ludhiana", []string{"commercial.agricultural"}},
		{"Pesticide Shop", []string{"commercial.agricultural", "shop.farm"}},
		{"anything else", []string{"commercial.agricultural"}},
	}
	for _, tt := range tests {
		if got := CategoriesFor(tt.query); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CategoriesFor(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestGeoResultDescribe(t *testing.T) {
	tests := []struct {
		result GeoResult
		want   string
	}{
		{GeoResult{Name: "Ludhiana", State: "Punjab"}, "Ludhiana, Punjab"},
		{GeoResult{Name: "Ludhiana, Punjab, India", State: "Punjab"}, "Ludhiana, Punjab, India"},
		{GeoResult{Name: "Batala"}, "Batala"},
	}
	for _, tt := range tests {
		if got := tt.result.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestFilterKVKLeavesInputUntouched(t *testing.T) {
	in := []Place{
		{Name: "City School"},
		{Name: "KVK Amritsar"},
	}
	out := FilterKVK(in)
	if len(out) != 1 || out[0].Name != "KVK Amritsar" {
		t.Fatalf("out = %v", out)
	}
	if in[0].Name != "City School" || in[1].Name != "KVK Amritsar" {
		t.Errorf("input mutated: %v", in)
	}
}

func TestKeywordFor(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"fertilizer shop in Moga, Punjab", "fertilizer shop", true},
		{"where can I buy seeds", "seed shop", true},
		{"tractor dealer near me", "tractor dealer", true},
		{"farm machinery for rent", "", false},
		{"farm machinery store nearby", "farm machinery dealer", true},
		{"seed rate for wheat", "", false},
		{"pesticide dose for whitefly", "", false},
		{"Agricultural Supply Store Batala", "agricultural supply store", true},
		{"weather tomorrow", "", false},
	}
	for _, tt := range tests {
		got, ok := KeywordFor(tt.query)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KeywordFor(%q) = %q,%v want %q,%v", tt.query, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsKVKQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"nearest KVK", true},
		{"krishi vigyan kendra in Amritsar", true},
		{"Vigyan Kendra contact", true},
		{"fertilizer shop", false},
	}
	for _, tt := range tests {
		if got := IsKVKQuery(tt.query); got != tt.want {
			t.Errorf("IsKVKQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
