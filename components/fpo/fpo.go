// Package fpo holds the Farmer Producer Organization registry and its
// loaders. The registry ships with a bundled dataset covering the
// major agricultural states; deployments replace it with a workbook
// from disk or S3. Lookups are pure in-memory distance ranking.
package fpo

import (
	"sort"
	"strings"

	"github.com/krishidhan/sahayak/components/geo"
)

// DefaultLimit is how many organizations a nearest-search returns when
// the caller does not say otherwise.
const DefaultLimit = 5

// Entry is one Farmer Producer Organization. Entries loaded from
// external sources may lack coordinates; those keep the zero point and
// are skipped by distance ranking.
type Entry struct {
	Name     string
	District string
	State    string
	Point    geo.Point
}

// Match pairs an entry with its distance from the query point.
type Match struct {
	Entry      Entry
	DistanceKm float64
}

// Registry answers nearest-organization and by-state lookups. It is
// immutable after construction and safe for concurrent readers.
type Registry struct {
	entries []Entry
}

// NewRegistry builds a registry over entries. With no entries it uses
// the bundled dataset.
func NewRegistry(entries ...Entry) *Registry {
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	return &Registry{entries: entries}
}

// Len returns the number of registered organizations.
func (r *Registry) Len() int { return len(r.entries) }

// Nearest ranks organizations by distance from the query point,
// nearest first. Entries without coordinates are skipped. A limit of
// zero or less falls back to DefaultLimit.
func (r *Registry) Nearest(from geo.Point, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}
	matches := make([]Match, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Point.IsZero() {
			continue
		}
		matches = append(matches, Match{Entry: e, DistanceKm: from.DistanceKm(e.Point)})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].DistanceKm < matches[j].DistanceKm })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ByState returns every organization registered in state,
// case-insensitively.
func (r *Registry) ByState(state string) []Entry {
	out := make([]Entry, 0, 4)
	for _, e := range r.entries {
		if strings.EqualFold(e.State, state) {
			out = append(out, e)
		}
	}
	return out
}

// DefaultEntries returns the bundled organization dataset.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "Punjab Kisan Producer Company Ltd", District: "Ludhiana", State: "Punjab", Point: geo.Point{Lat: 30.9010, Lon: 75.8573}},
		{Name: "Malwa FPO", District: "Bathinda", State: "Punjab", Point: geo.Point{Lat: 30.2118, Lon: 74.9455}},
		{Name: "Majha Farmers Producer Organization", District: "Amritsar", State: "Punjab", Point: geo.Point{Lat: 31.6340, Lon: 74.8723}},
		{Name: "Haryana Gramin Producer Company", District: "Karnal", State: "Haryana", Point: geo.Point{Lat: 29.6857, Lon: 76.9905}},
		{Name: "Mewat Farmers Collective", District: "Nuh", State: "Haryana", Point: geo.Point{Lat: 28.1124, Lon: 77.0085}},
		{Name: "Western UP Farmers Producer Organization", District: "Meerut", State: "Uttar Pradesh", Point: geo.Point{Lat: 28.9845, Lon: 77.7064}},
		{Name: "Bundelkhand Kisan Producer Company", District: "Jhansi", State: "Uttar Pradesh", Point: geo.Point{Lat: 25.4484, Lon: 78.5685}},
		{Name: "Vidarbha Cotton Farmers Producer Organization", District: "Nagpur", State: "Maharashtra", Point: geo.Point{Lat: 21.1458, Lon: 79.0882}},
		{Name: "Western Maharashtra FPO", District: "Pune", State: "Maharashtra", Point: geo.Point{Lat: 18.5204, Lon: 73.8567}},
		{Name: "Karnataka Coffee Growers FPO", District: "Chikmagalur", State: "Karnataka", Point: geo.Point{Lat: 13.3161, Lon: 75.7720}},
		{Name: "North Karnataka Farmers Collective", District: "Belgaum", State: "Karnataka", Point: geo.Point{Lat: 15.8497, Lon: 74.4977}},
		{Name: "Saurashtra Cotton Producer Organization", District: "Rajkot", State: "Gujarat", Point: geo.Point{Lat: 22.3039, Lon: 70.8022}},
		{Name: "Kutch Farmers Producer Company", District: "Kutch", State: "Gujarat", Point: geo.Point{Lat: 23.7337, Lon: 69.8597}},
		{Name: "Rajasthan Desert Farmers FPO", District: "Jodhpur", State: "Rajasthan", Point: geo.Point{Lat: 26.2389, Lon: 73.0243}},
		{Name: "Tamil Nadu Rice Farmers FPO", District: "Thanjavur", State: "Tamil Nadu", Point: geo.Point{Lat: 10.7870, Lon: 79.1378}},
		{Name: "Andhra Spice Farmers Producer Organization", District: "Guntur", State: "Andhra Pradesh", Point: geo.Point{Lat: 16.3067, Lon: 80.4365}},
		{Name: "West Bengal Rice Producers Collective", District: "Burdwan", State: "West Bengal", Point: geo.Point{Lat: 23.2324, Lon: 87.8615}},
		{Name: "Madhya Pradesh Soybean FPO", District: "Indore", State: "Madhya Pradesh", Point: geo.Point{Lat: 22.7196, Lon: 75.8577}},
		{Name: "Bihar Vegetable Growers FPO", District: "Patna", State: "Bihar", Point: geo.Point{Lat: 25.5941, Lon: 85.1376}},
		{Name: "Odisha Tribal Farmers Producer Organization", District: "Kalahandi", State: "Odisha", Point: geo.Point{Lat: 20.1333, Lon: 83.1667}},
	}
}
