package components

import (
	"fmt"
	"testing"
)

func TestSessionLastWriteWins(t *testing.T) {
	s := NewSession(5)
	s.Commit(TurnUpdate{
		Query:    "weather in Ludhiana",
		Intent:   "weather_query",
		Location: &Location{Name: "Ludhiana", State: "Punjab", Lat: 30.9010, Lon: 75.8573},
	})
	s.Commit(TurnUpdate{
		Query:    "weather in Karnal",
		Intent:   "weather_query",
		Location: &Location{Name: "Karnal", State: "Haryana", Lat: 29.6857, Lon: 76.9905},
	})
	snap := s.Snapshot()
	if !snap.HasLocation() {
		t.Fatal("expected a location after two commits")
	}
	if snap.Location.Name != "Karnal" {
		t.Errorf("location = %q, want the second turn's location", snap.Location.Name)
	}
}

func TestSessionKeepsLocationWhenTurnHasNone(t *testing.T) {
	s := NewSession(5)
	s.Commit(TurnUpdate{
		Query:    "weather in Bathinda",
		Location: &Location{Name: "Bathinda", State: "Punjab", Lat: 30.2118, Lon: 74.9455},
	})
	s.Commit(TurnUpdate{Query: "will it rain tomorrow", Intent: "weather_query"})
	snap := s.Snapshot()
	if snap.Location == nil || snap.Location.Name != "Bathinda" {
		t.Errorf("location lost by a turn without one: %+v", snap.Location)
	}
}

func TestSessionTurnHistoryFIFO(t *testing.T) {
	cap := 3
	s := NewSession(cap)
	for i := 0; i < cap+2; i++ {
		s.Commit(TurnUpdate{Query: fmt.Sprintf("query %d", i)})
	}
	snap := s.Snapshot()
	if len(snap.Turns) != cap {
		t.Fatalf("history length = %d, want cap %d", len(snap.Turns), cap)
	}
	if snap.Turns[0].Query != "query 2" {
		t.Errorf("oldest surviving turn = %q, want the third submitted", snap.Turns[0].Query)
	}
	if snap.Turns[cap-1].Query != fmt.Sprintf("query %d", cap+1) {
		t.Errorf("newest turn = %q", snap.Turns[cap-1].Query)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewSession(5)
	s.Commit(TurnUpdate{
		Query:    "fpo near Amritsar",
		Location: &Location{Name: "Amritsar", State: "Punjab", Lat: 31.6340, Lon: 74.8723},
	})
	snap := s.Snapshot()
	snap.Location.Name = "mutated"
	snap.Turns[0].Query = "mutated"
	fresh := s.Snapshot()
	if fresh.Location.Name != "Amritsar" {
		t.Error("snapshot mutation leaked into session location")
	}
	if fresh.Turns[0].Query != "fpo near Amritsar" {
		t.Error("snapshot mutation leaked into session history")
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession(5)
	s.Commit(TurnUpdate{
		Query:    "schemes for drip irrigation",
		Intent:   "scheme_search",
		Location: &Location{Name: "Nagpur", State: "Maharashtra", Lat: 21.1458, Lon: 79.0882},
	})
	s.Reset()
	snap := s.Snapshot()
	if snap.HasLocation() || snap.LastIntent != "" || len(snap.Turns) != 0 {
		t.Errorf("reset left state behind: %+v", snap)
	}
	if s.ID() == "" {
		t.Error("reset should keep the session ID")
	}
}
