package components

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

// DefaultTurnHistory is the turn-history cap applied when a session is
// created without an explicit one.
const DefaultTurnHistory = 10

// Location is the most recent place the conversation referenced.
type Location struct {
	Name       string    `json:"name"`
	State      string    `json:"state,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	ObservedAt time.Time `json:"observed_at"`
}

// Describe renders the location for replies: "Name, State" unless the
// name already carries the state.
func (l *Location) Describe() string {
	if l.State != "" && !strings.Contains(l.Name, l.State) {
		return l.Name + ", " + l.State
	}
	return l.Name
}

// Turn is the compact record of one completed exchange.
type Turn struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Intent    string    `json:"intent,omitempty"`
	ToolsUsed []string  `json:"tools_used,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	At        time.Time `json:"at"`
}

// TurnUpdate carries the facts the orchestrator commits once a turn has
// fully completed. A nil Location leaves the previous one in place.
type TurnUpdate struct {
	Query     string
	Intent    string
	Location  *Location
	ToolsUsed []string
	Summary   string
}

// Session manages the conversational context for one assistant session:
// the last known location, the last recognized intent, and a capped FIFO
// history of completed turns.
// threadsafe, single-writer: only the orchestrator commits updates, tools
// read snapshots.
type Session struct {
	// id identifies the session
	id string
	// location is the last committed location, last-write-wins
	location *Location
	// lastIntent is the most recent recognized intent
	lastIntent string
	// turns is the capped FIFO history of completed turns
	turns []Turn
	// maxTurns is the history cap; oldest entries are evicted first
	maxTurns int
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewSession initializes a Session with an empty history and the given
// turn-history cap (DefaultTurnHistory when cap <= 0).
func NewSession(maxTurns int) *Session {
	if maxTurns <= 0 {
		maxTurns = DefaultTurnHistory
	}
	return &Session{
		id:       xid.New().String(),
		turns:    make([]Turn, 0, maxTurns+1),
		maxTurns: maxTurns,
		mtx:      new(sync.RWMutex),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// MaxTurns returns the turn-history cap.
func (s *Session) MaxTurns() int {
	return s.maxTurns
}

// SetLocation overwrites the session location, e.g. from an explicit
// "set my location" command.
func (s *Session) SetLocation(loc Location) {
	if loc.ObservedAt.IsZero() {
		loc.ObservedAt = time.Now()
	}
	s.mtx.Lock()
	s.location = &loc
	s.mtx.Unlock()
}

// Commit merges a completed turn into the session: location and intent are
// last-write-wins per key, and the turn summary is appended with FIFO
// eviction once the cap is exceeded. Returns the recorded turn.
func (s *Session) Commit(up TurnUpdate) Turn {
	turn := Turn{
		ID:        NewTurnID(),
		Query:     up.Query,
		Intent:    up.Intent,
		ToolsUsed: up.ToolsUsed,
		Summary:   up.Summary,
		At:        time.Now(),
	}
	s.mtx.Lock()
	if up.Location != nil {
		loc := *up.Location
		if loc.ObservedAt.IsZero() {
			loc.ObservedAt = turn.At
		}
		s.location = &loc
	}
	if up.Intent != "" {
		s.lastIntent = up.Intent
	}
	s.turns = append(s.turns, turn)
	if len(s.turns) > s.maxTurns {
		s.turns = s.turns[1:]
	}
	s.mtx.Unlock()
	return turn
}

// Snapshot returns the read view handed to relevance predicates and tool
// executions. It is a value copy: nothing a tool does to it can reach the
// session, so context stays stable for the whole turn.
func (s *Session) Snapshot() SessionSnapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	snap := SessionSnapshot{
		SessionID:  s.id,
		LastIntent: s.lastIntent,
		Turns:      make([]Turn, len(s.turns)),
	}
	copy(snap.Turns, s.turns)
	if s.location != nil {
		loc := *s.location
		snap.Location = &loc
	}
	return snap
}

// Reset clears location, intent, and turn history, keeping the session ID.
func (s *Session) Reset() {
	s.mtx.Lock()
	s.location = nil
	s.lastIntent = ""
	s.turns = make([]Turn, 0, s.maxTurns)
	s.mtx.Unlock()
}

// TurnCount returns the number of turns currently held in history.
func (s *Session) TurnCount() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.turns)
}

// SessionSnapshot is the immutable per-turn view of a Session.
type SessionSnapshot struct {
	SessionID  string
	Location   *Location
	LastIntent string
	Turns      []Turn
}

// HasLocation reports whether the snapshot carries a usable location.
func (s SessionSnapshot) HasLocation() bool {
	return s.Location != nil && s.Location.Name != ""
}

// Describe renders the snapshot for the /context command.
func (s SessionSnapshot) Describe() string {
	var b strings.Builder
	b.WriteString("session: " + s.SessionID + "\n")
	if s.Location != nil {
		b.WriteString("location: " + s.Location.Describe() + "\n")
	} else {
		b.WriteString("location: not set\n")
	}
	if s.LastIntent != "" {
		b.WriteString("last intent: " + s.LastIntent + "\n")
	}
	if len(s.Turns) == 0 {
		b.WriteString("turns: none")
		return b.String()
	}
	b.WriteString("recent turns:")
	for _, t := range s.Turns {
		b.WriteString("\n  - " + t.Query)
		if len(t.ToolsUsed) > 0 {
			b.WriteString(" [" + strings.Join(t.ToolsUsed, ", ") + "]")
		}
	}
	return b.String()
}
