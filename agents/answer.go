// Package agents runs the turn pipeline: select tools for a query,
// execute them, gather the verified results, and render a reply that
// states nothing beyond what the tools returned. An optional phrasing
// model rewrites the reply for readability; it only ever sees the
// verified results, never the user's words, so it has nothing to answer
// from except tool output.
package agents

import (
	"errors"
	"strings"

	"github.com/krishidhan/sahayak/tools"
)

// Orchestrator sentinels. They never escape a turn: the orchestrator
// maps them to their fixed replies.
var (
	// ErrOffTopic marks a query outside farming with no relevant tool.
	ErrOffTopic = errors.New("query is not about farming")
	// ErrInsufficientGrounding marks a turn whose tools produced no
	// verified data to answer from.
	ErrInsufficientGrounding = errors.New("no verified data to answer from")
)

// ContextTitle is the section title grounding contributes to phrasing
// prompts.
const ContextTitle = "Verified tool results"

// GroundedAnswer is everything a reply may state: the results of the
// turn's tools in selection order. Failed results ride along for
// unavailability notes but contribute no facts.
type GroundedAnswer struct {
	// Intent is the classified intent of the turn, for logging and the
	// session record.
	Intent string
	// Results holds one entry per executed tool, in selection order.
	Results []*tools.Result
}

// Grounded returns the successful results in selection order.
func (g *GroundedAnswer) Grounded() []*tools.Result {
	out := make([]*tools.Result, 0, len(g.Results))
	for _, res := range g.Results {
		if res != nil && res.Success {
			out = append(out, res)
		}
	}
	return out
}

// Empty reports whether the turn produced no verified data at all.
func (g *GroundedAnswer) Empty() bool {
	return len(g.Grounded()) == 0
}

// ToolsUsed lists the executed tool names in selection order.
func (g *GroundedAnswer) ToolsUsed() []string {
	names := make([]string, 0, len(g.Results))
	for _, res := range g.Results {
		if res != nil {
			names = append(names, res.Tool)
		}
	}
	return names
}

// Title implements systemprompt.ContextProvider.
func (g *GroundedAnswer) Title() string { return ContextTitle }

// Info renders one titled block per successful result. This is the
// whole of what a phrasing model gets to see.
func (g *GroundedAnswer) Info() string {
	grounded := g.Grounded()
	if len(grounded) == 0 {
		return ""
	}
	parts := make([]string, 0, len(grounded))
	for _, res := range grounded {
		parts = append(parts, "["+res.Tool+"]\n"+res.Message)
	}
	return strings.Join(parts, "\n\n")
}
