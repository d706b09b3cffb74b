package agents

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/places"
	"github.com/krishidhan/sahayak/config"
	"github.com/krishidhan/sahayak/tools"
)

// State names the orchestrator's position within a turn. Transitions are
// logged at debug level; State() reports the current one.
type State string

const (
	StateIdle               State = "idle"
	StateToolSelection      State = "tool_selection"
	StateToolExecution      State = "tool_execution"
	StateGrounding          State = "grounding"
	StateResponseGeneration State = "response_generation"
	StateContextUpdate      State = "context_update"
)

// Geocoder resolves a free-form place mention to a named point.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*places.GeoResult, *fallback.Invocation, error)
}

// Reply is the outcome of one turn.
type Reply struct {
	// Text is what the farmer reads.
	Text string
	// Intent is the classified intent of the query.
	Intent string
	// ToolsUsed lists executed tools in selection order, nil when none ran.
	ToolsUsed []string
	// Answer is the grounding behind Text, nil for refusals and commands.
	Answer *GroundedAnswer
}

const (
	promptReply = "Please ask a question."

	savedLocationPrefix = "Saved location: "
	badLocationReply    = "I could not find that place. Use the form: set my location to Patna, Bihar."
)

// Orchestrator drives one conversation: it owns the session, selects and
// runs tools for each query, grounds the reply in their results, and
// commits the turn. One orchestrator serves one session; turns run
// sequentially.
type Orchestrator struct {
	registry *tools.Registry
	session  *components.Session
	geocoder Geocoder
	composer Composer
	logger   zerolog.Logger
	state    atomic.String
	turns    atomic.Int64
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSession attaches an existing session instead of a fresh one.
func WithSession(s *components.Session) OrchestratorOption {
	return func(o *Orchestrator) {
		o.session = s
	}
}

// WithGeocoder enables resolution of place mentions and set-location
// commands to coordinates.
func WithGeocoder(g Geocoder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.geocoder = g
	}
}

// WithComposer sets the phrasing path for grounded replies. Without one
// the orchestrator always uses the deterministic template.
func WithComposer(c Composer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.composer = c
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator builds an orchestrator over the registry. An empty
// registry is a startup misconfiguration: the assistant would have no
// data source to answer from.
func NewOrchestrator(registry *tools.Registry, opts ...OrchestratorOption) (*Orchestrator, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, &config.ConfigurationError{Field: "tools", Err: errors.New("orchestrator needs at least one registered tool")}
	}
	o := &Orchestrator{
		registry: registry,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.session == nil {
		o.session = components.NewSession(0)
	}
	o.state.Store(string(StateIdle))
	return o, nil
}

// Session returns the conversation session.
func (o *Orchestrator) Session() *components.Session {
	return o.session
}

// State reports the current pipeline state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Respond runs one turn: resolve location, classify, select tools, run
// them, ground, phrase, commit. It returns an error only when ctx is
// done; every other failure becomes reply text. An abandoned turn leaves
// the session untouched.
func (o *Orchestrator) Respond(ctx context.Context, query string) (*Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Reply{Text: promptReply, Intent: IntentGeneral}, nil
	}
	logger := o.logger.With().Int64("turn", o.turns.Inc()).Logger()

	if frag, ok := parseSetLocation(query); ok {
		return o.saveLocation(ctx, logger, frag)
	}

	snap := o.session.Snapshot()
	turnSnap := snap
	var mention *components.Location
	if frag, ok := extractPlace(query); ok {
		if loc := o.resolvePlace(ctx, frag); loc != nil {
			mention = loc
			turnSnap.Location = loc
			logger.Debug().Str("place", loc.Describe()).Msg("place mention resolved")
		}
	}

	intent := ClassifyIntent(query, turnSnap)

	o.transition(logger, StateToolSelection)
	selected := o.registry.Select(query, turnSnap)
	logger.Debug().Str("intent", intent).Int("tools", len(selected)).Msg("tools selected")

	if len(selected) == 0 && !IsAgricultural(query) {
		logger.Info().Err(ErrOffTopic).Msg("query refused")
		return o.finish(ctx, logger, query, intent, mention, nil, RefusalReply)
	}

	o.transition(logger, StateToolExecution)
	results := o.execute(ctx, logger, selected, query, turnSnap)

	o.transition(logger, StateGrounding)
	answer := &GroundedAnswer{Intent: intent, Results: results}

	var text string
	if answer.Empty() {
		logger.Info().Err(ErrInsufficientGrounding).Msg("turn has no verified data")
		text = ComposeTemplate(answer)
	} else {
		o.transition(logger, StateResponseGeneration)
		text = o.compose(ctx, logger, answer)
	}

	return o.finish(ctx, logger, query, intent, mention, answer, text)
}

// saveLocation handles the explicit set-location command. It is a
// session command, not a query: no tools run and no turn is recorded.
func (o *Orchestrator) saveLocation(ctx context.Context, logger zerolog.Logger, frag string) (*Reply, error) {
	loc := o.resolvePlace(ctx, frag)
	if loc == nil {
		return &Reply{Text: badLocationReply, Intent: IntentGeneral}, nil
	}
	o.session.SetLocation(*loc)
	logger.Info().Str("location", loc.Describe()).Msg("session location set")
	return &Reply{Text: savedLocationPrefix + loc.Describe(), Intent: IntentGeneral}, nil
}

// resolvePlace turns a place fragment into a Location. It trusts two
// signals only: a geocoder hit, or a "name, state" fragment whose state
// half names a real Indian state (kept without coordinates when the
// geocoder cannot confirm it). Anything weaker resolves to nil so stray
// "in ..." clauses never overwrite the session location.
func (o *Orchestrator) resolvePlace(ctx context.Context, frag string) *components.Location {
	name, state := splitPlaceState(frag)
	if o.geocoder != nil {
		if res, _, err := o.geocoder.Geocode(ctx, frag); err == nil && res != nil {
			loc := &components.Location{
				Name:  res.Name,
				State: res.State,
				Lat:   res.Point.Lat,
				Lon:   res.Point.Lon,
			}
			if loc.Name == "" {
				loc.Name = titleCase(name)
			}
			if loc.State == "" {
				loc.State = state
			}
			return loc
		}
	}
	if state != "" {
		return &components.Location{Name: titleCase(name), State: state}
	}
	return nil
}

// execute runs the selected tools concurrently. Results land in a slice
// indexed by selection order, so grounding order never depends on
// completion order.
func (o *Orchestrator) execute(ctx context.Context, logger zerolog.Logger, selected []tools.Tool, query string, snap components.SessionSnapshot) []*tools.Result {
	results := make([]*tools.Result, len(selected))
	var wg sync.WaitGroup
	for i, t := range selected {
		wg.Add(1)
		go func(i int, t tools.Tool) {
			defer wg.Done()
			results[i] = tools.Invoke(ctx, t, query, snap)
		}(i, t)
	}
	wg.Wait()

	for _, res := range results {
		logger.Debug().
			Str("tool", res.Tool).
			Bool("success", res.Success).
			Str("provider", res.Metadata[tools.MetaProvider]).
			Msg("tool executed")
	}
	return results
}

// compose phrases the grounded answer, falling back to the template when
// no composer is set or the composer fails. Both paths see only the
// grounding payload.
func (o *Orchestrator) compose(ctx context.Context, logger zerolog.Logger, answer *GroundedAnswer) string {
	if o.composer != nil {
		text, err := o.composer.Compose(ctx, answer)
		if err != nil {
			logger.Warn().Err(err).Msg("composer failed, template reply used")
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ComposeTemplate(answer)
}

// finish commits the completed turn and assembles the reply. A done ctx
// aborts before the commit: the caller has abandoned the turn, so the
// session must not record it.
func (o *Orchestrator) finish(ctx context.Context, logger zerolog.Logger, query, intent string, mention *components.Location, answer *GroundedAnswer, text string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		o.transition(logger, StateIdle)
		return nil, err
	}

	o.transition(logger, StateContextUpdate)
	var toolsUsed []string
	if answer != nil {
		toolsUsed = answer.ToolsUsed()
	}
	turn := o.session.Commit(components.TurnUpdate{
		Query:     query,
		Intent:    intent,
		Location:  mention,
		ToolsUsed: toolsUsed,
		Summary:   summarize(text),
	})
	logger.Debug().Str("turn_id", turn.ID).Msg("turn committed")

	o.transition(logger, StateIdle)
	return &Reply{Text: text, Intent: intent, ToolsUsed: toolsUsed, Answer: answer}, nil
}

func (o *Orchestrator) transition(logger zerolog.Logger, s State) {
	o.state.Store(string(s))
	logger.Debug().Str("state", string(s)).Msg("orchestrator state")
}

// summarize keeps the first line of a reply, capped, for the turn record.
func summarize(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) > 140 {
		return string(runes[:140]) + "..."
	}
	return text
}
