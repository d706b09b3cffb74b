// Package schemes answers government-scheme questions from the seeded
// scheme collection: what a scheme gives, who qualifies and how to
// apply. Queries that name no state are biased toward the session
// location so state schemes surface for the right farmers.
package schemes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/geo"
	"github.com/krishidhan/sahayak/components/vectordb"
	"github.com/krishidhan/sahayak/tools"
)

const (
	// Name is the registry key of the tool.
	Name = "scheme_search"
	// DefaultPriority lists schemes between live data and advisory text.
	DefaultPriority = 20

	description = "Government scheme lookup: benefits, eligibility and application steps"

	// maxSchemes caps how many schemes one answer cites.
	maxSchemes = 4
	// snippetRunes caps the quoted section of each scheme.
	snippetRunes = 140
)

// queryTerms match by substring so "subsidies" and "loans" count.
var queryTerms = []string{
	"scheme", "yojana", "subsidy", "subsidies", "loan", "credit", "insurance",
	"benefit", "assistance", "pm-kisan", "pm kisan", "pmfby", "fasal bima",
}

// queryWords are short terms that need word boundaries.
var queryWords = []string{"kcc"}

// Section labels of the scheme documents, in document order.
const (
	SectionDescription = "Description"
	SectionBenefits    = "Benefits"
	SectionEligibility = "Eligibility"
	SectionApplication = "Application Process"
)

var sectionLabels = []string{
	SectionDescription, SectionBenefits, SectionEligibility, SectionApplication,
}

// sectionHints route a question to the section that answers it.
var sectionHints = []struct {
	terms   []string
	section string
}{
	{[]string{"apply", "application", "register", "enrol", "enroll", "how to get"}, SectionApplication},
	{[]string{"eligib", "who can", "qualify", "criteria"}, SectionEligibility},
	{[]string{"benefit", "how much", "amount", "premium"}, SectionBenefits},
}

// Searcher is the slice of the retriever the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...vectordb.SearchOption) ([]vectordb.Record, *components.LLMUsage, error)
}

// Scheme is one retrieved scheme with the sections recovered from its
// chunk text. Sections absent from the retrieved chunk stay empty.
type Scheme struct {
	Title       string  `json:"title"`
	State       string  `json:"state,omitempty"`
	Ministry    string  `json:"ministry,omitempty"`
	Category    string  `json:"category,omitempty"`
	Source      string  `json:"source,omitempty"`
	Description string  `json:"description,omitempty"`
	Benefits    string  `json:"benefits,omitempty"`
	Eligibility string  `json:"eligibility,omitempty"`
	Application string  `json:"application,omitempty"`
	Score       float64 `json:"score"`
}

// Payload is the structured answer: the query as searched (possibly
// state-enriched) and the matching schemes, strongest first.
type Payload struct {
	Query   string   `json:"query"`
	Schemes []Scheme `json:"schemes"`
}

// Config carries the scheme tool settings on top of the shared tool
// configuration.
type Config struct {
	tools.Config
	filters map[string]string
}

// Option configures the scheme tool.
type Option func(*Config)

// WithFilter restricts retrieval to records whose metadata key equals
// value, for example a deployment that serves one state only.
func WithFilter(key, value string) Option {
	return func(c *Config) {
		if c.filters == nil {
			c.filters = make(map[string]string)
		}
		c.filters[key] = value
	}
}

// Tool serves scheme queries from the scheme collection.
type Tool struct {
	Config
	searcher Searcher
}

var _ tools.Tool = (*Tool)(nil)

// New builds the scheme tool over searcher.
func New(searcher Searcher, opts ...Option) *Tool {
	t := &Tool{searcher: searcher}
	for _, opt := range opts {
		opt(&t.Config)
	}
	if t.Name() == "" {
		t.SetName(Name)
	}
	if t.Description() == "" {
		t.SetDescription(description)
	}
	if t.Priority() == 0 {
		t.SetPriority(DefaultPriority)
	}
	return t
}

// IsRelevant matches scheme vocabulary and well-known scheme names.
func (t *Tool) IsRelevant(query string, _ components.SessionSnapshot) bool {
	q := strings.ToLower(query)
	if tools.ContainsAny(q, queryTerms) {
		return true
	}
	for _, w := range queryWords {
		if tools.ContainsWord(q, w) {
			return true
		}
	}
	return false
}

// Execute retrieves schemes for the query. The query is enriched with
// the session state when it names none, so "tractor subsidy" asked from
// Rajasthan favors Rajasthan schemes without excluding national ones.
func (t *Tool) Execute(ctx context.Context, query string, snap components.SessionSnapshot) *tools.Result {
	q := searchQuery(query, snap)
	var opts []vectordb.SearchOption
	if len(t.filters) > 0 {
		opts = append(opts, vectordb.SearchWithMeta(t.filters))
	}
	records, _, err := t.searcher.Search(ctx, q, opts...)
	if err != nil {
		return tools.Failure(t.Name(), "The scheme directory is unreachable right now.")
	}
	schemes := collectSchemes(records)
	if len(schemes) == 0 {
		return tools.Failure(t.Name(), "I could not find a matching scheme in the directory.")
	}

	return &tools.Result{
		Tool:    t.Name(),
		Success: true,
		Payload: &Payload{Query: q, Schemes: schemes},
		Message: renderMessage(query, schemes),
	}
}

// searchQuery appends the session state when the query names no state
// of its own.
func searchQuery(query string, snap components.SessionSnapshot) string {
	if _, ok := geo.StateIn(query); ok {
		return query
	}
	if snap.Location != nil && snap.Location.State != "" {
		return query + " " + snap.Location.State
	}
	return query
}

// collectSchemes keeps the strongest chunk per scheme title, in record
// order, capped at maxSchemes.
func collectSchemes(records []vectordb.Record) []Scheme {
	seen := make(map[string]bool, len(records))
	schemes := make([]Scheme, 0, maxSchemes)
	for _, rec := range records {
		meta := rec.Embedding.Meta
		title := meta["title"]
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		s := Scheme{
			Title:    title,
			State:    meta["state"],
			Ministry: meta["ministry"],
			Category: meta["category"],
			Source:   meta["source"],
			Score:    rec.Score,
		}
		parts := sections(rec.Embedding.Object)
		s.Description = parts[SectionDescription]
		s.Benefits = parts[SectionBenefits]
		s.Eligibility = parts[SectionEligibility]
		s.Application = parts[SectionApplication]
		schemes = append(schemes, s)
		if len(schemes) == maxSchemes {
			break
		}
	}
	return schemes
}

// sections recovers the labeled scheme sections from chunk text. The
// chunker re-joins lines, so labels are located by index rather than by
// line; each section runs to the next label or the end of the chunk.
func sections(text string) map[string]string {
	type hit struct {
		label string
		pos   int
	}
	var hits []hit
	for _, label := range sectionLabels {
		if i := strings.Index(text, label+":"); i >= 0 {
			hits = append(hits, hit{label, i})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make(map[string]string, len(hits))
	for i, h := range hits {
		start := h.pos + len(h.label) + 1
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].pos
		}
		out[h.label] = strings.TrimSpace(text[start:end])
	}
	return out
}

// renderMessage quotes the section each scheme answers the question
// with: application steps for "how do I apply", eligibility for "who
// qualifies", benefits for "how much", the description otherwise.
func renderMessage(query string, schemes []Scheme) string {
	section := sectionFor(query)
	sb := new(strings.Builder)
	sb.WriteString("Schemes matching your question:")
	for i, s := range schemes {
		line := s.section(section)
		if line == "" {
			line = s.Description
		}
		fmt.Fprintf(sb, "\n%d. %s", i+1, s.Title)
		if line != "" {
			sb.WriteString(": " + truncate(line, snippetRunes))
		}
		if s.Source != "" {
			sb.WriteString("\n   " + s.Source)
		}
	}
	return sb.String()
}

func sectionFor(query string) string {
	q := strings.ToLower(query)
	for _, hint := range sectionHints {
		if tools.ContainsAny(q, hint.terms) {
			return hint.section
		}
	}
	return SectionDescription
}

func (s Scheme) section(label string) string {
	switch label {
	case SectionBenefits:
		return s.Benefits
	case SectionEligibility:
		return s.Eligibility
	case SectionApplication:
		return s.Application
	default:
		return s.Description
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
