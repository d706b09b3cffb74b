// Package advisory answers agronomy questions from the seeded advisory
// collection. It retrieves the closest passages by semantic similarity
// and never paraphrases beyond what the corpus holds.
package advisory

import (
	"context"
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/vectordb"
	"github.com/krishidhan/sahayak/tools"
)

const (
	// Name is the registry key of the tool.
	Name = "advisory_search"
	// DefaultPriority keeps advisory passages after live data sections.
	DefaultPriority = 10

	description = "Crop and field management advisories from the extension corpus"

	// maxPassages caps how many passages one answer cites.
	maxPassages = 4
	// snippetRunes caps the quoted first line of each passage.
	snippetRunes = 140
)

// queryStems match by substring so inflections count ("fertiliser",
// "irrigated", "sowing"). Weather words are deliberately absent; the
// weather tool owns those.
var queryStems = []string{
	"advisory", "advice", "crop", "cultivat", "fertil", "irrigat", "soil",
	"pest", "disease", "sow", "harvest", "seed rate", "variet", "yield",
	"weed", "fungus", "mulch", "manure", "nutrient", "nursery", "transplant",
	"spray", "wheat", "paddy", "cotton", "mustard", "sugarcane", "maize",
	"kharif", "rabi", "frost", "heat wave", "heatwave",
}

// queryWords are short crop names that need word boundaries, so "price"
// does not read as "rice".
var queryWords = []string{"rice", "gram"}

// Searcher is the slice of the retriever the tool needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...vectordb.SearchOption) ([]vectordb.Record, *components.LLMUsage, error)
}

// Passage is one retrieved advisory chunk with its provenance.
type Passage struct {
	Title    string  `json:"title"`
	State    string  `json:"state,omitempty"`
	Category string  `json:"category,omitempty"`
	Source   string  `json:"source,omitempty"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Payload is the structured answer: passages strongest first, one per
// advisory title.
type Payload struct {
	Query    string    `json:"query"`
	Passages []Passage `json:"passages"`
}

// Tool serves agronomy queries from the advisory collection.
type Tool struct {
	tools.Config
	searcher Searcher
}

var _ tools.Tool = (*Tool)(nil)

// New builds the advisory tool over searcher.
func New(searcher Searcher, opts ...tools.Option) *Tool {
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

// IsRelevant matches agronomy vocabulary: field operations, inputs,
// crop names and season words.
func (t *Tool) IsRelevant(query string, _ components.SessionSnapshot) bool {
	q := strings.ToLower(query)
	if tools.ContainsAny(q, queryStems) {
		return true
	}
	for _, w := range queryWords {
		if tools.ContainsWord(q, w) {
			return true
		}
	}
	return false
}

// Execute retrieves passages for the query. It fails when the library
// is unreachable or holds nothing relevant; a weak match filtered out
// by the retriever's score floor counts as nothing.
func (t *Tool) Execute(ctx context.Context, query string, _ components.SessionSnapshot) *tools.Result {
	records, _, err := t.searcher.Search(ctx, query)
	if err != nil {
		return tools.Failure(t.Name(), "The advisory library is unreachable right now.")
	}
	passages := collectPassages(records)
	if len(passages) == 0 {
		return tools.Failure(t.Name(), "The advisory library has nothing on that topic yet.")
	}

	return &tools.Result{
		Tool:    t.Name(),
		Success: true,
		Payload: &Payload{Query: query, Passages: passages},
		Message: renderMessage(passages),
	}
}

// collectPassages keeps the strongest chunk per advisory title, in
// record order, capped at maxPassages.
func collectPassages(records []vectordb.Record) []Passage {
	seen := make(map[string]bool, len(records))
	passages := make([]Passage, 0, maxPassages)
	for _, rec := range records {
		meta := rec.Embedding.Meta
		title := meta["title"]
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		passages = append(passages, Passage{
			Title:    title,
			State:    meta["state"],
			Category: meta["category"],
			Source:   meta["source"],
			Text:     rec.Embedding.Object,
			Score:    rec.Score,
		})
		if len(passages) == maxPassages {
			break
		}
	}
	return passages
}

func renderMessage(passages []Passage) string {
	sb := new(strings.Builder)
	sb.WriteString("From the advisory library:")
	for _, p := range passages {
		sb.WriteString("\n- " + p.Title + ": " + snippet(p.Text))
	}
	return sb.String()
}

// snippet returns the first body line of a chunk, skipping the labeled
// header lines seed documents start with.
func snippet(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isHeaderLine(line) {
			continue
		}
		return truncate(line, snippetRunes)
	}
	return ""
}

var headerLabels = []string{"Title:", "Category:", "State:", "Ministry:"}

func isHeaderLine(line string) bool {
	for _, label := range headerLabels {
		if strings.HasPrefix(line, label) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
