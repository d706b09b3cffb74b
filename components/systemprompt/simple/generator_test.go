package simple

import (
	"strings"
	"testing"

	"github.com/krishidhan/sahayak/components/systemprompt"
)

type staticProvider struct {
	title string
	info  string
}

func (p staticProvider) Title() string { return p.title }
func (p staticProvider) Info() string  { return p.info }

func TestGenerateWithoutProviders(t *testing.T) {
	g := New("You are a farming assistant.")
	got := g.Generate()
	if got != "You are a farming assistant." {
		t.Errorf("unexpected prompt: %q", got)
	}
	if strings.Contains(got, "VERIFIED CONTEXT") {
		t.Error("context heading rendered with no providers registered")
	}
}

func TestGenerateRendersProviderSections(t *testing.T) {
	g := New("You are a farming assistant.",
		WithContextProviders(
			staticProvider{title: "Weather", info: "32C, humidity 78%"},
			staticProvider{title: "Empty", info: ""},
			staticProvider{title: "Schemes", info: "PM-KISAN"},
		),
	)
	got := g.Generate()
	for _, want := range []string{"# VERIFIED CONTEXT", "## Weather", "32C, humidity 78%", "## Schemes", "PM-KISAN"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Empty") {
		t.Error("provider with blank info should be skipped")
	}
}

func TestProviderRegistry(t *testing.T) {
	g := New("base")
	g.AddContextProviders(staticProvider{title: "A", info: "1"})
	g.AddContextProviders(staticProvider{title: "A", info: "duplicate"}, staticProvider{title: "B", info: "2"})
	if n := len(g.ContextProviders()); n != 2 {
		t.Fatalf("registered providers = %d, want 2 (duplicate title skipped)", n)
	}
	p, err := g.ContextProvider("A")
	if err != nil {
		t.Fatal(err)
	}
	if p.Info() != "1" {
		t.Errorf("duplicate registration replaced the original: %q", p.Info())
	}
	g.RemoveContextProviders("A")
	if _, err := g.ContextProvider("A"); err == nil {
		t.Error("provider A still resolvable after removal")
	}
	var _ systemprompt.Generator = g
}
