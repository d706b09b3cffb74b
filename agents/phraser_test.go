package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/krishidhan/sahayak/components/systemprompt/simple"
)

func TestNewPhraserDefaults(t *testing.T) {
	p := NewPhraser()
	if p.instructions != PhrasingInstructions {
		t.Fatalf("instructions = %q", p.instructions)
	}
	if p.maxTokens != 1024 {
		t.Fatalf("maxTokens = %d", p.maxTokens)
	}
	if p.Name() != "phraser" {
		t.Fatalf("name = %q", p.Name())
	}

	p = NewPhraser(
		WithModel("gpt-4o-mini"),
		WithTemperature(0.2),
		WithMaxTokens(512),
		WithInstructions("custom instructions"),
		WithName("replier"),
	)
	if p.model != "gpt-4o-mini" || p.temperature != 0.2 || p.maxTokens != 512 {
		t.Fatalf("config = %+v", p.Config)
	}
	if p.instructions != "custom instructions" || p.Name() != "replier" {
		t.Fatalf("config = %+v", p.Config)
	}
}

func TestPhraserComposeNeedsClient(t *testing.T) {
	p := NewPhraser()
	if _, err := p.Compose(context.Background(), groundedFixture()); err == nil {
		t.Fatal("Compose without a client should fail")
	}
}

// The phrasing prompt is built from the grounded answer alone: the
// instructions, then the verified context sections. Failed tools and the
// farmer's words never reach the model.
func TestPhrasingPromptCarriesGroundingOnly(t *testing.T) {
	answer := groundedFixture()
	gen := simple.New(PhrasingInstructions, simple.WithContextProviders(answer))
	prompt := gen.Generate()

	if !strings.HasPrefix(prompt, "You are an assistant for Indian farmers.") {
		t.Fatalf("prompt = %q", prompt)
	}
	for _, want := range []string{
		"# VERIFIED CONTEXT",
		"## Verified tool results",
		"[weather_advisory]\nWeather for Batala, Punjab: 31.2°C, clear sky",
		"[advisory_search]\nFrom the advisory library:",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "places_search") || strings.Contains(prompt, "unreachable") {
		t.Fatalf("failed tool leaked into the prompt:\n%s", prompt)
	}
	if phrasingRequest != "Compose the reply from the verified context." {
		t.Fatalf("phrasingRequest = %q", phrasingRequest)
	}
}
