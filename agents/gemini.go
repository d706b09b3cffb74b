package agents

import (
	"context"
	"errors"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/krishidhan/sahayak/components/systemprompt/simple"
)

// GeminiComposer phrases grounded answers with a Gemini model, talking
// to the SDK directly: the grounding renders into the system
// instruction and the fixed request is the only user content.
type GeminiComposer struct {
	Config
	geminiClient *gemini.Client
}

var _ Composer = (*GeminiComposer)(nil)

// NewGeminiComposer builds a composer over an existing Gemini client.
// It shares the phraser options; WithClient does not apply.
func NewGeminiComposer(client *gemini.Client, options ...Option) *GeminiComposer {
	ret := &GeminiComposer{geminiClient: client}
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.instructions == "" {
		ret.instructions = PhrasingInstructions
	}
	if ret.maxTokens == 0 {
		ret.maxTokens = 1024
	}
	if ret.name == "" {
		ret.name = "phraser"
	}
	return ret
}

// Name returns the composer name presentation.
func (g *GeminiComposer) Name() string {
	return g.name
}

// Compose implements Composer.
func (g *GeminiComposer) Compose(ctx context.Context, answer *GroundedAnswer) (string, error) {
	if g.geminiClient == nil {
		return "", errors.New("gemini composer has no client")
	}
	gen := simple.New(g.instructions, simple.WithContextProviders(answer))
	model := g.geminiClient.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SetMaxOutputTokens(int32(g.maxTokens))
	model.SystemInstruction = &gemini.Content{
		Parts: []gemini.Part{gemini.Text(gen.Generate())},
	}

	resp, err := model.GenerateContent(ctx, gemini.Text(phrasingRequest))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(geminiResponseText(resp))
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

// geminiResponseText flattens the text parts of the first candidate.
func geminiResponseText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	sb := new(strings.Builder)
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(gemini.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
