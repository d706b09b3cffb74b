package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/systemprompt/simple"
	"github.com/krishidhan/sahayak/schema"
)

// PhrasingInstructions is the default system prompt body. The grounded
// answer renders beneath it as the verified context section.
const PhrasingInstructions = `You are an assistant for Indian farmers.
Rewrite the verified context below as one clear, practical reply.
State only facts present in the verified context. Do not add schemes, amounts, or advice from anywhere else.
If the verified context is empty, reply exactly: I don't have enough verified data to answer.
Keep source links as they are.`

// phrasingRequest is the fixed user turn. The farmer's words never
// appear in the prompt; the model works from the verified context alone.
const phrasingRequest = "Compose the reply from the verified context."

// Phraser phrases grounded answers through an instructor-wrapped chat
// model: OpenAI, Anthropic or Cohere, depending on the injected client.
// Each call builds a fresh prompt, so the Phraser holds no conversation
// state of its own.
type Phraser struct {
	Config
}

var _ Composer = (*Phraser)(nil)

// NewPhraser builds a Phraser from options. WithClient is required for
// Compose to work; the rest have workable defaults.
func NewPhraser(options ...Option) *Phraser {
	ret := new(Phraser)
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

// Name returns the phraser name presentation.
func (p *Phraser) Name() string {
	return p.name
}

// Compose implements Composer: render the grounding into the system
// prompt, ask the model for the reply, and return its message.
func (p *Phraser) Compose(ctx context.Context, answer *GroundedAnswer) (string, error) {
	if p.client == nil {
		return "", errors.New("phraser has no model client")
	}
	gen := simple.New(p.instructions, simple.WithContextProviders(answer))
	messages := []components.Message{
		*components.NewMessage(components.SystemRole, schema.String(gen.Generate())),
		*components.NewMessage(components.UserRole, schema.NewInput(phrasingRequest)),
	}
	output := new(schema.Answer)
	if err := p.response(ctx, messages, output, nil); err != nil {
		return "", err
	}
	return strings.TrimSpace(output.ChatMessage), nil
}

// response obtains the model reply for the prompt messages. The last
// message is the user turn; a system message becomes the provider's
// native system slot (OpenAI keeps it inline, Anthropic and Cohere carry
// it as a dedicated field).
func (p *Phraser) response(ctx context.Context, messages []components.Message, output *schema.Answer, llmResp *components.LLMResponse) error {
	if len(messages) == 0 {
		return errors.New("no prompt messages")
	}
	switch clt := p.client.(type) {
	case *instructor.InstructorOpenAI:
		chatReq := openai.ChatCompletionRequest{
			Model:               p.model,
			Temperature:         p.temperature,
			MaxCompletionTokens: p.maxTokens,
		}
		for _, msg := range messages {
			v := new(openai.ChatCompletionMessage)
			msg.ToOpenAI(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		if res, err := clt.CreateChatCompletion(ctx, chatReq, output); err != nil {
			return err
		} else if llmResp != nil {
			llmResp.FromOpenAI(&res)
		}
	case *instructor.InstructorAnthropic:
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(p.model),
			Temperature: &p.temperature,
			MaxTokens:   p.maxTokens,
		}
		for _, msg := range messages {
			if msg.Role() == components.SystemRole {
				chatReq.System = schema.Stringify(msg.Content())
				continue
			}
			v := new(anthropic.Message)
			msg.ToAnthropic(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		if res, err := clt.CreateMessages(ctx, chatReq, output); err != nil {
			return err
		} else if llmResp != nil {
			llmResp.FromAnthropic(&res)
		}
	case *instructor.InstructorCohere:
		last := len(messages) - 1
		temperature := float64(p.temperature)
		chatReq := cohere.ChatRequest{
			Model:       &p.model,
			Temperature: &temperature,
			MaxTokens:   &p.maxTokens,
			Message:     schema.Stringify(messages[last].Content()),
		}
		for _, msg := range messages[:last] {
			if msg.Role() == components.SystemRole {
				preamble := schema.Stringify(msg.Content())
				chatReq.Preamble = &preamble
				continue
			}
			v := new(cohere.Message)
			msg.ToCohere(v)
			chatReq.ChatHistory = append(chatReq.ChatHistory, v)
		}
		if res, err := clt.Chat(ctx, &chatReq, output); err != nil {
			return err
		} else if llmResp != nil {
			llmResp.FromCohere(res)
		}
	default:
		return errors.New("unsupported model client")
	}
	return nil
}
