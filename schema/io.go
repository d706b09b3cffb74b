package schema

import "encoding/json"

// Input is the default user-turn schema.
type Input struct {
	Base
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The message sent to the assistant." validate:"required"`
}

// NewInput returns a new Input with the given chat message.
func NewInput(msg string) *Input {
	return &Input{ChatMessage: msg}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Answer is the phrasing model's output: a single reply composed strictly
// from the verified data it was shown.
type Answer struct {
	Base
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The reply composed only from the verified data provided." validate:"required"`
}

func (s Answer) String() string {
	return s.ChatMessage
}
