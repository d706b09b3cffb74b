package providers

import (
	"github.com/krishidhan/sahayak/components/embedder/providers/gemini"
	"github.com/krishidhan/sahayak/components/embedder/providers/openai"
)

var (
	FromOpenAI = openai.New
	FromGemini = gemini.New
)
