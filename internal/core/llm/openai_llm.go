package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/aufaim/docquery/internal/core"
)

const (
	// defaultMaxTokens bounds answer length; grounded answers over retrieved
	// context rarely need more.
	defaultMaxTokens = 500

	// defaultTemperature keeps generation close to deterministic so answers
	// stay grounded in the supplied context.
	defaultTemperature = 0.2
)

// OpenAILLM generates grounded answers via the OpenAI chat completions API.
type OpenAILLM struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	return &OpenAILLM{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

func (l *OpenAILLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(l.maxTokens),
		Temperature: openai.Float(l.temperature),
	}

	completion, err := l.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}

var _ core.LLMProvider = (*OpenAILLM)(nil)
