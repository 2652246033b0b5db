package llmservice

import (
	"context"
	"fmt"
	"strings"

	"sql-rag/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client wraps the inference model endpoint.
type Client struct {
	llm   llms.Model
	model string
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	var (
		llm llms.Model
		err error
	)
	switch llmConfig.Provider {
	case "ollama":
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case "openai":
		llm, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	default:
		return nil, fmt.Errorf("unknown inference provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, model: llmConfig.Model}, nil
}

// Generate sends the prompt as a single human message and returns the
// raw response text.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	log.Debug().Str("model", c.model).Int("prompt_chars", len(promptText)).Msg("Generating content")

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: promptText}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return res.Choices[0].Content, nil
}
