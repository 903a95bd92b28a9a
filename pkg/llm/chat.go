package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultSystemTemplate = "You are an immigration information assistant. " +
	"Use ONLY the provided sources. " +
	"If the sources do not support an answer, say so."

const userTemplate = `Question:
%s

Sources:
%s

Instructions:
- Answer in plain language.
- Use bullet points.
- Include a short 'Forms to submit' list if relevant.
- DO NOT list or mention sources in the answer.`

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model          string
	MaxTokens      int
	Temperature    float64
	SystemTemplate string
	BaseURL        string
	APIKey         string // falls back to OPENAI_API_KEY
}

// ChatEngine generates answers grounded in retrieved source snippets.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "gpt-4.1-mini"
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = defaultSystemTemplate
	}

	opts := []openai.Option{openai.WithModel(config.Model)}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    client,
	}, nil
}

// Answer sends the question with the numbered source context and returns the
// generated text. The sources-only policy lives in the system template.
func (ce *ChatEngine) Answer(ctx context.Context, question, sourceContext string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(userTemplate, question, sourceContext)),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat error: empty response")
	}
	return response.Choices[0].Content, nil
}
