// Package ai wraps the OpenAI client behind the TextGenerator port. Pass an
// empty API key to disable generation; callers handle the error with their
// own fallback text.
package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var ErrDisabled = errors.New("text generation is not configured")

// Generator implements ports.TextGenerator over the chat completions API.
type Generator struct {
	client *openai.Client
	model  shared.ChatModel
}

// NewGenerator creates the adapter. An empty apiKey yields a disabled
// generator whose Generate always returns ErrDisabled.
func NewGenerator(apiKey string) *Generator {
	if apiKey == "" {
		return &Generator{}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Generator{client: &c, model: shared.ChatModelGPT4oMini}
}

// Generate sends one prompt and returns the raw completion text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrDisabled
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
