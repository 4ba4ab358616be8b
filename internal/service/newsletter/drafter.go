// internal/service/newsletter/drafter.go
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are an editor who writes concise, accurate industry newsletters and reports in Markdown."

// ErrDraftingDisabled is returned when no OpenAI key is configured.
var ErrDraftingDisabled = errors.New("content drafting is not configured")

// Drafter turns prompts into text through the chat completions API.
type Drafter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewDrafter returns a drafter whose Draft fails with ErrDraftingDisabled when apiKey is
// empty.
func NewDrafter(apiKey, model string, logger *zap.Logger) *Drafter {
	if apiKey == "" {
		return &Drafter{model: model, logger: logger}
	}
	return NewDrafterWithConfig(openai.DefaultConfig(apiKey), model, logger)
}

// NewDrafterWithConfig allows pointing the client at a compatible endpoint.
func NewDrafterWithConfig(cfg openai.ClientConfig, model string, logger *zap.Logger) *Drafter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Drafter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (d *Drafter) Draft(ctx context.Context, prompt string) (string, error) {
	if d.client == nil {
		return "", ErrDraftingDisabled
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		d.logger.Error("chat completion failed", zap.String("model", d.model), zap.Error(err))
		return "", fmt.Errorf("failed to draft content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("failed to draft content: empty completion")
	}

	d.logger.Info("content drafted",
		zap.String("model", d.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
