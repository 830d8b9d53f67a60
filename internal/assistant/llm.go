package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
)

// LLM abstracts the external completion provider so the orchestrator and
// tests never depend on a live endpoint.
type LLM interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type OpenAI struct {
	client openai.Client
	model  string
	temp   float64
}

func NewOpenAI(model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(),
		model:  model,
		temp:   0.7,
	}
}

func (o *OpenAI) Generate(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}

	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    params,
		Model:       o.model,
		Temperature: openai.Float(o.temp),
	})
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}
