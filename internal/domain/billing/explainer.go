package billing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/billing-dashboard/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

const analystPrompt = "You are a billing analyst. Explain bill hikes simply."

// ChatClient is the slice of the completion API the explainer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Explainer turns a detected hike into an advisory sentence.
type Explainer struct {
	client ChatClient
	logger *slog.Logger
}

// NewExplainer is a wire provider for the hike explainer.
func NewExplainer(client ChatClient, logger *slog.Logger) *Explainer {
	return &Explainer{client: client, logger: logger.With("component", "billing.explainer")}
}

// Explain asks the analyst about the hike. Failures never propagate: they are
// logged and replaced by FallbackAdvisory. An empty reply yields "".
func (e *Explainer) Explain(ctx context.Context, hike Hike) string {
	reply, err := e.ask(ctx, hike)
	if err != nil {
		e.logger.Error("hike analysis failed", "code", apperrors.CodeOf(err), "error", err)
		return FallbackAdvisory
	}
	return reply
}

func (e *Explainer) ask(ctx context.Context, hike Hike) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: chatgpt.DefaultModel,
		Messages: []chatgpt.Message{
			{Role: chatgpt.RoleSystem, Content: analystPrompt},
			{Role: chatgpt.RoleUser, Content: hike.Prompt()},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Wrap(apperrors.CodeMalformedResponse, "chatgpt returned no choices", nil)
	}
	if !resp.Usage.IsZero() {
		e.logger.Debug("hike analysis usage", resp.Usage.LogAttrs()...)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
