package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/billing-dashboard/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

func TestExplainerReturnsTrimmedReply(t *testing.T) {
	chat := &stubChatClient{response: replyWith("\n  Your usage of streaming add-ons doubled.  \n")}
	explainer := NewExplainer(chat, newTestLogger())

	hike, ok := DetectHike(recordsOf(100, 100, 100, 100, 100, 150), false)
	require.True(t, ok)

	advisory := explainer.Explain(context.Background(), hike)
	require.Equal(t, "Your usage of streaming add-ons doubled.", advisory)

	require.Equal(t, 1, chat.calls)
	require.Equal(t, "gpt-4o-mini", chat.lastRequest.Model)
	require.Len(t, chat.lastRequest.Messages, 2)
	require.Equal(t, chatgpt.RoleSystem, chat.lastRequest.Messages[0].Role)
	require.Contains(t, chat.lastRequest.Messages[0].Content, "billing analyst")
	require.Equal(t, chatgpt.RoleUser, chat.lastRequest.Messages[1].Role)
	require.Contains(t, chat.lastRequest.Messages[1].Content, "100, 100, 100, 100, 100")
	require.Contains(t, chat.lastRequest.Messages[1].Content, "150")
}

func TestExplainerFallbackOnRejection(t *testing.T) {
	chat := &stubChatClient{err: apperrors.Wrap(apperrors.CodeRemoteAPIError, "Incorrect API key provided", nil)}
	explainer := NewExplainer(chat, newTestLogger())

	advisory := explainer.Explain(context.Background(), Hike{Baseline: []float64{1, 1, 1, 1, 1}, Current: 2})
	require.Equal(t, "Could not analyze the hike. Please try again.", advisory)
}

func TestExplainerFallbackOnNetworkError(t *testing.T) {
	chat := &stubChatClient{err: errors.New("dial tcp: i/o timeout")}
	explainer := NewExplainer(chat, newTestLogger())

	advisory := explainer.Explain(context.Background(), Hike{Baseline: []float64{1, 1, 1, 1, 1}, Current: 2})
	require.Equal(t, FallbackAdvisory, advisory)
}

func TestExplainerFallbackOnMissingChoices(t *testing.T) {
	chat := &stubChatClient{response: chatgpt.ChatCompletionResponse{}}
	explainer := NewExplainer(chat, newTestLogger())

	advisory := explainer.Explain(context.Background(), Hike{Baseline: []float64{1, 1, 1, 1, 1}, Current: 2})
	require.Equal(t, FallbackAdvisory, advisory)
	require.Equal(t, chatgpt.DefaultModel, chat.lastRequest.Model)
}

func TestExplainerEmptyReplyLeavesAdvisoryEmpty(t *testing.T) {
	chat := &stubChatClient{response: replyWith("   ")}
	explainer := NewExplainer(chat, newTestLogger())

	advisory := explainer.Explain(context.Background(), Hike{Baseline: []float64{1, 1, 1, 1, 1}, Current: 2})
	require.Empty(t, advisory)
}

func replyWith(content string) chatgpt.ChatCompletionResponse {
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{
			{Message: chatgpt.Message{Role: chatgpt.RoleAssistant, Content: content}},
		},
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubChatClient struct {
	response    chatgpt.ChatCompletionResponse
	err         error
	calls       int
	lastRequest chatgpt.ChatCompletionRequest
	onCall      func()
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls++
	s.lastRequest = req
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return s.response, nil
}
