package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/store"
)

// Summarizer condenses a span of older messages into a short synopsis so the
// model input stays bounded.
type Summarizer interface {
	// Summarize generates a synopsis. priorSummary may be empty (first
	// compaction). Iterative: old synopsis + new messages → combined synopsis,
	// so repeated summarization is cumulative rather than lossy-from-scratch.
	Summarize(ctx context.Context, priorSummary string, messages []store.Message) (string, error)
}

// LLMSummarizer renders the conversation-summary template and calls the
// model in blocking mode.
type LLMSummarizer struct {
	Provider provider.Provider
	Renderer *prompt.Renderer
	Model    string // optional: use a cheaper model. Empty = provider default.
}

func (s *LLMSummarizer) Summarize(ctx context.Context, priorSummary string, messages []store.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("nothing to summarize")
	}

	text, err := s.Renderer.Render(prompt.TemplateConversationSummary, map[string]any{
		"PriorSummary": priorSummary,
		"Transcript":   formatTranscript(messages),
	})
	if err != nil {
		return "", err
	}

	req := &provider.ChatRequest{
		Model:        s.Model,
		Messages:     []provider.Message{{Role: provider.RoleUser, Content: text}},
		SystemPrompt: "You condense journaling conversations into short synopses the assistant can rely on later.",
		MaxTokens:    1024,
	}

	synopsis, err := provider.Generate(ctx, s.Provider, req)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(synopsis), nil
}
