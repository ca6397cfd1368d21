// Package provider defines the unified interface and shared types for model
// backends. Each adapter (openai.go for OpenAI-compatible servers including
// Ollama and LM Studio, anthropic.go for Claude) normalizes vendor-specific
// streaming responses into a unified Event sequence.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// ── Message types ────────────────────────────────────────────────────────────

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single message in the conversation history.
type Message struct {
	Role    Role
	Content string
}

// ── Request types ────────────────────────────────────────────────────────────

// ChatRequest is the unified request format sent to a provider.
type ChatRequest struct {
	Model        string
	Messages     []Message
	SystemPrompt string
	MaxTokens    int
	Temperature  *float64
}

// ── Event types (streaming output) ───────────────────────────────────────────

type EventType int

const (
	// EventTextDelta: incremental text output from the model.
	EventTextDelta EventType = iota

	// EventDone: end of this completion, includes token usage when reported.
	EventDone

	// EventError: an error occurred; the stream ends after this event.
	EventError
)

// Event is the unified streaming event emitted by a provider. It is a closed
// sum: exactly one of TextDelta, Usage, or Error is meaningful per Type.
type Event struct {
	Type      EventType
	TextDelta string
	Usage     *Usage
	Error     error
}

// Usage records token consumption for an API call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ── Provider interface ───────────────────────────────────────────────────────

// Provider is the unified interface for all model backends.
// Implementors are responsible for:
//  1. Converting the unified ChatRequest into the backend's request format
//  2. Converting the backend's streaming response into a unified Event sequence
//  3. Mapping transport failures to ErrUnavailable and error payloads to *APIError
//
// The channel returned by Chat emits events until EventDone or EventError,
// then closes. Cancelling ctx releases the underlying connection; the caller
// must still drain the channel, which is cheap because cancellation closes it
// promptly.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error)

	// Name returns the backend identifier, e.g. "ollama", "openai", "anthropic".
	Name() string

	// DefaultModel returns the model used when a request leaves Model empty.
	DefaultModel() string

	// ContextWindow returns the context window size for the default model.
	ContextWindow() int
}

// Generate runs a blocking completion: it issues Chat and drains the event
// stream into a single string. This is the non-streaming caller contract.
func Generate(ctx context.Context, p Provider, req *ChatRequest) (string, error) {
	events, err := p.Chat(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for event := range events {
		switch event.Type {
		case EventTextDelta:
			sb.WriteString(event.TextDelta)
		case EventError:
			return "", event.Error
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%s returned an empty completion", p.Name())
	}
	return text, nil
}
