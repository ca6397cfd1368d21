package provider

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
)

// --- ContextWindow tests ---

func TestOpenAIProvider_ContextWindow(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"llama3", 8192},
		{"llama3.1:8b", 8192},
		{"mistral:7b", 32768},
		{"mixtral", 32768},
		{"qwen2.5", 32768},
		{"gpt-4o-mini", 128000},
		{"deepseek-chat", 64000},
		{"some-unknown-model", 8192},
	}
	for _, tt := range tests {
		p := &OpenAIProvider{model: tt.model}
		if got := p.ContextWindow(); got != tt.expected {
			t.Errorf("ContextWindow(%q) = %d, want %d", tt.model, got, tt.expected)
		}
	}
}

// --- Provider metadata tests ---

func TestOpenAIProvider_NameDetection(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{"", "openai"},
		{"http://localhost:11434/v1", "ollama"},
		{"http://ollama.home:8080/v1", "ollama"},
		{"http://localhost:1234/v1", "lmstudio"},
		{"https://api.deepseek.com/v1", "deepseek"},
		{"https://api.groq.com/openai/v1", "groq"},
		{"https://custom.api.com/v1", "openai"},
	}
	for _, tt := range tests {
		p := NewOpenAIProvider("", tt.baseURL, "llama3")
		if p.Name() != tt.expected {
			t.Errorf("NewOpenAIProvider(%q) name = %q, want %q", tt.baseURL, p.Name(), tt.expected)
		}
	}
}

func TestOpenAIProvider_DefaultModel(t *testing.T) {
	p := NewOpenAIProvider("", "http://localhost:11434/v1", "")
	if p.DefaultModel() != "llama3" {
		t.Errorf("expected llama3 fallback, got %q", p.DefaultModel())
	}
}

func TestAnthropicProvider_Metadata(t *testing.T) {
	p := NewAnthropicProvider("key", "")
	if p.Name() != "anthropic" {
		t.Errorf("name = %q", p.Name())
	}
	if p.DefaultModel() != "claude-3-5-haiku-latest" {
		t.Errorf("default model = %q", p.DefaultModel())
	}
	if p.ContextWindow() != 200000 {
		t.Errorf("context window = %d", p.ContextWindow())
	}
}

// --- Error taxonomy tests ---

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", fmt.Errorf("dial: %w", ErrUnavailable), true},
		{"rate limited", &APIError{Status: 429, Message: "slow down"}, true},
		{"server fault", &APIError{Status: 503, Message: "overloaded"}, true},
		{"bad request", &APIError{Status: 400, Message: "bad model"}, false},
		{"unrelated", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	refused := classifyTransport(fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED))
	if !errors.Is(refused, ErrUnavailable) {
		t.Errorf("connection refused not classified as unavailable: %v", refused)
	}

	other := errors.New("schema mismatch")
	if errors.Is(classifyTransport(other), ErrUnavailable) {
		t.Errorf("unrelated error classified as unavailable")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 500, Message: "internal"}
	if err.Error() != "model server error (status 500): internal" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

// --- Generate (blocking facade over the event stream) ---

type scriptedProvider struct {
	events []Event
}

func (s *scriptedProvider) Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error) {
	ch := make(chan Event, len(s.events))
	for _, e := range s.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func (s *scriptedProvider) Name() string         { return "scripted" }
func (s *scriptedProvider) DefaultModel() string { return "test" }
func (s *scriptedProvider) ContextWindow() int   { return 8192 }

func TestGenerateConcatenatesDeltas(t *testing.T) {
	p := &scriptedProvider{events: []Event{
		{Type: EventTextDelta, TextDelta: "Hello"},
		{Type: EventTextDelta, TextDelta: ", "},
		{Type: EventTextDelta, TextDelta: "world"},
		{Type: EventDone, Usage: &Usage{InputTokens: 10, OutputTokens: 3}},
	}}

	got, err := Generate(context.Background(), p, &ChatRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, world" {
		t.Errorf("Generate = %q", got)
	}
}

func TestGeneratePropagatesStreamError(t *testing.T) {
	p := &scriptedProvider{events: []Event{
		{Type: EventTextDelta, TextDelta: "partial"},
		{Type: EventError, Error: fmt.Errorf("mid-stream: %w", ErrUnavailable)},
	}}

	_, err := Generate(context.Background(), p, &ChatRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	p := &scriptedProvider{events: []Event{
		{Type: EventDone, Usage: &Usage{}},
	}}

	if _, err := Generate(context.Background(), p, &ChatRequest{}); err == nil {
		t.Fatal("expected error for empty completion")
	}
}
