package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// OpenAIProvider implements Provider for all OpenAI-compatible chat APIs.
// Local model servers are the primary target — Ollama and LM Studio both
// expose /v1/chat/completions — but any hosted OpenAI-compatible endpoint
// works the same way.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	name    string
	baseURL string
}

// NewOpenAIProvider builds an adapter for the given endpoint. apiKey may be
// empty for local servers that ignore authentication.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if apiKey == "" {
		// The SDK insists on a bearer token; local servers ignore its value.
		apiKey = "unused"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	name := "openai"
	if baseURL != "" {
		switch {
		case strings.Contains(baseURL, "11434"), strings.Contains(baseURL, "ollama"):
			name = "ollama"
		case strings.Contains(baseURL, "1234"), strings.Contains(baseURL, "lmstudio"):
			name = "lmstudio"
		case strings.Contains(baseURL, "deepseek"):
			name = "deepseek"
		case strings.Contains(baseURL, "groq"):
			name = "groq"
		}
	}

	if model == "" {
		model = "llama3"
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		model:   model,
		name:    name,
		baseURL: baseURL,
	}
}

func (p *OpenAIProvider) Name() string         { return p.name }
func (p *OpenAIProvider) DefaultModel() string { return p.model }

func (p *OpenAIProvider) ContextWindow() int {
	switch {
	case strings.Contains(p.model, "llama3"):
		return 8192
	case strings.Contains(p.model, "mistral"), strings.Contains(p.model, "mixtral"):
		return 32768
	case strings.Contains(p.model, "qwen"):
		return 32768
	case strings.Contains(p.model, "gpt-4"), strings.Contains(p.model, "gpt-5"):
		return 128000
	case strings.Contains(p.model, "deepseek"):
		return 64000
	default:
		return 8192
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: buildOpenAIMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	ch := make(chan Event, 16)
	go p.processStream(ctx, stream, ch)
	return ch, nil
}

// processStream reads the SSE stream and emits unified events. Errors only
// surface through stream.Err() after Next() returns false, so classification
// happens at the end.
func (p *OpenAIProvider) processStream(ctx context.Context, stream *ssestream.Stream[openai.ChatCompletionChunk], ch chan<- Event) {
	defer close(ch)
	defer stream.Close()

	var usage Usage
	for stream.Next() {
		if ctx.Err() != nil {
			ch <- Event{Type: EventError, Error: ctx.Err()}
			return
		}

		chunk := stream.Current()
		if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
			usage.InputTokens = int(chunk.Usage.PromptTokens)
			usage.OutputTokens = int(chunk.Usage.CompletionTokens)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			ch <- Event{Type: EventTextDelta, TextDelta: choice.Delta.Content}
		}
		if string(choice.FinishReason) != "" {
			ch <- Event{Type: EventDone, Usage: &usage}
			return
		}
	}

	if err := stream.Err(); err != nil {
		ch <- Event{Type: EventError, Error: classifyOpenAIError(err)}
		return
	}
	ch <- Event{Type: EventDone, Usage: &usage}
}

func buildOpenAIMessages(req *ChatRequest) []openai.ChatCompletionMessageParamUnion {
	var params []openai.ChatCompletionMessageParamUnion

	if req.SystemPrompt != "" {
		params = append(params, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
}

// classifyOpenAIError maps SDK errors onto the package taxonomy: an error
// payload from the server becomes *APIError, everything transport-level
// becomes ErrUnavailable.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &APIError{Status: apiErr.StatusCode, Message: msg}
	}
	if classified := classifyTransport(err); errors.Is(classified, ErrUnavailable) {
		return classified
	}
	return fmt.Errorf("chat request failed: %w", err)
}
