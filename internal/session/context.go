package session

import (
	"fmt"

	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/store"
)

// Persona holds the static assistant configuration rendered into the system
// prompt.
type Persona struct {
	AssistantName string
	UserName      string
}

// ContextBuilder assembles the bounded model input for one turn. It is a
// pure function of store contents at call time: mood and goals are read
// fresh on every build, never cached across turns.
type ContextBuilder struct {
	store    *store.SQLiteStore
	renderer *prompt.Renderer
	persona  Persona
	maxBytes int
}

func NewContextBuilder(st *store.SQLiteStore, renderer *prompt.Renderer, persona Persona, maxBytes int) *ContextBuilder {
	return &ContextBuilder{store: st, renderer: renderer, persona: persona, maxBytes: maxBytes}
}

// BuiltContext is the composed input handed to the model adapter.
type BuiltContext struct {
	SystemPrompt string
	Messages     []provider.Message
	RawFrom      int // sequence number of the oldest raw message included
}

// Build composes, in fixed order: the system prompt, the active summary (if
// any) rendered through the context-response template, the raw message tail,
// and a trailing mood/goals snapshot. The raw tail is bounded primarily by
// the summarizer's threshold policy; maxBytes is a defensive length guard,
// not token-exact accounting.
func (b *ContextBuilder) Build(conversationID string) (*BuiltContext, error) {
	system, err := b.renderer.Render(prompt.TemplateSystemPrompt, map[string]any{
		"AssistantName": b.persona.AssistantName,
		"UserName":      b.persona.UserName,
	})
	if err != nil {
		return nil, err
	}

	active, err := b.store.ActiveSummary(conversationID)
	if err != nil {
		return nil, err
	}
	rawFrom := 1
	summaryText := ""
	if active != nil {
		rawFrom = active.CoversTo + 1
		summaryText = active.Content
	}

	raw, err := b.store.MessagesFrom(conversationID, rawFrom)
	if err != nil {
		return nil, err
	}

	var head, tail []provider.Message

	if summaryText != "" {
		block, err := b.renderer.Render(prompt.TemplateContextResponse, map[string]any{
			"Summary": summaryText,
			"Mood":    "",
			"Goals":   []string{},
		})
		if err != nil {
			return nil, err
		}
		head = append(head, provider.Message{Role: provider.RoleSystem, Content: block})
	}

	mood, err := b.store.LatestMood()
	if err != nil {
		return nil, err
	}
	goals, err := b.store.OpenGoals()
	if err != nil {
		return nil, err
	}
	if mood != nil || len(goals) > 0 {
		moodLabel := ""
		if mood != nil {
			moodLabel = mood.Label
		}
		descriptions := make([]string, 0, len(goals))
		for _, g := range goals {
			descriptions = append(descriptions, g.Description)
		}
		block, err := b.renderer.Render(prompt.TemplateContextResponse, map[string]any{
			"Summary": "",
			"Mood":    moodLabel,
			"Goals":   descriptions,
		})
		if err != nil {
			return nil, err
		}
		tail = append(tail, provider.Message{Role: provider.RoleSystem, Content: block})
	}

	raw = b.trimToBudget(system, head, tail, raw)
	if len(raw) > 0 {
		rawFrom = raw[0].Seq
	}

	msgs := make([]provider.Message, 0, len(head)+len(raw)+len(tail))
	msgs = append(msgs, head...)
	for _, m := range raw {
		msgs = append(msgs, provider.Message{Role: mapRole(m.Role), Content: m.Content})
	}
	msgs = append(msgs, tail...)

	return &BuiltContext{SystemPrompt: system, Messages: msgs, RawFrom: rawFrom}, nil
}

// trimToBudget drops the oldest raw messages while the composed context
// exceeds maxBytes. The newest message is always kept: it is the user input
// being answered.
func (b *ContextBuilder) trimToBudget(system string, head, tail []provider.Message, raw []store.Message) []store.Message {
	if b.maxBytes <= 0 {
		return raw
	}
	size := len(system)
	for _, m := range head {
		size += len(m.Content)
	}
	for _, m := range tail {
		size += len(m.Content)
	}
	for _, m := range raw {
		size += len(m.Content)
	}
	for size > b.maxBytes && len(raw) > 1 {
		size -= len(raw[0].Content)
		raw = raw[1:]
	}
	return raw
}

func mapRole(r store.Role) provider.Role {
	switch r {
	case store.RoleAssistant:
		return provider.RoleAssistant
	case store.RoleSystem:
		return provider.RoleSystem
	default:
		return provider.RoleUser
	}
}

// formatTranscript renders messages as a plain transcript for the
// summarization prompt.
func formatTranscript(messages []store.Message) string {
	var sb []byte
	for _, m := range messages {
		sb = fmt.Appendf(sb, "[%s]: %s\n", m.Role, m.Content)
	}
	return string(sb)
}
