package session

import (
	"context"
	"strings"

	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/store"
)

const titleInstruction = `Write a concise title (3-8 words) for a journaling conversation that begins with the message below. Capture the main theme or emotion. Respond with only the title, no quotes and no extra text.`

const maxTitleLen = 60

// maybeTitle gives an untitled conversation a title after its first
// completed exchange. Short opening messages are used verbatim; longer ones
// go through the model, falling back to truncation when that fails. Titling
// is never fatal to a turn.
func (e *Engine) maybeTitle(ctx context.Context, conversationID string) {
	conv, err := e.store.GetConversation(conversationID)
	if err != nil || conv.Title != "" {
		return
	}

	first, err := e.store.Messages(conversationID, 1, 1)
	if err != nil || len(first) == 0 || first[0].Role != store.RoleUser {
		return
	}
	opening := strings.TrimSpace(first[0].Content)

	title := opening
	if len(opening) > maxTitleLen {
		generated, err := provider.Generate(ctx, e.provider, &provider.ChatRequest{
			Messages: []provider.Message{{
				Role:    provider.RoleUser,
				Content: titleInstruction + "\n\n" + opening,
			}},
			MaxTokens: 64,
		})
		if err != nil {
			e.log.WithError(err).Debug("title generation failed; truncating")
			title = truncateTitle(opening)
		} else {
			title = strings.Trim(strings.TrimSpace(generated), `"'`)
			if title == "" {
				title = truncateTitle(opening)
			} else if len(title) > maxTitleLen {
				title = truncateTitle(title)
			}
		}
	}

	if err := e.store.SetTitle(conversationID, title); err != nil {
		e.log.WithError(err).Warn("persist title")
	}
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTitleLen-3 {
		return s
	}
	return strings.TrimSpace(string(runes[:maxTitleLen-3])) + "..."
}
