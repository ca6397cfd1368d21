// Package export renders stored conversations into portable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/daybook-ai/daybook/internal/store"
)

// Markdown renders a full conversation as a markdown document: title,
// timestamps, every message in order, and an appendix with the summary chain.
// The export always uses raw messages, never the compacted context.
func Markdown(st *store.SQLiteStore, conversationID string) (string, error) {
	conv, err := st.GetConversation(conversationID)
	if err != nil {
		return "", err
	}
	msgs, err := st.MessagesFrom(conversationID, 1)
	if err != nil {
		return "", err
	}
	sums, err := st.Summaries(conversationID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	title := conv.Title
	if title == "" {
		title = "Untitled conversation"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Started %s", conv.CreatedAt.Format("January 2, 2006 at 15:04"))
	if !conv.UpdatedAt.Equal(conv.CreatedAt) {
		fmt.Fprintf(&sb, " · last entry %s", conv.UpdatedAt.Format("January 2, 2006 at 15:04"))
	}
	sb.WriteString("\n\n")

	for _, m := range msgs {
		fmt.Fprintf(&sb, "**%s** · %s\n\n", speakerLabel(m.Role), m.CreatedAt.Format("15:04"))
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}

	if len(sums) > 0 {
		sb.WriteString("---\n\n## Summaries\n\n")
		for _, s := range sums {
			fmt.Fprintf(&sb, "*Covering entries %d through %d:*\n\n%s\n\n", s.CoversFrom, s.CoversTo, s.Content)
		}
	}

	return sb.String(), nil
}

func speakerLabel(r store.Role) string {
	switch r {
	case store.RoleAssistant:
		return "Assistant"
	case store.RoleSystem:
		return "Note"
	default:
		return "You"
	}
}
