package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/store"
)

func newTestBuilder(t *testing.T, maxBytes int) (*ContextBuilder, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	renderer, err := prompt.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	return NewContextBuilder(st, renderer, Persona{AssistantName: "Daybook", UserName: "Sam"}, maxBytes), st
}

func TestBuildFreshConversation(t *testing.T) {
	b, st := newTestBuilder(t, 0)
	conv, _ := st.CreateConversation()
	st.AppendMessage(conv.ID, store.RoleUser, "hello there")

	built, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(built.SystemPrompt, "Daybook") || !strings.Contains(built.SystemPrompt, "Sam") {
		t.Errorf("system prompt missing persona: %q", built.SystemPrompt)
	}
	if len(built.Messages) != 1 {
		t.Fatalf("got %d messages, want just the user message", len(built.Messages))
	}
	if built.Messages[0].Role != provider.RoleUser || built.Messages[0].Content != "hello there" {
		t.Errorf("message %+v", built.Messages[0])
	}
	if built.RawFrom != 1 {
		t.Errorf("RawFrom = %d", built.RawFrom)
	}
}

func TestBuildWithSummary(t *testing.T) {
	b, st := newTestBuilder(t, 0)
	conv, _ := st.CreateConversation()
	for i := 1; i <= 10; i++ {
		st.AppendMessage(conv.ID, store.RoleUser, fmt.Sprintf("msg %02d", i))
	}
	if _, err := st.WriteSummary(conv.ID, "the early part", 1, 7); err != nil {
		t.Fatal(err)
	}

	built, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Summary block first, then raw messages 8..10.
	if len(built.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(built.Messages))
	}
	if built.Messages[0].Role != provider.RoleSystem || !strings.Contains(built.Messages[0].Content, "the early part") {
		t.Errorf("head block %+v", built.Messages[0])
	}
	if built.Messages[1].Content != "msg 08" {
		t.Errorf("raw tail starts at %q, want msg 08", built.Messages[1].Content)
	}
	if built.RawFrom != 8 {
		t.Errorf("RawFrom = %d, want 8", built.RawFrom)
	}
	// Messages covered by the summary never appear raw.
	for _, m := range built.Messages[1:] {
		if strings.Contains(m.Content, "msg 07") {
			t.Error("covered message leaked into raw tail")
		}
	}
}

func TestBuildWithMoodAndGoals(t *testing.T) {
	b, st := newTestBuilder(t, 0)
	conv, _ := st.CreateConversation()
	st.AppendMessage(conv.ID, store.RoleUser, "how should I plan the week?")
	st.AddMood("anxious", "")
	st.CreateGoal("run three times a week")
	st.CreateGoal("call mom")

	built, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}

	last := built.Messages[len(built.Messages)-1]
	if last.Role != provider.RoleSystem {
		t.Fatalf("tail block role %q", last.Role)
	}
	for _, want := range []string{"anxious", "run three times a week", "call mom"} {
		if !strings.Contains(last.Content, want) {
			t.Errorf("tail block missing %q:\n%s", want, last.Content)
		}
	}
	// The user message sits between head and tail, not after the snapshot.
	if built.Messages[len(built.Messages)-2].Content != "how should I plan the week?" {
		t.Error("user message not immediately before the snapshot block")
	}
}

func TestBuildSnapshotIsFresh(t *testing.T) {
	b, st := newTestBuilder(t, 0)
	conv, _ := st.CreateConversation()
	st.AppendMessage(conv.ID, store.RoleUser, "hi")
	st.AddMood("tired", "")

	first, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(first.Messages[len(first.Messages)-1].Content, "tired") {
		t.Fatal("initial mood missing")
	}

	st.AddMood("energized", "")
	second, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	tail := second.Messages[len(second.Messages)-1].Content
	if !strings.Contains(tail, "energized") || strings.Contains(tail, "tired") {
		t.Errorf("snapshot not rebuilt from current state:\n%s", tail)
	}
}

func TestBuildTrimsToBudget(t *testing.T) {
	b, st := newTestBuilder(t, 2048)
	conv, _ := st.CreateConversation()
	filler := strings.Repeat("x", 400)
	for i := 1; i <= 10; i++ {
		st.AppendMessage(conv.ID, store.RoleUser, fmt.Sprintf("%02d %s", i, filler))
	}

	built, err := b.Build(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(built.Messages) >= 10 {
		t.Fatalf("budget guard kept all %d messages", len(built.Messages))
	}
	// Oldest dropped first; the newest message always survives.
	last := built.Messages[len(built.Messages)-1]
	if !strings.HasPrefix(last.Content, "10 ") {
		t.Errorf("newest message missing, tail is %q", last.Content[:10])
	}
	if built.RawFrom <= 1 {
		t.Errorf("RawFrom = %d, want > 1 after trimming", built.RawFrom)
	}
}

func TestFormatTranscript(t *testing.T) {
	got := formatTranscript([]store.Message{
		{Role: store.RoleUser, Content: "long day"},
		{Role: store.RoleAssistant, Content: "tell me more"},
	})
	want := "[user]: long day\n[assistant]: tell me more\n"
	if got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}
