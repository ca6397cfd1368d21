package session

import (
	"context"
	"strings"
	"testing"

	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/store"
)

func newTestSummarizer(t *testing.T, fp *fakeProvider) *LLMSummarizer {
	t.Helper()
	renderer, err := prompt.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	return &LLMSummarizer{Provider: fp, Renderer: renderer}
}

func TestSummarizeFirstPass(t *testing.T) {
	fp := &fakeProvider{scripts: []script{
		{deltas: []string{"User reflected on a stressful project deadline."}},
	}}
	s := newTestSummarizer(t, fp)

	got, err := s.Summarize(context.Background(), "", []store.Message{
		{Role: store.RoleUser, Content: "work was brutal today"},
		{Role: store.RoleAssistant, Content: "what made it brutal?"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "User reflected on a stressful project deadline." {
		t.Errorf("synopsis = %q", got)
	}

	sent := fp.request(t, 0).Messages[0].Content
	if !strings.Contains(sent, "[user]: work was brutal today") {
		t.Errorf("transcript missing from prompt:\n%s", sent)
	}
	// No prior synopsis means no folding instruction.
	if strings.Contains(sent, "Fold that synopsis") {
		t.Errorf("first pass should not mention a prior synopsis:\n%s", sent)
	}
}

func TestSummarizeCumulative(t *testing.T) {
	fp := &fakeProvider{scripts: []script{
		{deltas: []string{"Combined synopsis."}},
	}}
	s := newTestSummarizer(t, fp)

	prior := "User has been processing job stress all week."
	if _, err := s.Summarize(context.Background(), prior, []store.Message{
		{Role: store.RoleUser, Content: "feeling a bit better"},
	}); err != nil {
		t.Fatal(err)
	}

	sent := fp.request(t, 0).Messages[0].Content
	if !strings.Contains(sent, prior) {
		t.Errorf("prior synopsis not folded into prompt:\n%s", sent)
	}
	if !strings.Contains(sent, "feeling a bit better") {
		t.Errorf("new messages missing from prompt:\n%s", sent)
	}
}

func TestSummarizeEmptySpan(t *testing.T) {
	s := newTestSummarizer(t, &fakeProvider{})
	if _, err := s.Summarize(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty span")
	}
}
