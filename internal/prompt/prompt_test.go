package prompt

import (
	"errors"
	"strings"
	"testing"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return r
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Render("no_such_template", map[string]any{})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestRenderMissingBinding(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Render(TemplateSystemPrompt, map[string]any{"AssistantName": "Daybook"})
	if !errors.Is(err, ErrMissingBinding) {
		t.Fatalf("expected ErrMissingBinding for absent UserName, got %v", err)
	}
	// Bindings are validated against the parse tree, so the error names the
	// absent variable rather than echoing an exec failure.
	if !strings.Contains(err.Error(), "UserName") {
		t.Errorf("error does not name the missing binding: %v", err)
	}
}

func TestRenderMissingBindingInConditional(t *testing.T) {
	r := newTestRenderer(t)
	// Goals is referenced inside {{if}}/{{range}} blocks; its absence must
	// still be caught before execution.
	_, err := r.Render(TemplateContextResponse, map[string]any{
		"Summary": "a synopsis",
		"Mood":    "calm",
	})
	if !errors.Is(err, ErrMissingBinding) {
		t.Fatalf("expected ErrMissingBinding for absent Goals, got %v", err)
	}
	if !strings.Contains(err.Error(), "Goals") {
		t.Errorf("error does not name the missing binding: %v", err)
	}
}

func TestRenderSystemPrompt(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(TemplateSystemPrompt, map[string]any{
		"AssistantName": "Daybook",
		"UserName":      "Sam",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Daybook") {
		t.Error("persona name missing from system prompt")
	}
	if !strings.Contains(out, "Sam") {
		t.Error("user name missing from system prompt")
	}

	// Empty user name drops the name line but still renders.
	out, err = r.Render(TemplateSystemPrompt, map[string]any{
		"AssistantName": "Daybook",
		"UserName":      "",
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "named") {
		t.Error("name line present for anonymous user")
	}
}

func TestRenderConversationSummary(t *testing.T) {
	r := newTestRenderer(t)

	withPrior, err := r.Render(TemplateConversationSummary, map[string]any{
		"PriorSummary": "User was anxious about a deadline.",
		"Transcript":   "[user]: the deadline passed\n[assistant]: how do you feel now?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(withPrior, "anxious about a deadline") {
		t.Error("prior summary not included")
	}
	if !strings.Contains(withPrior, "Fold that synopsis") {
		t.Error("cumulative instruction missing when prior summary present")
	}

	fresh, err := r.Render(TemplateConversationSummary, map[string]any{
		"PriorSummary": "",
		"Transcript":   "[user]: hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(fresh, "Fold that synopsis") {
		t.Error("cumulative instruction present without prior summary")
	}
}

func TestRenderContextResponse(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(TemplateContextResponse, map[string]any{
		"Summary": "Earlier the user talked about moving.",
		"Mood":    "hopeful",
		"Goals":   []string{"pack one box a day", "call the landlord"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"talked about moving", "hopeful", "pack one box a day", "call the landlord"} {
		if !strings.Contains(out, want) {
			t.Errorf("context block missing %q", want)
		}
	}

	// All slots empty still renders the instruction line.
	out, err = r.Render(TemplateContextResponse, map[string]any{
		"Summary": "",
		"Mood":    "",
		"Goals":   []string{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "continuity") {
		t.Error("instruction line missing")
	}
	if strings.Contains(out, "Synopsis") || strings.Contains(out, "mood") {
		t.Errorf("empty slots leaked into output: %q", out)
	}
}

func TestRenderReflectionPrompt(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Render(TemplateReflectionPrompt, map[string]any{"Topic": "gratitude"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "gratitude") {
		t.Error("topic missing from reflection prompt")
	}
}

func TestNames(t *testing.T) {
	r := newTestRenderer(t)
	names := r.Names()
	want := map[string]bool{
		TemplateSystemPrompt:        false,
		TemplateReflectionPrompt:    false,
		TemplateConversationSummary: false,
		TemplateContextResponse:     false,
	}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("template %q not registered", n)
		}
	}
}
