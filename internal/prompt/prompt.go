// Package prompt renders the fixed set of prompt templates used to build
// model input. Templates are embedded in the binary and parsed once at
// startup, so a malformed template fails the process before any turn runs.
package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Recognized template names.
const (
	TemplateSystemPrompt        = "system_prompt"
	TemplateReflectionPrompt    = "reflection_prompt"
	TemplateConversationSummary = "conversation_summary"
	TemplateContextResponse     = "context_response"
)

// ErrTemplateNotFound is returned for unknown template names.
var ErrTemplateNotFound = errors.New("template not found")

// ErrMissingBinding is returned when a template references a variable absent
// from the bindings map.
var ErrMissingBinding = errors.New("missing template binding")

// Renderer is a stateless template renderer, safe to share across turns.
type Renderer struct {
	templates *template.Template
	// fields maps template name to the top-level variables it references,
	// extracted from the parse tree at startup.
	fields map[string][]string
}

// NewRenderer parses the embedded templates. Every referenced variable must
// be present in the bindings at render time, so callers pass empty strings
// or empty slices for unused substitution points.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("prompts").
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}

	fields := make(map[string][]string)
	for _, tmpl := range t.Templates() {
		if tmpl.Tree == nil || tmpl.Tree.Root == nil {
			continue
		}
		seen := make(map[string]bool)
		collectFields(tmpl.Tree.Root, seen)
		var names []string
		for name := range seen {
			names = append(names, name)
		}
		fields[tmpl.Name()] = names
	}

	return &Renderer{templates: t, fields: fields}, nil
}

// Render executes the named template with the given bindings. Bindings are
// checked against the template's parse tree up front, so an absent variable
// is reported as ErrMissingBinding with its name instead of depending on the
// exec error text (missingkey=error stays on as a backstop).
func (r *Renderer) Render(name string, bindings map[string]any) (string, error) {
	t := r.templates.Lookup(name + ".tmpl")
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	for _, field := range r.fields[t.Name()] {
		if _, ok := bindings[field]; !ok {
			return "", fmt.Errorf("%w: template %s: %s", ErrMissingBinding, name, field)
		}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, bindings); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// Names lists the available template names.
func (r *Renderer) Names() []string {
	var names []string
	for _, t := range r.templates.Templates() {
		if n, ok := strings.CutSuffix(t.Name(), ".tmpl"); ok {
			names = append(names, n)
		}
	}
	return names
}

// collectFields walks a template parse tree recording the top-level field
// names it dereferences. Range bodies are skipped: inside them the dot is
// the range element, not the bindings map.
func collectFields(node parse.Node, seen map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		for _, child := range n.Nodes {
			collectFields(child, seen)
		}
	case *parse.ActionNode:
		collectPipeFields(n.Pipe, seen)
	case *parse.IfNode:
		collectPipeFields(n.Pipe, seen)
		if n.List != nil {
			collectFields(n.List, seen)
		}
		if n.ElseList != nil {
			collectFields(n.ElseList, seen)
		}
	case *parse.RangeNode:
		collectPipeFields(n.Pipe, seen)
		if n.ElseList != nil {
			collectFields(n.ElseList, seen)
		}
	case *parse.WithNode:
		collectPipeFields(n.Pipe, seen)
	}
}

func collectPipeFields(pipe *parse.PipeNode, seen map[string]bool) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			if field, ok := arg.(*parse.FieldNode); ok && len(field.Ident) > 0 {
				seen[field.Ident[0]] = true
			}
		}
	}
}
