// Package session orchestrates conversation turns: it builds bounded model
// input from persisted state, drives the model adapter, persists the
// exchange, and compresses history through summarization.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/store"
)

// ErrEmptyInput is returned when a submitted message is empty or whitespace.
// Nothing is persisted in that case.
var ErrEmptyInput = errors.New("empty input")

// Turn states, carried on log lines for traceability.
const (
	stateAwaitingModel = "awaiting_model"
	statePersisting    = "persisting"
	stateIdle          = "idle"
	stateFailed        = "failed"
)

// Options tune the engine's compaction policy.
type Options struct {
	// SummaryTrigger is the count of raw messages not covered by the active
	// summary that triggers summarization. Default 20.
	SummaryTrigger int
	// SummaryKeep is the raw tail length left uncovered by each new summary,
	// preserving immediate context. Default 6.
	SummaryKeep int
	// MaxContextBytes is a defensive cap on the composed context size.
	// Default 32768. Zero disables the guard.
	MaxContextBytes int
	// MaxTokens caps each assistant reply. Default 1024.
	MaxTokens int
}

func (o Options) withDefaults() Options {
	if o.SummaryTrigger <= 0 {
		o.SummaryTrigger = 20
	}
	if o.SummaryKeep <= 0 {
		o.SummaryKeep = 6
	}
	if o.MaxContextBytes == 0 {
		o.MaxContextBytes = 32768
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1024
	}
	return o
}

// Engine runs one conversation turn at a time. Correctness under concurrent
// submits for the same conversation is a caller-side contract: at most one
// in-flight turn per conversation. A networked front end must add its own
// per-conversation mutual exclusion before relaxing that.
type Engine struct {
	store      *store.SQLiteStore
	provider   provider.Provider
	renderer   *prompt.Renderer
	builder    *ContextBuilder
	summarizer Summarizer
	opts       Options
	log        *logrus.Entry
}

func New(st *store.SQLiteStore, p provider.Provider, renderer *prompt.Renderer, persona Persona, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		store:      st,
		provider:   p,
		renderer:   renderer,
		builder:    NewContextBuilder(st, renderer, persona, opts.MaxContextBytes),
		summarizer: &LLMSummarizer{Provider: p, Renderer: renderer},
		opts:       opts,
		log:        logrus.WithField("component", "session"),
	}
}

// StreamEvent is the asynchronous caller contract: a lazy, finite sequence
// of reply fragments ending in either the persisted assistant message or a
// terminal error.
type StreamEvent struct {
	Delta string         // a reply fragment
	Reply *store.Message // set once, on successful completion
	Err   error          // terminal; the stream closes after it
}

// SubmitStream runs one turn asynchronously. The user message is persisted
// before the model call, so it survives any later failure. Errors raised
// before the model call (empty input, unknown conversation, template
// defects) return synchronously; everything after arrives on the channel.
//
// Cancelling ctx mid-stream releases the model connection and persists no
// assistant message; the already-persisted user message keeps the
// conversation recoverable.
func (e *Engine) SubmitStream(ctx context.Context, conversationID, userText string) (<-chan StreamEvent, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, ErrEmptyInput
	}

	userMsg, err := e.store.AppendMessage(conversationID, store.RoleUser, userText)
	if err != nil {
		return nil, err
	}

	// Compress history before composing this turn's context so the fresh
	// summary bounds the very turn that crossed the threshold. Non-fatal:
	// on failure the turn proceeds with raw history and summarization is
	// retried on a later turn.
	e.maybeSummarize(ctx, conversationID, userMsg.Seq)

	built, err := e.builder.Build(conversationID)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"conversation": conversationID,
		"seq":          userMsg.Seq,
		"state":        stateAwaitingModel,
	}).Debug("turn started")

	events, err := e.provider.Chat(ctx, &provider.ChatRequest{
		Messages:     built.Messages,
		SystemPrompt: built.SystemPrompt,
		MaxTokens:    e.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan StreamEvent, 16)
	go e.consume(ctx, conversationID, events, out)
	return out, nil
}

// Submit is the blocking facade: it runs the asynchronous turn to completion
// and returns the assistant reply. It must not be invoked concurrently with
// SubmitStream on the same conversation.
func (e *Engine) Submit(ctx context.Context, conversationID, userText string) (string, error) {
	events, err := e.SubmitStream(ctx, conversationID, userText)
	if err != nil {
		return "", err
	}

	var reply string
	for event := range events {
		if event.Err != nil {
			return "", event.Err
		}
		if event.Reply != nil {
			reply = event.Reply.Content
		}
	}
	return reply, nil
}

// consume accumulates model output and persists the assistant message once
// the stream completes. Partial replies are never written: a failed or
// cancelled stream leaves only the user message behind.
func (e *Engine) consume(ctx context.Context, conversationID string, events <-chan provider.Event, out chan<- StreamEvent) {
	defer close(out)

	var sb strings.Builder
	var streamErr error
	for event := range events {
		switch event.Type {
		case provider.EventTextDelta:
			sb.WriteString(event.TextDelta)
			out <- StreamEvent{Delta: event.TextDelta}
		case provider.EventError:
			streamErr = event.Error
		}
	}
	if streamErr == nil {
		streamErr = ctx.Err()
	}
	if streamErr != nil {
		e.log.WithError(streamErr).WithFields(logrus.Fields{
			"conversation": conversationID,
			"state":        stateFailed,
		}).Warn("model call failed; user message retained")
		out <- StreamEvent{Err: streamErr}
		return
	}

	replyText := strings.TrimSpace(sb.String())
	if replyText == "" {
		out <- StreamEvent{Err: fmt.Errorf("%s returned an empty reply", e.provider.Name())}
		return
	}

	e.log.WithFields(logrus.Fields{
		"conversation": conversationID,
		"state":        statePersisting,
	}).Debug("persisting reply")

	reply, err := e.store.AppendMessage(conversationID, store.RoleAssistant, replyText)
	if err != nil {
		out <- StreamEvent{Err: err}
		return
	}
	out <- StreamEvent{Reply: reply}

	e.maybeTitle(ctx, conversationID)

	e.log.WithFields(logrus.Fields{
		"conversation": conversationID,
		"seq":          reply.Seq,
		"state":        stateIdle,
	}).Debug("turn complete")
}

// maybeSummarize checks the compaction threshold and, when crossed, writes a
// summary covering everything but the most recent SummaryKeep messages. The
// in-flight user message (inFlightSeq) is never counted or covered. All
// failures are logged and swallowed: summarization retries on a later turn.
func (e *Engine) maybeSummarize(ctx context.Context, conversationID string, inFlightSeq int) {
	active, err := e.store.ActiveSummary(conversationID)
	if err != nil {
		e.log.WithError(err).Warn("read active summary")
		return
	}
	covered := 0
	prior := ""
	if active != nil {
		covered = active.CoversTo
		prior = active.Content
	}

	lastSettled := inFlightSeq - 1
	if lastSettled-covered < e.opts.SummaryTrigger {
		return
	}
	coverTo := lastSettled - e.opts.SummaryKeep
	if coverTo <= covered {
		return
	}

	span, err := e.store.Messages(conversationID, covered+1, coverTo)
	if err != nil {
		e.log.WithError(err).Warn("read summarization span")
		return
	}

	synopsis, err := e.summarizer.Summarize(ctx, prior, span)
	if err != nil {
		e.log.WithError(err).WithField("conversation", conversationID).
			Warn("summarization failed; proceeding with raw history")
		return
	}

	if _, err := e.store.WriteSummary(conversationID, synopsis, covered+1, coverTo); err != nil {
		e.log.WithError(err).Warn("persist summary")
		return
	}
	e.log.WithFields(logrus.Fields{
		"conversation": conversationID,
		"covers_from":  covered + 1,
		"covers_to":    coverTo,
	}).Info("history summarized")
}

// ReflectionPrompt generates a standalone journaling prompt about a topic,
// using the reflection template in blocking mode.
func (e *Engine) ReflectionPrompt(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyInput
	}
	text, err := e.renderer.Render(prompt.TemplateReflectionPrompt, map[string]any{"Topic": topic})
	if err != nil {
		return "", err
	}
	return provider.Generate(ctx, e.provider, &provider.ChatRequest{
		Messages:  []provider.Message{{Role: provider.RoleUser, Content: text}},
		MaxTokens: 256,
	})
}

// SetMood appends a mood entry, optionally linked to a conversation. The
// current mood is always the most recent entry; history is never rewritten.
func (e *Engine) SetMood(label, conversationID string) (*store.MoodEntry, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyInput
	}
	return e.store.AddMood(label, conversationID)
}

// AddGoal records a new open goal. Goals change only through these explicit
// calls, never as a side effect of model output.
func (e *Engine) AddGoal(description string) (*store.Goal, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyInput
	}
	return e.store.CreateGoal(description)
}

// CompleteGoal and AbandonGoal close out a goal.
func (e *Engine) CompleteGoal(id string) error {
	return e.store.UpdateGoalStatus(id, store.GoalDone)
}

func (e *Engine) AbandonGoal(id string) error {
	return e.store.UpdateGoalStatus(id, store.GoalAbandoned)
}
