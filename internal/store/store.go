// Package store provides durable SQLite-backed persistence for conversations,
// messages, summaries, goals, and mood entries.
//
// Messages within a conversation carry gapless, strictly increasing sequence
// numbers assigned atomically at insert time. Summaries cover a prefix of the
// sequence range and chain without gaps or overlaps; the summary with the
// greatest coverage end is the "active" one used for context compaction.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidRange is returned when a summary's coverage would break the
// no-gap/no-overlap prefix chain.
var ErrInvalidRange = errors.New("invalid summary range")

type ConversationStatus string

const (
	StatusActive   ConversationStatus = "active"
	StatusArchived ConversationStatus = "archived"
)

// Conversation is one journaling session. Conversations are archived
// explicitly, never auto-deleted.
type Conversation struct {
	ID           string
	Title        string
	Status       ConversationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single immutable conversation entry. Corrections are new
// messages, never edits.
type Message struct {
	ID             string
	ConversationID string
	Seq            int
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// Summary condenses messages [CoversFrom, CoversTo] of a conversation.
// Superseded summaries are retained for audit and export.
type Summary struct {
	ID             string
	ConversationID string
	Content        string
	CoversFrom     int
	CoversTo       int
	CreatedAt      time.Time
}

type GoalStatus string

const (
	GoalOpen      GoalStatus = "open"
	GoalDone      GoalStatus = "done"
	GoalAbandoned GoalStatus = "abandoned"
)

// Goal is process-wide personal-tracking state, not tied to a conversation.
type Goal struct {
	ID          string
	Description string
	Status      GoalStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MoodEntry is an append-only mood record. The current mood is the most
// recent entry. ConversationID is optional and carries no foreign key, so
// mood history outlives conversation deletion.
type MoodEntry struct {
	ID             string
	Label          string
	ConversationID string
	CreatedAt      time.Time
}

// Stats summarizes the whole journal.
type Stats struct {
	Conversations int
	Messages      int
	WordsWritten  int // words across user messages only
	OpenGoals     int
	MoodEntries   int
	FirstEntry    *time.Time
}
