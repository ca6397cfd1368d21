package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS conversations (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','archived')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);

CREATE TABLE IF NOT EXISTS messages (
    id              TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    seq             INTEGER NOT NULL,
    role            TEXT NOT NULL CHECK (role IN ('user','assistant','system')),
    content         TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    UNIQUE (conversation_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);

CREATE TABLE IF NOT EXISTS summaries (
    id              TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    content         TEXT NOT NULL,
    covers_from     INTEGER NOT NULL,
    covers_to       INTEGER NOT NULL,
    created_at      TEXT NOT NULL,
    CHECK (covers_from >= 1 AND covers_to >= covers_from)
);
CREATE INDEX IF NOT EXISTS idx_summaries_conversation ON summaries(conversation_id, covers_to);

CREATE TABLE IF NOT EXISTS goals (
    id          TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','done','abandoned')),
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mood_entries (
    id              TEXT PRIMARY KEY,
    label           TEXT NOT NULL,
    conversation_id TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mood_entries_created_at ON mood_entries(created_at);
`

// SQLiteStore implements durable journal persistence backed by a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path (~/.local/share/daybook/journal.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "daybook", "journal.db"), nil
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas ride in the DSN so the driver applies them to every pooled
	// connection. A plain db.Exec would configure only the one connection
	// that happens to run it, leaving cascades off elsewhere in the pool.
	// WAL improves concurrent read performance; foreign_keys is required
	// for ON DELETE CASCADE on messages and summaries.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(createSchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying connection so auxiliary stores can share it.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// ── Conversations ────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateConversation() (*Conversation, error) {
	now := time.Now()
	c := &Conversation{
		ID:        uuid.New().String(),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, title, status, created_at, updated_at)
		VALUES (?, '', 'active', ?, ?)`,
		c.ID, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetConversation(id string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT c.id, c.title, c.status, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c WHERE c.id = ?`, id)
	return scanConversation(row)
}

// ListConversations returns all conversations ordered by most recent activity.
func (s *SQLiteStore) ListConversations() ([]Conversation, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.status, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// SearchConversations matches the query against titles and message content.
func (s *SQLiteStore) SearchConversations(query string, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT DISTINCT c.id, c.title, c.status, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m2 WHERE m2.conversation_id = c.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.title LIKE ? OR m.content LIKE ?
		ORDER BY c.updated_at DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// SetTitle updates a conversation's title.
func (s *SQLiteStore) SetTitle(id, title string) error {
	return s.updateConversation(id, `UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`, title, fmtTime(time.Now()), id)
}

// ArchiveConversation marks a conversation archived. It is never deleted as a
// side effect of archiving.
func (s *SQLiteStore) ArchiveConversation(id string) error {
	return s.updateConversation(id, `UPDATE conversations SET status = 'archived', updated_at = ? WHERE id = ?`, fmtTime(time.Now()), id)
}

// DeleteConversation removes a conversation and cascades to its messages and
// summaries. Goals and mood entries are left untouched.
func (s *SQLiteStore) DeleteConversation(id string) error {
	return s.updateConversation(id, `DELETE FROM conversations WHERE id = ?`, id)
}

func (s *SQLiteStore) updateConversation(id, query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Messages ─────────────────────────────────────────────────────────────────

// AppendMessage adds a message with the next sequence number. The number is
// assigned inside the insert itself so no two appends can observe the same
// value, even if the one-turn-at-a-time caller contract is ever relaxed.
func (s *SQLiteStore) AppendMessage(conversationID string, role Role, content string) (*Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if err := conversationExists(tx, conversationID); err != nil {
		return nil, err
	}

	m := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	err = tx.QueryRow(`
		INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?), ?, ?, ?)
		RETURNING seq`,
		m.ID, conversationID, conversationID, m.Role, m.Content, fmtTime(m.CreatedAt),
	).Scan(&m.Seq)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, fmtTime(m.CreatedAt), conversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return m, nil
}

// Messages returns messages with sequence numbers in [fromSeq, toSeq],
// ordered by sequence. An empty range yields an empty slice, not an error.
func (s *SQLiteStore) Messages(conversationID string, fromSeq, toSeq int) ([]Message, error) {
	if toSeq < fromSeq {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT id, conversation_id, seq, role, content, created_at
		FROM messages
		WHERE conversation_id = ? AND seq >= ? AND seq <= ?
		ORDER BY seq`, conversationID, fromSeq, toSeq)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// MessagesFrom returns all messages with sequence number >= fromSeq.
func (s *SQLiteStore) MessagesFrom(conversationID string, fromSeq int) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, seq, role, content, created_at
		FROM messages
		WHERE conversation_id = ? AND seq >= ?
		ORDER BY seq`, conversationID, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// LatestSeq returns the highest assigned sequence number, 0 when the
// conversation has no messages.
func (s *SQLiteStore) LatestSeq(conversationID string) (int, error) {
	var seq int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = ?`,
		conversationID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq, nil
}

// ── Summaries ────────────────────────────────────────────────────────────────

// WriteSummary records a new summary. Coverage must extend the existing chain
// exactly: coversFrom equals the previous coverage end + 1 (1 for the first
// summary) and coversTo must not run past the last persisted message.
func (s *SQLiteStore) WriteSummary(conversationID, content string, coversFrom, coversTo int) (*Summary, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin summary: %w", err)
	}
	defer tx.Rollback()

	if err := conversationExists(tx, conversationID); err != nil {
		return nil, err
	}

	var prevEnd, maxSeq int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(covers_to), 0) FROM summaries WHERE conversation_id = ?`, conversationID).Scan(&prevEnd); err != nil {
		return nil, fmt.Errorf("read summary chain: %w", err)
	}
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("read message range: %w", err)
	}

	if coversFrom != prevEnd+1 || coversTo < coversFrom || coversTo > maxSeq {
		return nil, fmt.Errorf("summary [%d,%d] after coverage end %d (messages 1..%d): %w",
			coversFrom, coversTo, prevEnd, maxSeq, ErrInvalidRange)
	}

	sum := &Summary{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Content:        content,
		CoversFrom:     coversFrom,
		CoversTo:       coversTo,
		CreatedAt:      time.Now(),
	}
	_, err = tx.Exec(`
		INSERT INTO summaries (id, conversation_id, content, covers_from, covers_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.ConversationID, sum.Content, sum.CoversFrom, sum.CoversTo, fmtTime(sum.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit summary: %w", err)
	}
	return sum, nil
}

// ActiveSummary returns the summary with the greatest coverage end, or
// (nil, nil) when the conversation has no summaries yet.
func (s *SQLiteStore) ActiveSummary(conversationID string) (*Summary, error) {
	row := s.db.QueryRow(`
		SELECT id, conversation_id, content, covers_from, covers_to, created_at
		FROM summaries
		WHERE conversation_id = ?
		ORDER BY covers_to DESC LIMIT 1`, conversationID)

	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sum, err
}

// Summaries returns every summary for a conversation (audit/export), oldest
// coverage first.
func (s *SQLiteStore) Summaries(conversationID string) ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, content, covers_from, covers_to, created_at
		FROM summaries
		WHERE conversation_id = ?
		ORDER BY covers_to`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var sums []Summary
	for rows.Next() {
		var sum Summary
		var createdAt string
		if err := rows.Scan(&sum.ID, &sum.ConversationID, &sum.Content, &sum.CoversFrom, &sum.CoversTo, &createdAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.CreatedAt = parseTime(createdAt)
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// ── Goals ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateGoal(description string) (*Goal, error) {
	now := time.Now()
	g := &Goal{
		ID:          uuid.New().String(),
		Description: description,
		Status:      GoalOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(`
		INSERT INTO goals (id, description, status, created_at, updated_at)
		VALUES (?, ?, 'open', ?, ?)`,
		g.ID, g.Description, fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *SQLiteStore) GetGoal(id string) (*Goal, error) {
	row := s.db.QueryRow(`
		SELECT id, description, status, created_at, updated_at FROM goals WHERE id = ?`, id)

	var g Goal
	var createdAt, updatedAt string
	err := row.Scan(&g.ID, &g.Description, &g.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return &g, nil
}

// UpdateGoalStatus mutates a goal's lifecycle status. Goals change only
// through explicit caller action, never by the model.
func (s *SQLiteStore) UpdateGoalStatus(id string, status GoalStatus) error {
	result, err := s.db.Exec(`UPDATE goals SET status = ?, updated_at = ? WHERE id = ?`,
		status, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteGoal(id string) error {
	result, err := s.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListGoals() ([]Goal, error) {
	return s.queryGoals(`SELECT id, description, status, created_at, updated_at FROM goals ORDER BY created_at`)
}

// OpenGoals returns goals still being worked toward, for context injection.
func (s *SQLiteStore) OpenGoals() ([]Goal, error) {
	return s.queryGoals(`SELECT id, description, status, created_at, updated_at FROM goals WHERE status = 'open' ORDER BY created_at`)
}

func (s *SQLiteStore) queryGoals(query string) ([]Goal, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var createdAt, updatedAt string
		if err := rows.Scan(&g.ID, &g.Description, &g.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.CreatedAt = parseTime(createdAt)
		g.UpdatedAt = parseTime(updatedAt)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ── Mood entries ─────────────────────────────────────────────────────────────

func (s *SQLiteStore) AddMood(label, conversationID string) (*MoodEntry, error) {
	m := &MoodEntry{
		ID:             uuid.New().String(),
		Label:          label,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}
	_, err := s.db.Exec(`
		INSERT INTO mood_entries (id, label, conversation_id, created_at)
		VALUES (?, ?, ?, ?)`,
		m.ID, m.Label, m.ConversationID, fmtTime(m.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("add mood: %w", err)
	}
	return m, nil
}

// LatestMood returns the most recent mood entry, or (nil, nil) when none exist.
func (s *SQLiteStore) LatestMood() (*MoodEntry, error) {
	row := s.db.QueryRow(`
		SELECT id, label, conversation_id, created_at
		FROM mood_entries ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	var m MoodEntry
	var createdAt string
	err := row.Scan(&m.ID, &m.Label, &m.ConversationID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest mood: %w", err)
	}
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

func (s *SQLiteStore) ListMoods(limit int) ([]MoodEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, label, conversation_id, created_at
		FROM mood_entries ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()

	var moods []MoodEntry
	for rows.Next() {
		var m MoodEntry
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Label, &m.ConversationID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// ── Stats ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) Stats() (*Stats, error) {
	st := &Stats{}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&st.Conversations); err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&st.Messages); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM goals WHERE status = ?`, GoalOpen).Scan(&st.OpenGoals); err != nil {
		return nil, fmt.Errorf("count open goals: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM mood_entries`).Scan(&st.MoodEntries); err != nil {
		return nil, fmt.Errorf("count moods: %w", err)
	}

	// Word counting happens in Go; SQLite has no word splitter.
	rows, err := s.db.Query(`SELECT content FROM messages WHERE role = ?`, RoleUser)
	if err != nil {
		return nil, fmt.Errorf("read user messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		st.WordsWritten += len(strings.Fields(content))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var first sql.NullString
	if err := s.db.QueryRow(`SELECT MIN(created_at) FROM conversations`).Scan(&first); err != nil {
		return nil, fmt.Errorf("first conversation: %w", err)
	}
	if first.Valid {
		t := parseTime(first.String)
		st.FirstEntry = &t
	}
	return st, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func conversationExists(tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM conversations WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check conversation: %w", err)
	}
	return nil
}

func scanConversation(row *sql.Row) (*Conversation, error) {
	var c Conversation
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Title, &c.Status, &createdAt, &updatedAt, &c.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func scanConversations(rows *sql.Rows) ([]Conversation, error) {
	var convs []Conversation
	for rows.Next() {
		var c Conversation
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Title, &c.Status, &createdAt, &updatedAt, &c.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func scanSummary(row *sql.Row) (*Summary, error) {
	var sum Summary
	var createdAt string
	err := row.Scan(&sum.ID, &sum.ConversationID, &sum.Content, &sum.CoversFrom, &sum.CoversTo, &createdAt)
	if err != nil {
		return nil, err
	}
	sum.CreatedAt = parseTime(createdAt)
	return &sum, nil
}

// timeLayout is RFC3339 with a fixed-width fraction so stored strings sort
// lexicographically in timestamp order (RFC3339Nano drops trailing zeros,
// which breaks ORDER BY on the text column).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// A corrupted row decodes as the zero time rather than failing the
		// whole read, but never silently.
		logrus.WithError(err).WithField("value", s).Warn("corrupt timestamp in journal db")
		return time.Time{}
	}
	return t.Local()
}
