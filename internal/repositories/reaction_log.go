package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotibuds/internal/shared"
)

// ReactionLogEntry is one locally recorded reaction attempt.
type ReactionLogEntry struct {
	ID         string
	ContentKey string
	Emoji      string
	ToUserID   string
	Outcome    string // sent, rolled_back
	CreatedAt  time.Time
}

// Reaction outcomes recorded in the local log.
const (
	OutcomeSent       = "sent"
	OutcomeRolledBack = "rolled_back"
)

// ReactionLog records reactions sent from this client, for the export
// command and for debugging rollbacks.
type ReactionLog struct {
	db *sql.DB
}

// NewReactionLog creates a reaction log over the given database.
func NewReactionLog(db *sql.DB) *ReactionLog {
	return &ReactionLog{db: db}
}

// Record inserts a log entry with a generated ID.
func (r *ReactionLog) Record(contentKey, emoji, toUserID, outcome string) error {
	_, err := r.db.Exec(`
		INSERT INTO reaction_log (id, content_key, emoji, to_user_id, outcome)
		VALUES (?, ?, ?, ?, ?)
	`, shared.GenerateID(), contentKey, emoji, toUserID, outcome)
	if err != nil {
		return fmt.Errorf("failed to record reaction: %w", err)
	}
	return nil
}

// List returns log entries for a content key, newest first. An empty
// key returns the full log.
func (r *ReactionLog) List(contentKey string) ([]ReactionLogEntry, error) {
	query := "SELECT id, content_key, emoji, to_user_id, outcome, created_at FROM reaction_log"
	args := []any{}
	if contentKey != "" {
		query += " WHERE content_key = ?"
		args = append(args, contentKey)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reaction log: %w", err)
	}
	defer rows.Close()

	var entries []ReactionLogEntry
	for rows.Next() {
		var e ReactionLogEntry
		if err := rows.Scan(&e.ID, &e.ContentKey, &e.Emoji, &e.ToUserID, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction log row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
