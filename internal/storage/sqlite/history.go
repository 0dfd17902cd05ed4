package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

// History keeps a local copy of the conversations the server tracks. The
// server stays the authority on session continuity; this is for display.
type History struct {
	db  *sql.DB
	now func() time.Time
}

var _ core.HistoryRepository = (*History)(nil)

func NewHistory(db *sql.DB) *History {
	return &History{db: db, now: time.Now}
}

func (h *History) AddTurn(ctx context.Context, namespace, sessionID string, msgs ...core.ChatMessage) error {
	if sessionID == "" {
		return fmt.Errorf("add turn: %w: empty session id", core.ErrValidation)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := h.now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, namespace, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET updated_at = excluded.updated_at`,
		sessionID, namespace, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	for _, msg := range msgs {
		sources, err := marshalSources(msg.Sources)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, sources, created_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID, msg.Role, msg.Content, sources, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// GetMessages returns the last limit messages of a session, oldest first.
// A limit of zero or less returns the whole session.
func (h *History) GetMessages(ctx context.Context, sessionID string, limit int) ([]core.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT role, content, sources FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := h.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.ChatMessage
	for rows.Next() {
		var msg core.ChatMessage
		var sources string
		if err := rows.Scan(&msg.Role, &msg.Content, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from the query, flip to reading order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

// LastSession returns the most recently used session of the namespace, or an
// empty string when there is none.
func (h *History) LastSession(ctx context.Context, namespace string) (string, error) {
	var sessionID string
	err := h.db.QueryRowContext(ctx,
		`SELECT m.session_id FROM messages m
		 JOIN sessions s ON s.session_id = m.session_id
		 WHERE s.namespace = ?
		 ORDER BY m.id DESC LIMIT 1`,
		namespace,
	).Scan(&sessionID)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last session: %w", err)
	}
	return sessionID, nil
}

// ListSessions lists sessions, most recently used first. An empty namespace
// lists all of them.
func (h *History) ListSessions(ctx context.Context, namespace string, limit int) ([]core.StoredSession, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT s.session_id, s.namespace, COUNT(m.id), s.created_at, s.updated_at
		 FROM sessions s
		 LEFT JOIN messages m ON m.session_id = s.session_id
		 WHERE ? = '' OR s.namespace = ?
		 GROUP BY s.session_id
		 ORDER BY COALESCE(MAX(m.id), 0) DESC
		 LIMIT ?`,
		namespace, namespace, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.StoredSession
	for rows.Next() {
		var s core.StoredSession
		if err := rows.Scan(&s.SessionID, &s.Namespace, &s.Messages, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func marshalSources(sources []core.Source) (string, error) {
	if len(sources) == 0 {
		return "", nil
	}
	b, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sources: %w", err)
	}
	return string(b), nil
}
