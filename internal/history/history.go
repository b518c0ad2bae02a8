package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chatmind/internal/db"
)

// Turn is one completed exchange as recorded in the transcript.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	AgentID   string    `json:"agent_id"`
	Input     string    `json:"input"`
	Reply     string    `json:"reply"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-only transcript of turns. It is an audit log: the
// agent never reads it back to rebuild its in-memory history.
type Store struct {
	conn *sql.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{conn: database.Conn()}
}

func (s *Store) EnsureSession(ctx context.Context, sessionID, agentID string) error {
	now := time.Now().UnixNano()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, agent_id, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		sessionID, agentID, now, now)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

func (s *Store) SaveTurn(ctx context.Context, t Turn) error {
	if err := s.EnsureSession(ctx, t.SessionID, t.AgentID); err != nil {
		return err
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO turns (session_id, input, reply, model, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.SessionID, t.Input, t.Reply, sql.NullString{String: t.Model, Valid: t.Model != ""}, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// Turns returns the recorded turns of a session, oldest first.
func (s *Store) Turns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT t.id, t.session_id, s.agent_id, t.input, t.reply, t.model, t.created_at
		 FROM turns t JOIN sessions s ON s.id = t.session_id
		 WHERE t.session_id = ? ORDER BY t.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t       Turn
			model   sql.NullString
			created int64
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.AgentID, &t.Input, &t.Reply, &model, &created); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Model = model.String
		t.CreatedAt = time.Unix(0, created)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
