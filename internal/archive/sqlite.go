// Package archive keeps exported transcripts of finished games in SQLite.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aaronzipp/among-llms/internal/models"
)

// Transcript is one archived game
type Transcript struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Scenario  string    `json:"scenario"`
	Human     string    `json:"human"`
	Won       bool      `json:"won"`
	Lines     []string  `json:"lines,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a SQLite-backed transcript archive
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the archive at dsn
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// Every connection to an in-memory database is a separate database.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			transcript_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			scenario TEXT NOT NULL,
			human TEXT NOT NULL,
			won INTEGER NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session_id)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores t under a fresh id and returns the id. A zero CreatedAt is
// set to now.
func (s *Store) Save(ctx context.Context, t Transcript) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (transcript_id, session_id, scenario, human, won, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Scenario, t.Human, t.Won, strings.Join(t.Lines, "\n"), t.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}
	return t.ID, nil
}

// Get returns a transcript with its lines
func (s *Store) Get(ctx context.Context, id string) (*Transcript, error) {
	var (
		t    Transcript
		body string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT transcript_id, session_id, scenario, human, won, body, created_at
		 FROM transcripts WHERE transcript_id = ?`, id,
	).Scan(&t.ID, &t.SessionID, &t.Scenario, &t.Human, &t.Won, &body, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if body != "" {
		t.Lines = strings.Split(body, "\n")
	}
	return &t, nil
}

// List returns transcripts newest first, without their lines
func (s *Store) List(ctx context.Context, limit int) ([]Transcript, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT transcript_id, session_id, scenario, human, won, created_at
		 FROM transcripts ORDER BY created_at DESC, transcript_id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var t Transcript
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Scenario, &t.Human, &t.Won, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
