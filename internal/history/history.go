// Package history keeps a local log of the commit messages cm produced.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wizzomafizzo/cm/internal/database"
)

// Entry is one recorded commit.
type Entry struct {
	CreatedAt time.Time
	Repo      string
	Subject   string
	Body      string
	Provider  string
	Model     string
	ID        int64
	Attempts  uint
	Edited    bool
}

// Store reads and writes entries.
type Store struct {
	db      *sql.DB
	manager *database.Manager
}

// Open opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	manager, err := database.NewManager(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	return &Store{db: manager.DB(), manager: manager}, nil
}

// NewStore wraps an already migrated connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database.
func (s *Store) Close() error {
	if s.manager != nil {
		return s.manager.Close()
	}
	return nil
}

// Record appends an entry and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO commits (repo, subject, body, provider, model, attempts, edited, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Repo, e.Subject, e.Body, e.Provider, e.Model, e.Attempts, e.Edited, created.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record commit %q: %w", e.Subject, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first. An empty repo matches
// every repository.
func (s *Store) Recent(ctx context.Context, repo string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, repo, subject, body, provider, model, attempts, edited, created_at
		FROM commits`
	args := []any{}
	if repo != "" {
		query += " WHERE repo = ?"
		args = append(args, repo)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Repo, &e.Subject, &e.Body, &e.Provider, &e.Model,
			&e.Attempts, &e.Edited, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}
