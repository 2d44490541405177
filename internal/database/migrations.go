package database

import (
	"context"
	"fmt"
)

type migration struct {
	sql     string
	version int
}

var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE commits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo TEXT NOT NULL,
				subject TEXT NOT NULL,
				body TEXT NOT NULL DEFAULT '',
				provider TEXT NOT NULL,
				model TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 1,
				edited INTEGER NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL DEFAULT (unixepoch())
			);

			CREATE INDEX idx_commits_repo ON commits(repo);
			CREATE INDEX idx_commits_created ON commits(created_at);
		`,
	},
}

func (m *Manager) runMigrations(ctx context.Context) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if mig.version <= current {
			continue
		}
		if err := m.executeMigration(ctx, mig); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) executeMigration(ctx context.Context, mig migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, mig.sql); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", mig.version, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", mig.version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update database version to %d: %w", mig.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", mig.version, err)
	}
	return nil
}
