package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the core tables if they do not exist. Statements are
// idempotent so the call is safe on every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id    UUID PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			kind       TEXT NOT NULL,
			email      TEXT,
			subject    TEXT UNIQUE,
			is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS discussions (
			discussion_id UUID PRIMARY KEY,
			title         TEXT NOT NULL,
			created_by    UUID NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
			is_archived   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at    TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			comment_id    UUID PRIMARY KEY,
			discussion_id UUID NOT NULL REFERENCES discussions(discussion_id) ON DELETE CASCADE,
			parent_id     UUID REFERENCES comments(comment_id) ON DELETE CASCADE,
			author_id     UUID NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
			content       TEXT NOT NULL,
			seq           BIGSERIAL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at    TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_discussion ON comments(discussion_id, created_at, seq)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			attachment_id UUID PRIMARY KEY,
			comment_id    UUID NOT NULL REFERENCES comments(comment_id) ON DELETE CASCADE,
			file_name     TEXT NOT NULL,
			mime_type     TEXT NOT NULL,
			file_size     BIGINT NOT NULL,
			object_key    TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS moderation_logs (
			log_id      UUID PRIMARY KEY,
			actor_id    UUID NOT NULL REFERENCES users(user_id) ON DELETE RESTRICT,
			action      TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   UUID NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
