package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forvaidya/icomment/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	ListByComment(ctx context.Context, commentID uuid.UUID) ([]domain.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByComment removes all attachment rows of a comment and returns
	// their object keys so the caller can signal blob deletion.
	DeleteByComment(ctx context.Context, commentID uuid.UUID) ([]string, error)
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	query := `
		INSERT INTO attachments (attachment_id, comment_id, file_name, mime_type, file_size, object_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		attachment.ID, attachment.CommentID, attachment.FileName,
		attachment.MimeType, attachment.FileSize, attachment.ObjectKey,
	).Scan(&attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	query := `SELECT * FROM attachments WHERE attachment_id = $1`

	err := r.db.GetContext(ctx, &attachment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByComment(ctx context.Context, commentID uuid.UUID) ([]domain.Attachment, error) {
	query := `SELECT * FROM attachments WHERE comment_id = $1 ORDER BY created_at ASC`

	var attachments []domain.Attachment
	err := r.db.SelectContext(ctx, &attachments, query, commentID)
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM attachments WHERE attachment_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *attachmentRepository) DeleteByComment(ctx context.Context, commentID uuid.UUID) ([]string, error) {
	query := `DELETE FROM attachments WHERE comment_id = $1 RETURNING object_key`

	var keys []string
	err := r.db.SelectContext(ctx, &keys, query, commentID)
	return keys, err
}
