package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forvaidya/icomment/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// GetByID returns only live comments.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	// GetIncludingDeleted also returns tombstoned rows; the soft-delete and
	// restore paths need to see them.
	GetIncludingDeleted(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	UpdateContent(ctx context.Context, comment *domain.Comment) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	// ListByDiscussion returns every comment of the discussion, deleted or
	// not, ordered by created_at then seq. Tree assembly decides visibility.
	ListByDiscussion(ctx context.Context, discussionID uuid.UUID) ([]domain.Comment, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (comment_id, discussion_id, parent_id, author_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.DiscussionID, comment.ParentID, comment.AuthorID, comment.Content,
	).Scan(&comment.Seq, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	query := `SELECT * FROM comments WHERE comment_id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetIncludingDeleted(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	query := `SELECT * FROM comments WHERE comment_id = $1`

	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET content = $2, updated_at = NOW()
		WHERE comment_id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.Content,
	).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE comments SET deleted_at = NOW() WHERE comment_id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *commentRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE comments SET deleted_at = NULL WHERE comment_id = $1 AND deleted_at IS NOT NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *commentRepository) ListByDiscussion(ctx context.Context, discussionID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT * FROM comments
		WHERE discussion_id = $1
		ORDER BY created_at ASC, seq ASC`

	var comments []domain.Comment
	err := r.db.SelectContext(ctx, &comments, query, discussionID)
	return comments, err
}
