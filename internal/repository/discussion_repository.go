package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forvaidya/icomment/internal/domain"
)

type DiscussionRepository interface {
	Create(ctx context.Context, discussion *domain.Discussion) error
	// GetByID returns only live discussions; soft-deleted rows read as absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Discussion, error)
	List(ctx context.Context, params domain.PaginationParams) ([]domain.Discussion, int64, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type discussionRepository struct {
	db *sqlx.DB
}

func NewDiscussionRepository(db *sqlx.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) Create(ctx context.Context, discussion *domain.Discussion) error {
	query := `
		INSERT INTO discussions (discussion_id, title, created_by)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		discussion.ID, discussion.Title, discussion.CreatedBy,
	).Scan(&discussion.CreatedAt, &discussion.UpdatedAt)
}

func (r *discussionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Discussion, error) {
	var discussion domain.Discussion
	query := `SELECT * FROM discussions WHERE discussion_id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &discussion, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *discussionRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Discussion, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM discussions WHERE deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM discussions
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var discussions []domain.Discussion
	err := r.db.SelectContext(ctx, &discussions, query, params.PageSize, params.Offset())
	return discussions, total, err
}

func (r *discussionRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	query := `UPDATE discussions SET is_archived = $2, updated_at = NOW() WHERE discussion_id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, archived)
	return err
}

func (r *discussionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE discussions SET deleted_at = NOW() WHERE discussion_id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
