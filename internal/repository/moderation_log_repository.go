package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/forvaidya/icomment/internal/domain"
)

type ModerationLogRepository interface {
	Create(ctx context.Context, entry *domain.ModerationLog) error
	ListRecent(ctx context.Context, params domain.PaginationParams) ([]domain.ModerationLog, int64, error)
}

type moderationLogRepository struct {
	db *sqlx.DB
}

func NewModerationLogRepository(db *sqlx.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

func (r *moderationLogRepository) Create(ctx context.Context, entry *domain.ModerationLog) error {
	query := `
		INSERT INTO moderation_logs (log_id, actor_id, action, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
	).Scan(&entry.CreatedAt)
}

func (r *moderationLogRepository) ListRecent(ctx context.Context, params domain.PaginationParams) ([]domain.ModerationLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM moderation_logs`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM moderation_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var entries []domain.ModerationLog
	err := r.db.SelectContext(ctx, &entries, query, params.PageSize, params.Offset())
	return entries, total, err
}
