// Package moderation records admin actions so they stay reviewable.
package moderation

import (
	"context"

	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/repository"
)

type Service interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) error
	Recent(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.ModerationLog], error)
}

type service struct {
	logRepo repository.ModerationLogRepository
}

func NewService(logRepo repository.ModerationLogRepository) Service {
	return &service{logRepo: logRepo}
}

func (s *service) Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) error {
	entry := &domain.ModerationLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}

	if err := s.logRepo.Create(ctx, entry); err != nil {
		return domain.StorageError(err)
	}
	return nil
}

func (s *service) Recent(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.ModerationLog], error) {
	params.Validate()

	entries, total, err := s.logRepo.ListRecent(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.ModerationLog]{}, domain.StorageError(err)
	}
	return domain.NewPaginatedResponse(entries, params.Page, params.PageSize, total), nil
}
