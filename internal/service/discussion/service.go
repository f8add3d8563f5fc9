// Package discussion owns thread lifecycle: creation, listing, the
// archived flag and admin soft delete.
package discussion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/metrics"
	"github.com/forvaidya/icomment/internal/repository"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input domain.CreateDiscussionInput) (*domain.Discussion, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Discussion, error)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Discussion], error)
	// SetArchived flips the archive flag; owner or admin. Archived
	// discussions stay readable and commentable.
	SetArchived(ctx context.Context, id, actorID uuid.UUID, archived bool) (*domain.Discussion, error)
	// SoftDelete hides the discussion from all default listings; admin
	// only. Child comments are not touched, readers filter on the parent's
	// live-ness.
	SoftDelete(ctx context.Context, id, actorID uuid.UUID) error
}

type ModerationRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) error
}

type service struct {
	discussionRepo repository.DiscussionRepository
	userRepo       repository.UserRepository
	moderation     ModerationRecorder
}

func NewService(discussionRepo repository.DiscussionRepository, userRepo repository.UserRepository, moderation ModerationRecorder) Service {
	return &service{
		discussionRepo: discussionRepo,
		userRepo:       userRepo,
		moderation:     moderation,
	}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input domain.CreateDiscussionInput) (*domain.Discussion, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Invalid("title", "must not be empty")
	}
	if len(title) > domain.MaxTitleLength {
		return nil, domain.Invalid("title", fmt.Sprintf("exceeds %d characters", domain.MaxTitleLength))
	}

	discussion := &domain.Discussion{
		ID:        uuid.New(),
		Title:     title,
		CreatedBy: ownerID,
	}

	if err := s.discussionRepo.Create(ctx, discussion); err != nil {
		metrics.DiscussionOps.WithLabelValues("create", "error").Inc()
		return nil, domain.StorageError(err)
	}

	metrics.DiscussionOps.WithLabelValues("create", "ok").Inc()
	return discussion, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if discussion == nil {
		return nil, fmt.Errorf("%w: discussion", domain.ErrNotFound)
	}
	return discussion, nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Discussion], error) {
	params.Validate()

	discussions, total, err := s.discussionRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Discussion]{}, domain.StorageError(err)
	}
	return domain.NewPaginatedResponse(discussions, params.Page, params.PageSize, total), nil
}

func (s *service) SetArchived(ctx context.Context, id, actorID uuid.UUID, archived bool) (*domain.Discussion, error) {
	discussion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if actor == nil || !actor.CanActOn(discussion.CreatedBy) {
		return nil, domain.ErrForbidden
	}

	if err := s.discussionRepo.SetArchived(ctx, id, archived); err != nil {
		return nil, domain.StorageError(err)
	}
	discussion.IsArchived = archived
	return discussion, nil
}

func (s *service) SoftDelete(ctx context.Context, id, actorID uuid.UUID) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return domain.StorageError(err)
	}
	if actor == nil || !actor.IsAdmin {
		return domain.ErrForbidden
	}

	discussion, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return domain.StorageError(err)
	}
	if discussion == nil {
		return fmt.Errorf("%w: discussion", domain.ErrNotFound)
	}

	if err := s.discussionRepo.SoftDelete(ctx, id); err != nil {
		metrics.DiscussionOps.WithLabelValues("delete", "error").Inc()
		return domain.StorageError(err)
	}

	metrics.DiscussionOps.WithLabelValues("delete", "ok").Inc()
	_ = s.moderation.Record(ctx, actor.ID, domain.ActionDiscussionDelete, "discussion", id)
	return nil
}
