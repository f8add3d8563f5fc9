// Package user owns identity records. Users are created on first
// authentication (EnsureUser) or by seeding, and are never derived into
// admins: IsAdmin changes only through the explicit SetAdmin action.
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/identity"
	"github.com/forvaidya/icomment/internal/repository"
)

type Service interface {
	// EnsureUser returns the user for resolved claims, creating the record
	// on first authentication.
	EnsureUser(ctx context.Context, claims *identity.Claims) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// SetAdmin is the explicit admin action; admin-only.
	SetAdmin(ctx context.Context, targetID, actorID uuid.UUID, isAdmin bool) (*domain.User, error)
	// Delete removes a user; admin-only, and refused with Conflict while
	// the user still has authored content (referential restrict).
	Delete(ctx context.Context, targetID, actorID uuid.UUID) error
}

type service struct {
	userRepo   repository.UserRepository
	moderation ModerationRecorder
}

// ModerationRecorder is the slice of the moderation service this package
// needs.
type ModerationRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) error
}

func NewService(userRepo repository.UserRepository, moderation ModerationRecorder) Service {
	return &service{userRepo: userRepo, moderation: moderation}
}

func (s *service) EnsureUser(ctx context.Context, claims *identity.Claims) (*domain.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.userRepo.GetBySubject(ctx, claims.Subject)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if existing != nil {
		return existing, nil
	}

	username := strings.TrimSpace(claims.Username)
	if username == "" {
		return nil, domain.Invalid("username", "must not be empty")
	}

	subject := claims.Subject
	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Kind:     claims.Kind,
		Email:    claims.Email,
		Subject:  &subject,
	}
	if !user.Kind.IsValid() {
		user.Kind = domain.UserKindFederated
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two first-authentications can race; the loser re-reads the row
		// the winner inserted.
		if raced, lookupErr := s.userRepo.GetBySubject(ctx, claims.Subject); lookupErr == nil && raced != nil {
			return raced, nil
		}
		return nil, domain.StorageError(err)
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return user, nil
}

func (s *service) SetAdmin(ctx context.Context, targetID, actorID uuid.UUID, isAdmin bool) (*domain.User, error) {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	if err := s.userRepo.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, domain.StorageError(err)
	}
	target.IsAdmin = isAdmin

	action := domain.ActionAdminGrant
	if !isAdmin {
		action = domain.ActionAdminRevoke
	}
	_ = s.moderation.Record(ctx, actor.ID, action, "user", targetID)

	return target, nil
}

func (s *service) Delete(ctx context.Context, targetID, actorID uuid.UUID) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return domain.StorageError(err)
	}
	if target == nil {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	authored, err := s.userRepo.CountAuthored(ctx, targetID)
	if err != nil {
		return domain.StorageError(err)
	}
	if authored > 0 {
		return fmt.Errorf("%w: user still has authored content", domain.ErrConflict)
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return domain.StorageError(err)
	}

	_ = s.moderation.Record(ctx, actor.ID, domain.ActionUserDelete, "user", targetID)
	return nil
}

func (s *service) requireAdmin(ctx context.Context, actorID uuid.UUID) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	// The same generic denial covers an unknown actor and a known
	// non-admin, so the response does not leak resource existence.
	if actor == nil || !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}
