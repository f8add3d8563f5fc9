// Package attachment owns attachment metadata. Blob bytes live in the
// external object store; this service records rows and signals blob
// deletion best-effort when rows disappear.
package attachment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/repository"
)

type Service interface {
	Add(ctx context.Context, commentID, actorID uuid.UUID, input domain.AddAttachmentInput) (*domain.Attachment, error)
	ListByComment(ctx context.Context, commentID uuid.UUID) ([]domain.Attachment, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	// RemoveForComment drops every attachment row of a comment and signals
	// blob deletion. Used by the comment soft-delete cascade; no permission
	// check of its own.
	RemoveForComment(ctx context.Context, commentID uuid.UUID) error
}

type service struct {
	attachmentRepo repository.AttachmentRepository
	commentRepo    repository.CommentRepository
	userRepo       repository.UserRepository
	blobs          BlobStore
	log            *zap.Logger
}

func NewService(attachmentRepo repository.AttachmentRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, blobs BlobStore, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		attachmentRepo: attachmentRepo,
		commentRepo:    commentRepo,
		userRepo:       userRepo,
		blobs:          blobs,
		log:            log,
	}
}

func (s *service) Add(ctx context.Context, commentID, actorID uuid.UUID, input domain.AddAttachmentInput) (*domain.Attachment, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return nil, domain.Invalid("filename", "must not be empty")
	}
	if strings.TrimSpace(input.MimeType) == "" {
		return nil, domain.Invalid("mime_type", "must not be empty")
	}
	if input.FileSize <= 0 {
		return nil, domain.Invalid("file_size", "must be positive")
	}
	if input.FileSize > domain.MaxAttachmentSize {
		return nil, domain.Invalid("file_size", fmt.Sprintf("exceeds %d bytes", domain.MaxAttachmentSize))
	}
	if strings.TrimSpace(input.ObjectKey) == "" {
		return nil, domain.Invalid("object_key", "must not be empty")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment", domain.ErrNotFound)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if actor == nil || !actor.CanActOn(comment.AuthorID) {
		return nil, domain.ErrForbidden
	}

	attachment := &domain.Attachment{
		ID:        uuid.New(),
		CommentID: commentID,
		FileName:  input.FileName,
		MimeType:  input.MimeType,
		FileSize:  input.FileSize,
		ObjectKey: input.ObjectKey,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, domain.StorageError(err)
	}
	return attachment, nil
}

func (s *service) ListByComment(ctx context.Context, commentID uuid.UUID) ([]domain.Attachment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment", domain.ErrNotFound)
	}

	attachments, err := s.attachmentRepo.ListByComment(ctx, commentID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	return attachments, nil
}

func (s *service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.StorageError(err)
	}
	if attachment == nil {
		return fmt.Errorf("%w: attachment", domain.ErrNotFound)
	}

	comment, err := s.commentRepo.GetIncludingDeleted(ctx, attachment.CommentID)
	if err != nil {
		return domain.StorageError(err)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return domain.StorageError(err)
	}
	if actor == nil || comment == nil || !actor.CanActOn(comment.AuthorID) {
		return domain.ErrForbidden
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return domain.StorageError(err)
	}

	s.removeBlob(ctx, attachment.ObjectKey)
	return nil
}

func (s *service) RemoveForComment(ctx context.Context, commentID uuid.UUID) error {
	keys, err := s.attachmentRepo.DeleteByComment(ctx, commentID)
	if err != nil {
		return domain.StorageError(err)
	}

	for _, key := range keys {
		s.removeBlob(ctx, key)
	}
	return nil
}

// removeBlob signals blob deletion best-effort; the metadata row is already
// gone and a stranded object is preferable to a failed delete.
func (s *service) removeBlob(ctx context.Context, objectKey string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Remove(ctx, objectKey); err != nil {
		s.log.Warn("blob deletion failed", zap.String("object_key", objectKey), zap.Error(err))
	}
}
