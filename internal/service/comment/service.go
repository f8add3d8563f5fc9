// Package comment owns the comment tree: creation, edits, soft-delete
// tombstones and the flat-table-to-forest reconstruction query.
package comment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/metrics"
	"github.com/forvaidya/icomment/internal/repository"
)

type Service interface {
	// Create validates the discussion, the content bounds and the parent
	// reference, then inserts. Replying to a soft-deleted parent is
	// rejected with InvalidReference: the parent lookup only sees live
	// rows, so a tombstoned parent reads the same as a missing one.
	Create(ctx context.Context, discussionID, authorID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error)
	// Edit updates content and updated_at; author or admin only.
	Edit(ctx context.Context, commentID, editorID uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error)
	// SoftDelete tombstones a comment; author or admin, idempotent.
	// Attachment metadata is removed and blob deletion signaled.
	SoftDelete(ctx context.Context, commentID, actorID uuid.UUID) error
	// Restore clears the tombstone; admin only, distinct from edit.
	Restore(ctx context.Context, commentID, actorID uuid.UUID) error
	// Tree materializes the discussion's live comment forest, ordered by
	// created_at then insertion order. When since is set only comments
	// created strictly after it are selected, but ancestors of selected
	// comments still appear so the tree stays connected.
	Tree(ctx context.Context, discussionID uuid.UUID, since *time.Time) ([]*domain.CommentNode, error)
}

type AttachmentRemover interface {
	RemoveForComment(ctx context.Context, commentID uuid.UUID) error
}

type ModerationRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) error
}

type service struct {
	commentRepo    repository.CommentRepository
	discussionRepo repository.DiscussionRepository
	userRepo       repository.UserRepository
	attachments    AttachmentRemover
	moderation     ModerationRecorder
	redis          *redis.Client
	cacheTTL       time.Duration
	log            *zap.Logger
}

func NewService(
	commentRepo repository.CommentRepository,
	discussionRepo repository.DiscussionRepository,
	userRepo repository.UserRepository,
	attachments AttachmentRemover,
	moderation ModerationRecorder,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}
	return &service{
		commentRepo:    commentRepo,
		discussionRepo: discussionRepo,
		userRepo:       userRepo,
		attachments:    attachments,
		moderation:     moderation,
		redis:          redisClient,
		cacheTTL:       cacheTTL,
		log:            log,
	}
}

func (s *service) Create(ctx context.Context, discussionID, authorID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error) {
	if err := validateContent(input.Content); err != nil {
		return nil, err
	}

	// Existence check and insert are separate statements on purpose: a
	// discussion soft-deleted in between leaves an orphaned comment that
	// every listing filters out anyway.
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if discussion == nil {
		return nil, fmt.Errorf("%w: discussion", domain.ErrNotFound)
	}

	if input.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, domain.StorageError(err)
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent comment does not exist", domain.ErrInvalidReference)
		}
		if parent.DiscussionID != discussionID {
			return nil, fmt.Errorf("%w: parent comment belongs to another discussion", domain.ErrInvalidReference)
		}
	}

	comment := &domain.Comment{
		ID:           uuid.New(),
		DiscussionID: discussionID,
		ParentID:     input.ParentID,
		AuthorID:     authorID,
		Content:      input.Content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		metrics.CommentOps.WithLabelValues("create", "error").Inc()
		return nil, domain.StorageError(err)
	}

	metrics.CommentOps.WithLabelValues("create", "ok").Inc()
	s.invalidateTree(ctx, discussionID)
	return comment, nil
}

func (s *service) Edit(ctx context.Context, commentID, editorID uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error) {
	if err := validateContent(input.Content); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment", domain.ErrNotFound)
	}

	if err := s.requireActorOn(ctx, editorID, comment.AuthorID); err != nil {
		return nil, err
	}

	comment.Content = input.Content
	if err := s.commentRepo.UpdateContent(ctx, comment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between the read and the write.
			return nil, fmt.Errorf("%w: comment", domain.ErrNotFound)
		}
		metrics.CommentOps.WithLabelValues("edit", "error").Inc()
		return nil, domain.StorageError(err)
	}

	metrics.CommentOps.WithLabelValues("edit", "ok").Inc()
	s.invalidateTree(ctx, comment.DiscussionID)
	return comment, nil
}

func (s *service) SoftDelete(ctx context.Context, commentID, actorID uuid.UUID) error {
	comment, err := s.commentRepo.GetIncludingDeleted(ctx, commentID)
	if err != nil {
		return domain.StorageError(err)
	}
	if comment == nil {
		return fmt.Errorf("%w: comment", domain.ErrNotFound)
	}

	if err := s.requireActorOn(ctx, actorID, comment.AuthorID); err != nil {
		return err
	}

	// Deleting an already-deleted comment is a no-op success.
	if comment.IsDeleted() {
		return nil
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		metrics.CommentOps.WithLabelValues("delete", "error").Inc()
		return domain.StorageError(err)
	}

	if err := s.attachments.RemoveForComment(ctx, commentID); err != nil {
		s.log.Warn("attachment cascade failed", zap.String("comment_id", commentID.String()), zap.Error(err))
	}

	metrics.CommentOps.WithLabelValues("delete", "ok").Inc()
	s.invalidateTree(ctx, comment.DiscussionID)
	return nil
}

func (s *service) Restore(ctx context.Context, commentID, actorID uuid.UUID) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return domain.StorageError(err)
	}
	if actor == nil || !actor.IsAdmin {
		return domain.ErrForbidden
	}

	comment, err := s.commentRepo.GetIncludingDeleted(ctx, commentID)
	if err != nil {
		return domain.StorageError(err)
	}
	if comment == nil {
		return fmt.Errorf("%w: comment", domain.ErrNotFound)
	}
	if !comment.IsDeleted() {
		return nil
	}

	if err := s.commentRepo.Restore(ctx, commentID); err != nil {
		return domain.StorageError(err)
	}

	_ = s.moderation.Record(ctx, actor.ID, domain.ActionCommentRestore, "comment", commentID)
	s.invalidateTree(ctx, comment.DiscussionID)
	return nil
}

func (s *service) Tree(ctx context.Context, discussionID uuid.UUID, since *time.Time) ([]*domain.CommentNode, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if discussion == nil {
		return nil, fmt.Errorf("%w: discussion", domain.ErrNotFound)
	}

	// Only the unfiltered tree is cached; since-filtered polls are cheap
	// variations on the same bulk fetch.
	cacheKey := treeCacheKey(discussionID)
	if since == nil && s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var forest []*domain.CommentNode
			if json.Unmarshal([]byte(cached), &forest) == nil {
				return forest, nil
			}
		}
	}

	comments, err := s.commentRepo.ListByDiscussion(ctx, discussionID)
	if err != nil {
		metrics.CommentOps.WithLabelValues("tree", "error").Inc()
		return nil, domain.StorageError(err)
	}

	forest := assemble(comments, since)
	metrics.CommentOps.WithLabelValues("tree", "ok").Inc()

	if since == nil && s.redis != nil {
		if encoded, err := json.Marshal(forest); err == nil {
			_ = s.redis.Set(ctx, cacheKey, encoded, s.cacheTTL).Err()
		}
	}

	return forest, nil
}

// assemble turns the flat, (created_at, seq)-ordered rows into a forest.
// One pass indexes rows by id and groups child ids under their parent, a
// depth-first pass then builds nodes from the null-parent roots. A node
// appears when it is selected (live and past the since cutoff) or when any
// descendant appears; deleted connectors become tombstones, deleted leaves
// vanish.
func assemble(comments []domain.Comment, since *time.Time) []*domain.CommentNode {
	byID := make(map[uuid.UUID]*domain.Comment, len(comments))
	children := make(map[uuid.UUID][]uuid.UUID)
	var roots []uuid.UUID

	for i := range comments {
		c := &comments[i]
		byID[c.ID] = c
		if c.ParentID == nil {
			roots = append(roots, c.ID)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	var build func(id uuid.UUID) *domain.CommentNode
	build = func(id uuid.UUID) *domain.CommentNode {
		c := byID[id]

		var replies []*domain.CommentNode
		for _, childID := range children[id] {
			if node := build(childID); node != nil {
				replies = append(replies, node)
			}
		}

		selected := !c.IsDeleted() && (since == nil || c.CreatedAt.After(*since))
		if !selected && len(replies) == 0 {
			return nil
		}

		node := &domain.CommentNode{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Replies:   replies,
		}
		if c.IsDeleted() {
			node.Deleted = true
		} else {
			author := c.AuthorID
			node.AuthorID = &author
			node.Content = c.Content
		}
		return node
	}

	forest := make([]*domain.CommentNode, 0, len(roots))
	for _, rootID := range roots {
		if node := build(rootID); node != nil {
			forest = append(forest, node)
		}
	}
	return forest
}

func (s *service) requireActorOn(ctx context.Context, actorID, authorID uuid.UUID) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return domain.StorageError(err)
	}
	// One generic denial for unknown and unauthorized actors alike, so the
	// answer does not reveal whether the resource exists.
	if actor == nil || !actor.CanActOn(authorID) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *service) invalidateTree(ctx context.Context, discussionID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, treeCacheKey(discussionID)).Err(); err != nil {
		s.log.Warn("tree cache invalidation failed", zap.String("discussion_id", discussionID.String()), zap.Error(err))
	}
}

func treeCacheKey(discussionID uuid.UUID) string {
	return "comments:tree:" + discussionID.String()
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.Invalid("content", "must not be empty")
	}
	if len(content) > domain.MaxContentLength {
		return domain.Invalid("content", fmt.Sprintf("exceeds %d bytes", domain.MaxContentLength))
	}
	return nil
}
