package comment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/service/attachment"
	"github.com/forvaidya/icomment/internal/service/comment"
	"github.com/forvaidya/icomment/internal/service/moderation"
	"github.com/forvaidya/icomment/internal/service/servicetest"
)

type fixture struct {
	store       *servicetest.Store
	svc         comment.Service
	attachments attachment.Service
	owner       *domain.User
	author      *domain.User
	admin       *domain.User
	discussion  *domain.Discussion
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := servicetest.NewStore()
	attachmentSvc := attachment.NewService(store.AttachmentRepo(), store.CommentRepo(), store.UserRepo(), nil, nil)
	moderationSvc := moderation.NewService(store.ModerationLogRepo())
	svc := comment.NewService(store.CommentRepo(), store.DiscussionRepo(), store.UserRepo(), attachmentSvc, moderationSvc, nil, 0, nil)

	f := &fixture{
		store:       store,
		svc:         svc,
		attachments: attachmentSvc,
		owner:       store.AddUser("owner", false),
		author:      store.AddUser("author", false),
		admin:       store.AddUser("admin", true),
	}

	d := &domain.Discussion{ID: uuid.New(), Title: "D1", CreatedBy: f.owner.ID}
	require.NoError(t, store.DiscussionRepo().Create(context.Background(), d))
	f.discussion = d
	return f
}

func (f *fixture) mustCreate(t *testing.T, authorID uuid.UUID, content string, parentID *uuid.UUID) *domain.Comment {
	t.Helper()
	c, err := f.svc.Create(context.Background(), f.discussion.ID, authorID, domain.CreateCommentInput{
		ParentID: parentID,
		Content:  content,
	})
	require.NoError(t, err)
	return c
}

func TestCreatePlacesCommentsInTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mustCreate(t, f.author.ID, "root", nil)
	reply := f.mustCreate(t, f.owner.ID, "reply", &root.ID)
	second := f.mustCreate(t, f.author.ID, "second root", nil)

	forest, err := f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)

	require.Len(t, forest, 2)
	assert.Equal(t, root.ID, forest[0].ID)
	assert.Equal(t, "root", forest[0].Content)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, reply.ID, forest[0].Replies[0].ID)
	assert.Equal(t, second.ID, forest[1].ID)
}

func TestTreeBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	f := newFixture(t)
	// Freeze the clock so every comment gets the same created_at.
	f.store.Step = 0

	first := f.mustCreate(t, f.author.ID, "first", nil)
	second := f.mustCreate(t, f.author.ID, "second", nil)
	third := f.mustCreate(t, f.author.ID, "third", nil)

	forest, err := f.svc.Tree(context.Background(), f.discussion.ID, nil)
	require.NoError(t, err)

	require.Len(t, forest, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID},
		[]uuid.UUID{forest[0].ID, forest[1].ID, forest[2].ID})
}

func TestCreateRejectsMissingOrDeletedDiscussion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.New(), f.author.ID, domain.CreateCommentInput{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.DiscussionRepo().SoftDelete(ctx, f.discussion.ID))
	_, err = f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidatesContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{Content: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "content", vErr.Field)

	huge := make([]byte, domain.MaxContentLength+1)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err = f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{Content: string(huge)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateRejectsBadParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("dangling parent", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{
			ParentID: &missing, Content: "orphan",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})

	t.Run("parent in another discussion", func(t *testing.T) {
		other := &domain.Discussion{ID: uuid.New(), Title: "D2", CreatedBy: f.owner.ID}
		require.NoError(t, f.store.DiscussionRepo().Create(ctx, other))
		foreign, err := f.svc.Create(ctx, other.ID, f.author.ID, domain.CreateCommentInput{Content: "elsewhere"})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{
			ParentID: &foreign.ID, Content: "cross",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})

	t.Run("soft-deleted parent", func(t *testing.T) {
		parent := f.mustCreate(t, f.author.ID, "doomed", nil)
		require.NoError(t, f.svc.SoftDelete(ctx, parent.ID, f.author.ID))

		_, err := f.svc.Create(ctx, f.discussion.ID, f.author.ID, domain.CreateCommentInput{
			ParentID: &parent.ID, Content: "reply to tombstone",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})
}

func TestEditPermissionsAndTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := f.store.AddUser("stranger", false)

	c := f.mustCreate(t, f.author.ID, "original", nil)
	createdAt := c.CreatedAt

	_, err := f.svc.Edit(ctx, c.ID, stranger.ID, domain.UpdateCommentInput{Content: "nope"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	edited, err := f.svc.Edit(ctx, c.ID, f.author.ID, domain.UpdateCommentInput{Content: "by author"})
	require.NoError(t, err)
	assert.Equal(t, "by author", edited.Content)
	assert.True(t, edited.UpdatedAt.After(createdAt), "updated_at must move strictly forward")
	assert.Equal(t, createdAt, edited.CreatedAt, "created_at is immutable")

	again, err := f.svc.Edit(ctx, c.ID, f.admin.ID, domain.UpdateCommentInput{Content: "by admin"})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(edited.UpdatedAt))
}

func TestEditMissingOrDeletedComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Edit(ctx, uuid.New(), f.author.ID, domain.UpdateCommentInput{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c := f.mustCreate(t, f.author.ID, "going away", nil)
	require.NoError(t, f.svc.SoftDelete(ctx, c.ID, f.author.ID))

	_, err = f.svc.Edit(ctx, c.ID, f.author.ID, domain.UpdateCommentInput{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestForbiddenIsIdenticalForUnknownAndUnauthorizedActors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := f.store.AddUser("stranger", false)

	c := f.mustCreate(t, f.author.ID, "guarded", nil)

	_, unknownErr := f.svc.Edit(ctx, c.ID, uuid.New(), domain.UpdateCommentInput{Content: "x"})
	_, unauthorizedErr := f.svc.Edit(ctx, c.ID, stranger.ID, domain.UpdateCommentInput{Content: "x"})

	// The two denials must be indistinguishable so neither reveals whether
	// the resource exists.
	assert.Equal(t, unknownErr, unauthorizedErr)
	assert.ErrorIs(t, unknownErr, domain.ErrForbidden)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.mustCreate(t, f.author.ID, "once", nil)

	require.NoError(t, f.svc.SoftDelete(ctx, c.ID, f.author.ID))
	deletedAt := f.store.Comments[c.ID].DeletedAt
	require.NotNil(t, deletedAt)

	require.NoError(t, f.svc.SoftDelete(ctx, c.ID, f.author.ID))
	assert.Equal(t, deletedAt, f.store.Comments[c.ID].DeletedAt, "second delete must not touch the row")
}

func TestEndToEndTombstoneCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.owner, f.author

	c1 := f.mustCreate(t, u2.ID, "C1", nil)
	c2 := f.mustCreate(t, u1.ID, "C2", &c1.ID)

	forest, err := f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, c1.ID, forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, c2.ID, forest[0].Replies[0].ID)

	// Deleting C1 keeps it as a tombstone because C2 is still live.
	require.NoError(t, f.svc.SoftDelete(ctx, c1.ID, u2.ID))
	forest, err = f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, c1.ID, forest[0].ID)
	assert.True(t, forest[0].Deleted)
	assert.Empty(t, forest[0].Content, "tombstones carry no content")
	assert.Nil(t, forest[0].AuthorID, "tombstones carry no author")
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, c2.ID, forest[0].Replies[0].ID)
	assert.Equal(t, "C2", forest[0].Replies[0].Content)

	// Deleting C2 removes the last live descendant and the whole branch.
	require.NoError(t, f.svc.SoftDelete(ctx, c2.ID, u1.ID))
	forest, err = f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestSoftDeleteLeafDisappears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep := f.mustCreate(t, f.author.ID, "keep", nil)
	gone := f.mustCreate(t, f.author.ID, "gone", nil)

	require.NoError(t, f.svc.SoftDelete(ctx, gone.ID, f.author.ID))

	forest, err := f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, keep.ID, forest[0].ID)
}

func TestSinceFilterKeepsTreeConnected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	oldRoot := f.mustCreate(t, f.author.ID, "old root", nil)
	oldOther := f.mustCreate(t, f.author.ID, "old unanswered", nil)

	cutoff := oldOther.CreatedAt
	newReply := f.mustCreate(t, f.owner.ID, "fresh reply", &oldRoot.ID)

	forest, err := f.svc.Tree(ctx, f.discussion.ID, &cutoff)
	require.NoError(t, err)

	// The stale root appears only as the connector for its fresh reply;
	// the unanswered stale comment is filtered out entirely.
	require.Len(t, forest, 1)
	assert.Equal(t, oldRoot.ID, forest[0].ID)
	assert.False(t, forest[0].Deleted)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, newReply.ID, forest[0].Replies[0].ID)
	assert.NotEqual(t, oldOther.ID, forest[0].ID)
}

func TestSoftDeleteCascadesAttachmentMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.mustCreate(t, f.author.ID, "with file", nil)
	_, err := f.attachments.Add(ctx, c.ID, f.author.ID, domain.AddAttachmentInput{
		FileName:  "cat.png",
		MimeType:  "image/png",
		FileSize:  1024,
		ObjectKey: "attachments/cat.png",
	})
	require.NoError(t, err)
	require.Len(t, f.store.Attachments, 1)

	require.NoError(t, f.svc.SoftDelete(ctx, c.ID, f.author.ID))

	assert.Empty(t, f.store.Attachments, "attachment rows must go with the comment")
}

func TestRestoreIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.mustCreate(t, f.author.ID, "revive me", nil)
	require.NoError(t, f.svc.SoftDelete(ctx, c.ID, f.author.ID))

	err := f.svc.Restore(ctx, c.ID, f.author.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.svc.Restore(ctx, c.ID, f.admin.ID))

	forest, err := f.svc.Tree(ctx, f.discussion.ID, nil)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "revive me", forest[0].Content)

	// Restore is recorded.
	require.NotEmpty(t, f.store.Logs)
	assert.Equal(t, domain.ActionCommentRestore, f.store.Logs[len(f.store.Logs)-1].Action)
}

func TestTreeSurfacesStorageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.FailAll = true

	_, err := f.svc.Tree(context.Background(), f.discussion.ID, nil)
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))
}

func TestDeletedDiscussionHidesItsTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, f.author.ID, "soon unreachable", nil)
	require.NoError(t, f.store.DiscussionRepo().SoftDelete(ctx, f.discussion.ID))

	_, err := f.svc.Tree(ctx, f.discussion.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
