package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds comment bodies (10KB).
const MaxContentLength = 10 * 1024

// Comment is a tree node. ParentID nil means top-level; when set it must
// reference a comment in the same discussion. Seq is a monotonically
// increasing insertion counter used as the secondary sort key after
// CreatedAt, so equal timestamps still order deterministically.
type Comment struct {
	ID           uuid.UUID  `json:"id" db:"comment_id"`
	DiscussionID uuid.UUID  `json:"discussion_id" db:"discussion_id"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	AuthorID     uuid.UUID  `json:"author_id" db:"author_id"`
	Content      string     `json:"content" db:"content"`
	Seq          int64      `json:"-" db:"seq"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

func (c *Comment) IsDeleted() bool { return c.DeletedAt != nil }

// CommentNode is one node of the materialized comment forest. A tombstone
// (Deleted=true) is a soft-deleted comment kept only because it has live
// descendants; its content and author are blanked.
type CommentNode struct {
	ID        uuid.UUID      `json:"id"`
	AuthorID  *uuid.UUID     `json:"author_id,omitempty"`
	Content   string         `json:"content"`
	Deleted   bool           `json:"deleted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Replies   []*CommentNode `json:"replies,omitempty"`
}

type CreateCommentInput struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content"`
}

type UpdateCommentInput struct {
	Content string `json:"content"`
}
