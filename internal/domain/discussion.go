package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength bounds discussion titles.
const MaxTitleLength = 200

// Discussion is a comment thread. DeletedAt nil means live; a soft-deleted
// discussion stays in storage but disappears from every default listing.
// Archiving is a flag only, archived discussions remain readable and
// commentable.
type Discussion struct {
	ID         uuid.UUID  `json:"id" db:"discussion_id"`
	Title      string     `json:"title" db:"title"`
	CreatedBy  uuid.UUID  `json:"created_by" db:"created_by"`
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"-" db:"deleted_at"`
}

type CreateDiscussionInput struct {
	Title string `json:"title"`
}
