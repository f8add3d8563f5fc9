package domain

import (
	"time"

	"github.com/google/uuid"
)

// Moderation actions recorded for admin-only operations.
const (
	ActionDiscussionDelete = "discussion.delete"
	ActionCommentRestore   = "comment.restore"
	ActionAdminGrant       = "user.admin_grant"
	ActionAdminRevoke      = "user.admin_revoke"
	ActionUserDelete       = "user.delete"
)

type ModerationLog struct {
	ID         uuid.UUID `json:"id" db:"log_id"`
	ActorID    uuid.UUID `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
