package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxAttachmentSize bounds attachment payloads (5MB).
const MaxAttachmentSize = 5 << 20

// Attachment is metadata only. ObjectKey is an opaque locator into the
// external blob store; upload and download happen outside the core, the
// core only records the row and signals blob deletion when the row goes.
type Attachment struct {
	ID        uuid.UUID `json:"id" db:"attachment_id"`
	CommentID uuid.UUID `json:"comment_id" db:"comment_id"`
	FileName  string    `json:"filename" db:"file_name"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	ObjectKey string    `json:"object_key" db:"object_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AddAttachmentInput struct {
	FileName  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	FileSize  int64  `json:"file_size"`
	ObjectKey string `json:"object_key"`
}
