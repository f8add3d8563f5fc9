package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User          UserRepository
	Discussion    DiscussionRepository
	Comment       CommentRepository
	Attachment    AttachmentRepository
	ModerationLog ModerationLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Discussion:    NewDiscussionRepository(db),
		Comment:       NewCommentRepository(db),
		Attachment:    NewAttachmentRepository(db),
		ModerationLog: NewModerationLogRepository(db),
	}
}
