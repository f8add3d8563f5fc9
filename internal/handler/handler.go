package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/service"
)

type Handlers struct {
	Discussion *DiscussionHandler
	Comment    *CommentHandler
	Attachment *AttachmentHandler
	User       *UserHandler
	Moderation *ModerationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Discussion: NewDiscussionHandler(services.Discussion),
		Comment:    NewCommentHandler(services.Comment),
		Attachment: NewAttachmentHandler(services.Attachment),
		User:       NewUserHandler(services.User),
		Moderation: NewModerationHandler(services.Moderation),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 25),
	}
	params.Validate()
	return params
}
