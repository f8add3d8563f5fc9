package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	discussionID, err := uuid.Parse(c.Params("discussionId"))
	if err != nil {
		return middleware.BadRequest("Invalid discussion ID")
	}

	var input domain.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.commentService.Create(c.Context(), discussionID, userID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Tree returns the discussion's comment forest. An optional since query
// parameter (RFC 3339) restricts the result to comments created after it,
// plus the ancestors needed to keep the forest connected.
func (h *CommentHandler) Tree(c *fiber.Ctx) error {
	discussionID, err := uuid.Parse(c.Params("discussionId"))
	if err != nil {
		return middleware.BadRequest("Invalid discussion ID")
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return middleware.BadRequest("Invalid since timestamp, use RFC 3339")
		}
		since = &parsed
	}

	forest, err := h.commentService.Tree(c.Context(), discussionID, since)
	if err != nil {
		return err
	}
	if forest == nil {
		forest = []*domain.CommentNode{}
	}
	return c.Status(fiber.StatusOK).JSON(forest)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	var input domain.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.commentService.Edit(c.Context(), commentID, userID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	if err := h.commentService.SoftDelete(c.Context(), commentID, userID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *CommentHandler) Restore(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	if err := h.commentService.Restore(c.Context(), commentID, userID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}
