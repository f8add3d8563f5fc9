package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/service/attachment"
)

type AttachmentHandler struct {
	attachmentService attachment.Service
}

func NewAttachmentHandler(attachmentService attachment.Service) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) Add(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	var input domain.AddAttachmentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	a, err := h.attachmentService.Add(c.Context(), commentID, userID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return middleware.BadRequest("Invalid comment ID")
	}

	attachments, err := h.attachmentService.ListByComment(c.Context(), commentID)
	if err != nil {
		return err
	}
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return c.Status(fiber.StatusOK).JSON(attachments)
}

func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	attachmentID, err := uuid.Parse(c.Params("attachmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid attachment ID")
	}

	if err := h.attachmentService.Delete(c.Context(), attachmentID, userID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}
