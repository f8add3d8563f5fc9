package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/service/discussion"
)

type DiscussionHandler struct {
	discussionService discussion.Service
}

func NewDiscussionHandler(discussionService discussion.Service) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

func (h *DiscussionHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.CreateDiscussionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	d, err := h.discussionService.Create(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *DiscussionHandler) List(c *fiber.Ctx) error {
	result, err := h.discussionService.List(c.Context(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DiscussionHandler) Get(c *fiber.Ctx) error {
	discussionID, err := uuid.Parse(c.Params("discussionId"))
	if err != nil {
		return middleware.BadRequest("Invalid discussion ID")
	}

	d, err := h.discussionService.Get(c.Context(), discussionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(d)
}

type setArchivedInput struct {
	Archived bool `json:"archived"`
}

func (h *DiscussionHandler) SetArchived(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	discussionID, err := uuid.Parse(c.Params("discussionId"))
	if err != nil {
		return middleware.BadRequest("Invalid discussion ID")
	}

	var input setArchivedInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	d, err := h.discussionService.SetArchived(c.Context(), discussionID, userID, input.Archived)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(d)
}

func (h *DiscussionHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	discussionID, err := uuid.Parse(c.Params("discussionId"))
	if err != nil {
		return middleware.BadRequest("Invalid discussion ID")
	}

	if err := h.discussionService.SoftDelete(c.Context(), discussionID, userID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}
