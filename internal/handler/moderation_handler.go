package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/service/moderation"
)

type ModerationHandler struct {
	moderationService moderation.Service
}

func NewModerationHandler(moderationService moderation.Service) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) Recent(c *fiber.Ctx) error {
	u := middleware.GetCurrentUser(c)
	if u == nil || !u.IsAdmin {
		return domain.ErrForbidden
	}

	result, err := h.moderationService.Recent(c.Context(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
