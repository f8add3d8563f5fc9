package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	u := middleware.GetCurrentUser(c)
	if u == nil {
		return middleware.Unauthorized("Missing authorization header")
	}
	return c.Status(fiber.StatusOK).JSON(u)
}

type setAdminInput struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *UserHandler) SetAdmin(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	var input setAdminInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.SetAdmin(c.Context(), targetID, actorID, input.IsAdmin)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	if err := h.userService.Delete(c.Context(), targetID, actorID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}
