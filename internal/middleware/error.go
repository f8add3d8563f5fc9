package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler translates domain error kinds and fiber errors into one JSON
// error shape. Unrecognized errors collapse to a generic 500 so internals
// never leak to clients.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	field := ""

	var fiberErr *fiber.Error
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
		errorCode = codeName(code)
	case errors.Is(err, domain.ErrValidation):
		code = fiber.StatusUnprocessableEntity
		message = err.Error()
		errorCode = "VALIDATION_ERROR"
		if errors.As(err, &validationErr) {
			field = validationErr.Field
		}
	case errors.Is(err, domain.ErrInvalidReference):
		code = fiber.StatusUnprocessableEntity
		message = err.Error()
		errorCode = "INVALID_REFERENCE"
	case errors.Is(err, domain.ErrUnauthorized):
		code = fiber.StatusUnauthorized
		message = "Authentication required"
		errorCode = "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		// One message for every denial; the response must not reveal
		// whether the resource exists.
		code = fiber.StatusForbidden
		message = "Access denied"
		errorCode = "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
		errorCode = "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		code = fiber.StatusConflict
		message = err.Error()
		errorCode = "CONFLICT"
	case errors.Is(err, domain.ErrStorageUnavailable):
		code = fiber.StatusServiceUnavailable
		message = "Storage temporarily unavailable"
		errorCode = "STORAGE_UNAVAILABLE"
	}

	traceID := uuid.New().String()[:8]

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		Field:   field,
		TraceID: traceID,
	})
}

func codeName(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}
