package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"studymate/internal/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNoDocument),
		errors.Is(err, domain.ErrNothingToReview),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrDecode):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrRetrieval):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGeneration):
		var ge *domain.GenerationError
		if errors.As(err, &ge) && ge.Retryable && errors.Is(ge.Err, context.DeadlineExceeded) {
			return fiber.StatusGatewayTimeout
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		ev := log.Warn()
		if code >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).Int("status", code).Str("path", c.Path()).Msg("request failed")
		return c.Status(code).JSON(errorResponse{Error: err.Error(), Status: "error"})
	}
}
