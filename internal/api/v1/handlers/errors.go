package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/apperrors"
	"github.com/glrv/reviewd/internal/logger"
)

// ErrorHandler maps application errors onto the response envelope. Anything
// outside the apperrors catalog degrades to a plain HTTP error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		return c.Status(appErr.HTTPCode).JSON(Failure(appErr.Status, appErr.Info))
	}

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(Failure(e.Code, e.Message))
	}

	logger.Errorf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(Failure(fiber.StatusInternalServerError, "internal server error"))
}
