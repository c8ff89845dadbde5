// Package respond shapes every HTTP response into the uniform
// {success, message, data} envelope.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/validate"
)

// Envelope is the response body shared by all endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Data writes a success envelope with a payload.
func Data(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Message writes a success envelope without a payload.
func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message})
}

// ErrorHandler maps workflow and framework errors onto the envelope. Internal
// causes are logged and replaced with a generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verrs *validate.Errors
		if errors.As(err, &verrs) {
			return c.Status(http.StatusBadRequest).JSON(Envelope{
				Success: false,
				Message: verrs.Error(),
				Data:    fiber.Map{"errors": verrs.Fields},
			})
		}

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			status := apperr.Status(appErr)
			if status == http.StatusInternalServerError && logger != nil {
				logger.Error("request failed",
					slog.String("path", c.Path()),
					slog.Any("error", appErr.Err),
				)
			}
			return c.Status(status).JSON(Envelope{Success: false, Message: appErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Envelope{Success: false, Message: fiberErr.Message})
		}

		if logger != nil {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		}
		return c.Status(http.StatusInternalServerError).JSON(Envelope{
			Success: false,
			Message: "Internal server error",
		})
	}
}
