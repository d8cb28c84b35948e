package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// GenericMessage is what clients see for any unexpected failure.
const GenericMessage = "Something went wrong. Please try again later"

/* =========================== Error Formatting =========================== */

// defaultMessage gives a readable message for a bare fiber.ErrXxx.
func defaultMessage(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "Bad request"
	case fiber.StatusUnauthorized:
		return "Not authenticated"
	case fiber.StatusForbidden:
		return "Access denied"
	case fiber.StatusNotFound:
		return "Resource not found"
	case fiber.StatusConflict:
		return "Resource already exists"
	case fiber.StatusRequestEntityTooLarge:
		return "File too large"
	default:
		return GenericMessage
	}
}

// ErrorHandler returns a global Fiber error handler producing
// {success:false, message}. Errors of 500 and above are logged; anything
// that is not a *fiber.Error is reported as a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := GenericMessage

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
			// fiber.ErrXxx carry the bare HTTP reason phrase
			if strings.TrimSpace(msg) == "" || msg == fiberutils.StatusMessage(code) {
				msg = defaultMessage(code)
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", code).
				Msg("request failed")
		}

		return c.Status(code).JSON(models.ErrorResponse{Success: false, Message: msg})
	}
}
