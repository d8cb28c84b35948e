package validation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// Respond writes a 400 with the field error map.
func Respond(c *fiber.Ctx, errs map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Check validates s and writes the 400 itself. It returns (true, err) when the
// response was already written and the handler should return err.
func Check(c *fiber.Ctx, s any) (bool, error) {
	errs, err := Validate(s)
	if err != nil {
		return true, fiber.ErrBadRequest
	}
	if errs != nil {
		return true, Respond(c, errs)
	}
	return false, nil
}
