package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/internal/pkg/cardvault"
	"github.com/fanvault/fanvault/internal/pkg/metrics/counter"
)

// counterFlush is swapped out in tests that run without Redis.
var counterFlush = counter.FlushAll

// jsonError writes the standard error envelope used across the API.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// jsonFieldErrors writes field-level validation messages under "errors".
func jsonFieldErrors(c *fiber.Ctx, errs models.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
}

// respondCardError maps card manager failures onto HTTP responses.
func respondCardError(c *fiber.Ctx, err error) error {
	var fieldErrs models.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return jsonFieldErrors(c, fieldErrs)
	case errors.Is(err, cardvault.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Card not found")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Card operation failed")
	}
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
