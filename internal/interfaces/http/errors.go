package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/domain"
)

var errorStatus = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "invalid data"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid token"},
	{domain.ErrParseMiss, fiber.StatusUnprocessableEntity, "PARSE_MISS", "no item found in the scanned text"},
	{domain.ErrOutOfRange, fiber.StatusConflict, "OUT_OF_RANGE", "no item at that position"},
	{domain.ErrEmptyCart, fiber.StatusConflict, "EMPTY_CART", "the cart is empty"},
	{domain.ErrNoActiveTrip, fiber.StatusNotFound, "NO_ACTIVE_TRIP", "no shopping trip in progress"},
	{domain.ErrTripInProgress, fiber.StatusConflict, "TRIP_IN_PROGRESS", "a shopping trip is already in progress"},
}

// writeError maps domain errors to status codes. Anything else is a 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: e.message})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
}
