package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/application/shopping"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// ShoppingHandler active trip endpoints (protected).
type ShoppingHandler struct {
	uc *shopping.UseCase
}

// NewShoppingHandler builds the handler.
func NewShoppingHandler(uc *shopping.UseCase) *ShoppingHandler {
	return &ShoppingHandler{uc: uc}
}

// StartTrip POST /api/trips
func (h *ShoppingHandler) StartTrip(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	var in dto.StartTripRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	view, err := h.uc.StartTrip(c.Context(), shopperID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// LastPlan GET /api/trips/plan
func (h *ShoppingHandler) LastPlan(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	plan, err := h.uc.LastPlan(c.Context(), shopperID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}

// Current GET /api/trips/current
func (h *ShoppingHandler) Current(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.Current(shopperID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// AddItem POST /api/trips/current/items
func (h *ShoppingHandler) AddItem(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	view, err := h.uc.AddItem(shopperID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// Scan POST /api/trips/current/scan
func (h *ShoppingHandler) Scan(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	view, err := h.uc.Scan(shopperID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// RemoveItem DELETE /api/trips/current/items/:index
func (h *ShoppingHandler) RemoveItem(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "index must be an integer"})
	}
	view, err := h.uc.RemoveItem(shopperID, index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// UpdateLocation POST /api/trips/current/location
// The tax rate is resolved in the background; the response shows it as pending.
func (h *ShoppingHandler) UpdateLocation(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	var in dto.LocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	view, err := h.uc.UpdateLocation(shopperID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(view)
}

// Finish POST /api/trips/current/finish
func (h *ShoppingHandler) Finish(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	rec, err := h.uc.Finish(c.Context(), shopperID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Abandon DELETE /api/trips/current
func (h *ShoppingHandler) Abandon(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Abandon(shopperID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stores GET /api/stores
func (h *ShoppingHandler) Stores(c *fiber.Ctx) error {
	return c.JSON(dto.StoreOptionsDTO{Stores: entity.StoreOptions})
}
