package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/application/history"
)

// HistoryHandler finished records and spending totals (protected).
type HistoryHandler struct {
	uc  *history.UseCase
	now func() time.Time
}

// NewHistoryHandler builds the handler.
func NewHistoryHandler(uc *history.UseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc, now: time.Now}
}

// List GET /api/records?limit=&offset=
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	out, err := h.uc.ListRecords(c.Context(), shopperID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/records/:id
func (h *HistoryHandler) GetByID(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	rec, err := h.uc.GetRecord(c.Context(), shopperID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// PDF GET /api/records/:id/pdf
func (h *HistoryHandler) PDF(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	b, filename, err := h.uc.RecordPDF(c.Context(), shopperID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(b)
}

// Summary GET /api/spending/summary?asOf=RFC3339|YYYY-MM-DD
func (h *HistoryHandler) Summary(c *fiber.Ctx) error {
	shopperID := GetShopperID(c)
	if shopperID == "" {
		return unauthorized(c)
	}
	asOf, err := parseAsOf(c.Query("asOf"), h.now)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "asOf must be RFC3339 or YYYY-MM-DD"})
	}
	out, err := h.uc.Summary(c.Context(), shopperID, asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseAsOf a bare date is read as the end of that day in UTC.
func parseAsOf(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Nanosecond), nil
}
