package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcart-api/internal/application/history"
	"github.com/jhoicas/smartcart-api/internal/application/shopping"
)

// RouterDeps dependencies of the router.
type RouterDeps struct {
	ShoppingUC *shopping.UseCase
	HistoryUC  *history.UseCase
	JWTSecret  string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	shoppingHandler := NewShoppingHandler(deps.ShoppingUC)
	historyHandler := NewHistoryHandler(deps.HistoryUC)

	// Public
	api.Get("/stores", shoppingHandler.Stores)

	// Protected (Bearer token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	trips := protected.Group("/trips")
	trips.Post("/", shoppingHandler.StartTrip)
	trips.Get("/plan", shoppingHandler.LastPlan)
	trips.Get("/current", shoppingHandler.Current)
	trips.Delete("/current", shoppingHandler.Abandon)
	trips.Post("/current/items", shoppingHandler.AddItem)
	trips.Delete("/current/items/:index", shoppingHandler.RemoveItem)
	trips.Post("/current/scan", shoppingHandler.Scan)
	trips.Post("/current/location", shoppingHandler.UpdateLocation)
	trips.Post("/current/finish", shoppingHandler.Finish)

	records := protected.Group("/records")
	records.Get("/", historyHandler.List)
	records.Get("/:id", historyHandler.GetByID)
	records.Get("/:id/pdf", historyHandler.PDF)

	protected.Get("/spending/summary", historyHandler.Summary)
}
