package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/api/http/handlers"
	"github.com/hubly/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	Analytics      *handlers.AnalyticsHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/auth/login", cfg.Auth.Login)

	// Widget endpoints are public: customers have no account.
	api.Post("/tickets", cfg.Tickets.Create)
	api.Post("/tickets/:id/messages", cfg.Messages.SendFromCustomer)
	api.Get("/settings/chatbot", cfg.Settings.Get)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/tickets/stats", cfg.Tickets.Stats)
	protected.Get("/tickets", cfg.Tickets.List)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Patch("/tickets/:id", cfg.Tickets.Update)
	protected.Put("/tickets/:id/assign", cfg.Tickets.Assign)
	protected.Delete("/tickets/:id", auth.RequireAdmin(), cfg.Tickets.Delete)

	protected.Get("/messages/:ticketId", cfg.Messages.ListByTicket)
	protected.Post("/messages", cfg.Messages.Send)

	protected.Get("/analytics", cfg.Analytics.Summary)
	protected.Get("/analytics/missed-chats", cfg.Analytics.MissedChats)
	protected.Get("/analytics/reply-time", cfg.Analytics.ReplyTime)
	protected.Get("/analytics/resolved-tickets", cfg.Analytics.ResolvedTickets)
	protected.Get("/analytics/total-chats", cfg.Analytics.TotalChats)

	protected.Put("/settings/chatbot", auth.RequireAdmin(), cfg.Settings.Update)
	protected.Post("/settings/chatbot/reset", auth.RequireAdmin(), cfg.Settings.Reset)
}
