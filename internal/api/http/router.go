package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/http/handlers"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	KB             *handlers.KBHandler
	Chat           *handlers.ChatHandler
	Uploads        *handlers.UploadsHandler
	Admin          *handlers.AdminHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	// Page routes resolve the session leniently; the gate itself answers
	// with redirects, never errors.
	app.Get(auth.LoginRoute, cfg.AuthMiddleware.Resolve, cfg.Pages.Login)
	app.Get("/overview", cfg.AuthMiddleware.Resolve, auth.GuardPage(domain.RoleAdmin), cfg.Pages.Overview)
	app.Get("/workspace", cfg.AuthMiddleware.Resolve, auth.GuardPage(domain.RoleAgent), cfg.Pages.Workspace)
	app.Get("/dashboard", cfg.AuthMiddleware.Resolve, auth.GuardPage(domain.RoleCustomer), cfg.Pages.Dashboard)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", cfg.Tickets.UpdateAssignee)
	tickets.Post("/:id/replies", cfg.Tickets.AddReply)

	staffOnly := auth.RequireRole(domain.RoleAdmin, domain.RoleAgent)

	kb := api.Group("/kb")
	// "recent" registers before ":id" so it is not swallowed by the param route.
	kb.Get("/articles/recent", cfg.KB.RecentArticles)
	kb.Get("/articles/:id", cfg.KB.GetArticle)
	kb.Post("/articles", staffOnly, cfg.KB.CreateArticle)
	kb.Put("/articles/:id", staffOnly, cfg.KB.UpdateArticle)
	kb.Delete("/articles/:id", staffOnly, cfg.KB.DeleteArticle)
	kb.Get("/categories", cfg.KB.ListCategories)
	kb.Post("/categories", staffOnly, cfg.KB.CreateCategory)
	kb.Post("/generate-embedding", staffOnly, cfg.KB.GenerateEmbedding)

	chat := api.Group("/chat")
	chat.Post("", cfg.Chat.Assemble)
	chat.Post("/generate-embedding", cfg.Chat.GenerateEmbedding)

	api.Post("/uploads/:kind", cfg.Uploads.Upload)
	api.Post("/storage/setup", auth.RequireRole(domain.RoleAdmin), cfg.Uploads.Setup)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Patch("/users/:id/role", cfg.Admin.ChangeRole)
	admin.Post("/tags", cfg.Admin.CreateTag)
	admin.Get("/tags", cfg.Admin.ListTags)
}
