package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/linkbio-service/internal/api/http/handlers"
	"github.com/spec-kit/linkbio-service/internal/auth"
	"github.com/spec-kit/linkbio-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Links   *handlers.LinksHandler
	Metrics *handlers.MetricsHandler
	AuthMW  *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Route policies mirror the platform's
// access model: public reads, owner-only profile submission, admin-or-owner
// QR refresh, admin-only content management.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/auth/register", cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Get("/auth/profile", cfg.AuthMW.RequireAuth(auth.AccessPolicy{}), cfg.Auth.Profile)

	api.Get("/users", cfg.Users.List)
	api.Get("/users/:handle", cfg.Users.Get)
	api.Put("/users/:handle/profile",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{RequiredRole: domain.RoleAdmin}),
		cfg.Users.UpdateProfile)
	api.Post("/users/:handle/profile",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{SelfAccess: &auth.SelfAccess{Param: "handle", Require: true}}),
		cfg.Users.SubmitProfile)
	api.Post("/users/:handle/qr",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{
			RequiredRole: domain.RoleAdmin,
			SelfAccess:   &auth.SelfAccess{Param: "handle"},
		}),
		cfg.Users.RefreshQR)

	api.Get("/users/:handle/links", cfg.Links.List)
	api.Post("/users/:handle/links",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{RequiredRole: domain.RoleAdmin}),
		cfg.Links.Create)
	api.Put("/users/:handle/links/:linkId",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{RequiredRole: domain.RoleAdmin}),
		cfg.Links.Update)
	api.Delete("/users/:handle/links/:linkId",
		cfg.AuthMW.RequireAuth(auth.AccessPolicy{RequiredRole: domain.RoleAdmin}),
		cfg.Links.Delete)

	api.Post("/metrics/links", cfg.Metrics.RecordLinkClick)
}
