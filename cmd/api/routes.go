package main

import (
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/blocks"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/messages"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/portfolio"
	"portfolio-backend/internal/skills"
	"portfolio-backend/internal/uploads"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type application struct {
	cfg     *config.Config
	log     *slog.Logger
	tokens  *auth.Manager
	limiter middleware.Limiter

	server    *handlers.Server
	portfolio *portfolio.Handler
	blocks    *blocks.Handler
	skills    *skills.Handler
	messages  *messages.Handler
	uploads   *uploads.Handler
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(app.log))
	r.Use(middleware.CORS(app.cfg.FrontendOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Served under both /api/... and /api/v1/...
	r.Route("/api", app.apiRoutes)
	r.Route("/api/v1", app.apiRoutes)

	if app.cfg.AdminDistDir != "" {
		pages := middleware.AdminPages("/admin/login", app.tokens)(handlers.AdminPages("/admin", app.cfg.AdminDistDir))
		r.Handle("/admin", pages)
		r.Handle("/admin/*", pages)
	}

	return r
}

func (app *application) apiRoutes(api chi.Router) {
	// Uploads stream files and may exceed the JSON timeout.
	api.Get("/uploads/*", app.uploads.Serve)

	api.Group(func(public chi.Router) {
		public.Use(chiMiddleware.Timeout(30 * time.Second))
		public.Get("/portfolio", app.portfolio.PublicList)
		public.Get("/portfolio/{slug}", app.portfolio.PublicGetBySlug)
		public.Get("/portfolio/{slug}/content", app.portfolio.PublicContent)
		public.Get("/skills", app.skills.List)
		public.With(middleware.RateLimit(app.limiter, "contact", app.log)).Post("/contact", app.messages.Create)
	})

	api.Route("/admin", func(admin chi.Router) {
		admin.Post("/login", app.server.AdminLogin)
		admin.Post("/refresh", app.server.AdminRefresh)
		admin.Post("/logout", app.server.AdminLogout)

		admin.Group(func(protected chi.Router) {
			protected.Use(middleware.AdminAuth(app.cfg.AdminAPIKey, app.tokens))

			protected.Get("/stats", app.server.AdminStats)

			protected.Get("/portfolio", app.portfolio.AdminList)
			protected.Post("/portfolio", app.portfolio.AdminCreate)
			protected.Put("/portfolio/reorder", app.portfolio.AdminReorder)
			protected.Get("/portfolio/{id}", app.portfolio.AdminGet)
			protected.Put("/portfolio/{id}", app.portfolio.AdminUpdate)
			protected.Delete("/portfolio/{id}", app.portfolio.AdminDelete)
			protected.Put("/portfolio/{id}/publish", app.portfolio.AdminPublish)
			protected.Post("/portfolio/{id}/media", app.portfolio.AdminAddMedia)
			protected.Delete("/portfolio/{id}/media/{mediaId}", app.portfolio.AdminDeleteMedia)

			protected.Get("/portfolio/{id}/blocks", app.blocks.List)
			protected.Post("/portfolio/{id}/blocks", app.blocks.Create)
			protected.Put("/portfolio/{id}/blocks", app.blocks.Replace)
			protected.Delete("/portfolio/{id}/blocks", app.blocks.Delete)
			protected.Get("/block-types", app.blocks.Types)
			protected.Post("/blocks/preview", app.blocks.Preview)

			protected.Get("/skills", app.skills.List)
			protected.Post("/skills", app.skills.AdminCreate)
			protected.Put("/skills/reorder", app.skills.AdminReorder)
			protected.Put("/skills/{id}", app.skills.AdminUpdate)
			protected.Delete("/skills/{id}", app.skills.AdminDelete)

			protected.Get("/messages", app.messages.AdminList)
			protected.Patch("/messages/{id}", app.messages.AdminUpdate)
			protected.Delete("/messages/{id}", app.messages.AdminDelete)

			protected.Post("/upload", app.uploads.Upload)
			protected.Post("/upload/batch", app.uploads.UploadBatch)
		})
	})
}
