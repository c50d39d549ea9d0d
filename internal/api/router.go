package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"pagecraft.ai/pagecraft/internal/config"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(config.AppConfig.TrustedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Published sites are world-readable
		r.Get("/project/published", apiHandler.GetPublishedProjectsHandler)
		r.Get("/project/published/{projectID}", apiHandler.GetPublishedProjectCodeHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			// User routes
			r.Get("/user/credits", apiHandler.GetCreditsHandler)
			r.Get("/user/purchase-credits", apiHandler.PurchaseCreditsHandler)
			r.Post("/user/project", apiHandler.CreateProjectHandler)
			r.Get("/user/project/{projectID}", apiHandler.GetProjectHandler)
			r.Get("/user/projects", apiHandler.ListProjectsHandler)
			r.Get("/user/publish-toggle/{projectID}", apiHandler.TogglePublishHandler)

			// Project routes
			r.Post("/project/revision/{projectID}", apiHandler.MakeRevisionHandler)
			r.Put("/project/save/{projectID}", apiHandler.SaveProjectHandler)
			r.Get("/project/rollback/{projectID}/{versionID}", apiHandler.RollbackHandler)
			r.Get("/project/preview/{projectID}", apiHandler.GetProjectPreviewHandler)
			r.Delete("/project/{projectID}", apiHandler.DeleteProjectHandler)
		})
	})

	return r
}
