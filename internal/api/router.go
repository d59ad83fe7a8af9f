package api

import (
	"io/fs"
	"net/http"

	"github.com/Rrens/datachat/internal/api/handler"
	customMiddleware "github.com/Rrens/datachat/internal/api/middleware"
	"github.com/Rrens/datachat/internal/config"
	"github.com/Rrens/datachat/internal/llm"
	"github.com/Rrens/datachat/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, sess *session.Session, llmRouter *llm.Router, webFS fs.FS) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	datasetHandler := handler.NewDatasetHandler(sess, cfg.Dataset.UploadDir, cfg.Dataset.MaxUploadMB)
	visualizeHandler := handler.NewVisualizeHandler(sess, cfg.Plots.OutputDir)
	insightHandler := handler.NewInsightHandler(sess)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

		r.Route("/dataset", func(r chi.Router) {
			r.Post("/upload", datasetHandler.Upload)
			r.Post("/load", datasetHandler.Load)
			r.Get("/", datasetHandler.Preview)
			r.Delete("/", datasetHandler.Clear)
		})

		r.Route("/visualizations", func(r chi.Router) {
			r.Get("/plan", visualizeHandler.Plan)
			r.Post("/", visualizeHandler.Generate)
		})

		r.Post("/analysis", insightHandler.Analyze)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", insightHandler.Chat)
			r.Get("/", insightHandler.History)
		})
	})

	// Generated plot images
	r.Handle("/plots/*", http.StripPrefix("/plots/", http.FileServer(http.Dir(cfg.Plots.OutputDir))))

	// Single-page web UI
	r.Handle("/*", http.FileServer(http.FS(webFS)))

	return r
}
