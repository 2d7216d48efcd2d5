package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperdesk/paperdesk/internal/api"
	"github.com/paperdesk/paperdesk/internal/api/handlers"
	"github.com/paperdesk/paperdesk/internal/api/middleware"
)

type RouterConfig struct {
	RecommendationHandler *handlers.RecommendationHandler
	BehaviorHandler       *handlers.BehaviorHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", cfg.RecommendationHandler.List)
			r.Post("/generate", cfg.RecommendationHandler.Generate)
			r.Put("/{id}/feedback", cfg.RecommendationHandler.UpdateFeedback)
		})

		r.Get("/documents/related", cfg.RecommendationHandler.Related)
		r.Post("/behaviors", cfg.BehaviorHandler.Record)
		r.Get("/behaviors", cfg.BehaviorHandler.List)
	})

	return r
}
