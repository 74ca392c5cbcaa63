package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/api/handlers"
	"github.com/paperchat-ai/paperchat/internal/api/middleware"
)

type RouterConfig struct {
	// FallbackAPIKey is the server-configured backend credential used when
	// a request carries no Authorization header.
	FallbackAPIKey string
	// MaxUploadBytes caps document uploads; the body limit adds headroom
	// for multipart framing.
	MaxUploadBytes int64

	UploadHandler  *handlers.UploadHandler
	ChatHandler    *handlers.ChatHandler
	SessionHandler *handlers.SessionHandler
}

const multipartOverhead int64 = 1 << 20

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(cfg.MaxUploadBytes + multipartOverhead))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Credential(cfg.FallbackAPIKey))

		r.Route("/upload", func(r chi.Router) {
			r.Post("/pdf", cfg.UploadHandler.Upload)
			r.Get("/pdf/{id}/status", cfg.UploadHandler.Status)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/message", cfg.ChatHandler.Message)
			r.Post("/stream", cfg.ChatHandler.Stream)
		})

		r.Delete("/sessions/{id}", cfg.SessionHandler.Clear)
	})

	return r
}
