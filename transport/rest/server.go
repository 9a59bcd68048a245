package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the REST routes. Extra handlers such as the websocket endpoint are mounted by the caller.
func NewRouter(logger *slog.Logger, game gameUseCase) chi.Router {
	h := newHandlers(logger, game)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)
		r.Post("/ai-move", h.aiMove)
		r.Post("/ai/move", h.aiMove)
		r.Post("/probability", h.probability)
		r.Post("/tournament/result", h.tournamentResult)

		r.Post("/sessions", h.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.closeSession)
			r.Post("/match", h.startMatch)
			r.Post("/moves", h.makeMove)
			r.Post("/next", h.nextRound)
		})
	})

	return r
}

func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}
