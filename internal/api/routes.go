package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/voidterrain/terrain/internal/transport"
)

// SetupRoutes wires the HTTP request_chunk/health surface alongside
// the websocket subscription endpoint served by hub.
func SetupRoutes(handler *Handler, hub *transport.Hub) *chi.Mux {
	r := chi.NewRouter()

	for _, mw := range SetupMiddleware() {
		r.Use(mw)
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", handler.HealthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chunks/{x}/{z}/request", handler.RequestChunk)
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		hub.ServeWS(w, req)
	})

	return r
}
