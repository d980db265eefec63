// Package api exposes the Chunk Service's request_chunk procedure and
// a health check over HTTP, for clients that call it directly instead
// of (or in addition to) the websocket transport.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/coords"
)

type Handler struct {
	chunks *chunkservice.Service
}

func NewHandler(chunks *chunkservice.Service) *Handler {
	return &Handler{chunks: chunks}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "voidterrain",
	})
}

// RequestChunk invokes request_chunk(coord). A procedure failure here
// is informational only — the streaming coordinator treats any outcome
// as "retry later if data not observed" — so this still returns 200 on
// failure, with the error in the body for operator visibility.
func (h *Handler) RequestChunk(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.ParseInt(chi.URLParam(r, "x"), 10, 32)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid chunk x coordinate", err)
		return
	}
	z, err := strconv.ParseInt(chi.URLParam(r, "z"), 10, 32)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid chunk z coordinate", err)
		return
	}
	coord := coords.New(int32(x), int32(z))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.chunks.RequestChunk(ctx, coord); err != nil {
		log.Error("request_chunk failed", "coord", coord.String(), "error", err)
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]any{"ok": false, "error": "request_chunk failed, retry later"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{"ok": true})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		log.Error("api error", "error", err, "message", message, "status", status)
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"error": message})
}
