package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"valentine/internal/acceptflow"
	"valentine/internal/card"
	"valentine/internal/valentine"
)

type CardHandler struct {
	Pages  *valentine.Service
	Flows  *acceptflow.Registry
	Logger *zap.Logger
}

// Show renders the card. ?state=accepted forces the reveal, which is what
// the rasterizer asks for.
func (h *CardHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Pages.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, valentine.ErrNotFound) {
			http.Error(w, "page not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("load page", zap.String("page_id", id), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	accepted := r.URL.Query().Get("state") == "accepted"
	if !accepted {
		flow, err := h.Flows.Get(r.Context(), id)
		if err != nil {
			h.Logger.Error("load flow", zap.String("page_id", id), zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		accepted = flow.State() == acceptflow.Accepted
	}

	var buf bytes.Buffer
	if err := card.Render(&buf, card.NewView(p, 0, accepted)); err != nil {
		h.Logger.Error("render card", zap.String("page_id", id), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
