package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"valentine/internal/notify"
)

type NotifyHandler struct {
	Svc    *notify.Service
	Logger *zap.Logger
}

func (h *NotifyHandler) NotifyYes(w http.ResponseWriter, r *http.Request) {
	var req notify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	res, err := h.Svc.Notify(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, notify.ErrMissingPageID):
		writeError(w, http.StatusBadRequest, "Missing pageId")
	case errors.Is(err, notify.ErrPageNotFound):
		writeError(w, http.StatusNotFound, "Page not found")
	default:
		h.Logger.Error("notify-yes", zap.String("page_id", req.PageID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
