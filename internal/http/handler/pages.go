package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"valentine/internal/acceptflow"
	"valentine/internal/auth"
	"valentine/internal/valentine"
)

type PageHandler struct {
	Pages   *valentine.Service
	Flows   *acceptflow.Registry
	JWT     *auth.JWT
	BaseURL string
	Logger  *zap.Logger
}

type createPageReq struct {
	Question        string   `json:"question"`
	BeggingMessages []string `json:"begging_messages"`
	FinalMessage    string   `json:"final_message"`
	SocialLabel     string   `json:"social_label"`
	SocialLink      string   `json:"social_link"`
	SenderName      string   `json:"sender_name"`
	CreatorEmail    string   `json:"creator_email"`
	Theme           string   `json:"theme"`
}

type pageDTO struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	BeggingMessages []string  `json:"begging_messages"`
	FinalMessage    string    `json:"final_message"`
	SocialLabel     *string   `json:"social_label"`
	SocialLink      *string   `json:"social_link"`
	SenderName      *string   `json:"sender_name"`
	Theme           string    `json:"theme"`
	CreatedAt       time.Time `json:"created_at"`
	State           string    `json:"state"`
	Accepted        bool      `json:"accepted"`
	ScreenshotURL   *string   `json:"screenshot_url"`
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Pages.CreatePage(r.Context(), valentine.CreatePageInput{
		Question:        req.Question,
		BeggingMessages: req.BeggingMessages,
		FinalMessage:    req.FinalMessage,
		SocialLabel:     req.SocialLabel,
		SocialLink:      req.SocialLink,
		SenderName:      req.SenderName,
		CreatorEmail:    req.CreatorEmail,
		Theme:           req.Theme,
	})
	if err != nil {
		if errors.Is(err, valentine.ErrInvalidPage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("create page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	token, err := h.JWT.Sign(p.ID)
	if err != nil {
		h.Logger.Error("sign owner token", zap.String("page_id", p.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          p.ID,
		"url":         strings.TrimRight(h.BaseURL, "/") + "/v/" + p.ID,
		"owner_token": token,
	})
}

func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Pages.GetPage(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, id, err)
		return
	}
	flow, err := h.Flows.Get(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, id, err)
		return
	}

	dto := pageDTO{
		ID:              p.ID,
		Question:        p.Question,
		BeggingMessages: append([]string{}, p.BeggingMessages...),
		FinalMessage:    p.FinalMessage,
		SocialLabel:     p.SocialLabel,
		SocialLink:      p.SocialLink,
		SenderName:      p.SenderName,
		Theme:           p.Theme,
		CreatedAt:       p.CreatedAt,
		State:           flow.State().String(),
		Accepted:        flow.State() == acceptflow.Accepted,
	}
	if u := flow.ImageURL(); u != "" {
		dto.ScreenshotURL = &u
	}
	writeJSON(w, http.StatusOK, dto)
}

type acceptReq struct {
	ReceiverName *string `json:"receiver_name"`
}

func (h *PageHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req acceptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.ReceiverName != nil && strings.TrimSpace(*req.ReceiverName) == "" {
		req.ReceiverName = nil
	}

	flow, err := h.Flows.Get(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, id, err)
		return
	}

	started := flow.Accept(r.Context(), req.ReceiverName)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"state":   flow.State().String(),
		"started": started,
	})
}

// Artifact serves the screenshot of an accepted page. Before acceptance
// there is nothing to save and the reveal must stay hidden.
func (h *PageHandler) Artifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flow, err := h.Flows.Get(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, id, err)
		return
	}
	if flow.State() != acceptflow.Accepted {
		writeError(w, http.StatusConflict, "not accepted yet")
		return
	}

	err = flow.Download(r.Context(), &httpSaver{w: w, r: r})
	if errors.Is(err, acceptflow.ErrNoArtifact) {
		writeError(w, http.StatusServiceUnavailable, "screenshot unavailable")
		return
	}
	if err != nil {
		h.Logger.Warn("download artifact", zap.String("page_id", id), zap.Error(err))
	}
}

// Status is the owner's view: whether and when the page was accepted.
func (h *PageHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PageIDFromContext(r.Context())

	if _, err := h.Pages.GetPage(r.Context(), id); err != nil {
		h.lookupFailed(w, id, err)
		return
	}
	ev, err := h.Pages.GetAcceptance(r.Context(), id)
	if err != nil {
		h.Logger.Error("get acceptance", zap.String("page_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := map[string]any{
		"page_id":        id,
		"accepted":       ev != nil,
		"clicked_at":     nil,
		"screenshot_url": nil,
	}
	if ev != nil {
		out["clicked_at"] = ev.ClickedAt
		out["screenshot_url"] = ev.ScreenshotURL
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PageHandler) lookupFailed(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, valentine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	h.Logger.Error("load page", zap.String("page_id", id), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server error")
}

// httpSaver answers a download request: a redirect for stored images,
// the PNG itself otherwise.
type httpSaver struct {
	w http.ResponseWriter
	r *http.Request
}

func (s *httpSaver) SaveURL(url, _ string) error {
	http.Redirect(s.w, s.r, url, http.StatusFound)
	return nil
}

func (s *httpSaver) SaveBytes(data []byte, filename string) error {
	s.w.Header().Set("Content-Type", "image/png")
	s.w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write(data)
	return err
}
