package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"valentine/internal/acceptflow"
	"valentine/internal/auth"
	"valentine/internal/config"
	"valentine/internal/http/handler"
	mw "valentine/internal/http/middleware"
	"valentine/internal/notify"
	"valentine/internal/valentine"
)

type Deps struct {
	Pages  *valentine.Service
	Flows  *acceptflow.Registry
	Notify *notify.Service
	JWT    *auth.JWT
	Logger *zap.Logger

	// UploadDir is served under /uploads when set.
	UploadDir string
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	pages := &handler.PageHandler{Pages: d.Pages, Flows: d.Flows, JWT: d.JWT, BaseURL: cfg.PublicBaseURL, Logger: d.Logger}
	cards := &handler.CardHandler{Pages: d.Pages, Flows: d.Flows, Logger: d.Logger}
	notifyH := &handler.NotifyHandler{Svc: d.Notify, Logger: d.Logger}

	r.Route("/api", func(r chi.Router) {
		r.Post("/notify-yes", notifyH.NotifyYes)
		r.Get("/themes", handler.ListThemes)

		r.Post("/pages", pages.Create)
		r.Route("/pages/{id}", func(r chi.Router) {
			r.Get("/", pages.Get)
			r.Post("/accept", pages.Accept)
			r.Get("/artifact", pages.Artifact)
			r.With(auth.RequireOwner(d.JWT)).Get("/status", pages.Status)
		})
	})

	r.Get("/v/{id}", cards.Show)

	if d.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir)))
		r.Handle("/uploads/*", fs)
	}

	return r
}
