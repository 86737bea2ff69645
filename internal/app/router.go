package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gestion-users/gestion-users/internal/auth"
	"github.com/gestion-users/gestion-users/internal/observability"
	"github.com/gestion-users/gestion-users/internal/shared"
	"github.com/gestion-users/gestion-users/internal/users"
	"github.com/gestion-users/gestion-users/web"
)

const greeting = "Bonjour, le serveur de gestion des utilisateurs fonctionne !"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthHandler    *auth.Handler
	UsersHandler   *users.Handler
	Metrics        *observability.Metrics
	AccessLog      bool
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.AccessLog {
		r.Use(chimw.Logger)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(greeting))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/test-db", params.UsersHandler.TestDB)

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthHandler.RequireUser)
		r.Get("/users", params.UsersHandler.ShowPage)
		r.Route("/api/users", params.UsersHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
