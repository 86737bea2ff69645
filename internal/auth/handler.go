package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestion-users/gestion-users/internal/observability"
	"github.com/gestion-users/gestion-users/internal/platform/httpx"
	"github.com/gestion-users/gestion-users/internal/shared"
	"github.com/gestion-users/gestion-users/internal/view"
)

const (
	loginPath        = "/login"
	loginFailurePath = "/login?error=1"
	landingPath      = "/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	pages          *view.Engine
	sessionManager *shared.SessionManager
	metrics        *observability.Metrics
}

// NewHandler constructs a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Engine, sessions *shared.SessionManager, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		pages:          pages,
		sessionManager: sessions,
		metrics:        metrics,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(loginPath, h.showLogin)
	r.Post(loginPath, h.handleLogin)
	r.Get("/logout", h.handleLogout)
}

// RequireUser redirects to the login page unless the session carries a
// user. API routes get the same redirect.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.SessionFromContext(r.Context()).User()
		if !ok {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUser(r.Context(), user)))
	})
}

type loginForm struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Render(w, view.PageLogin); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readLoginForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Login, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.metrics.ObserveLogin(observability.LoginFailure)
			http.Redirect(w, r, loginFailurePath, http.StatusFound)
			return
		}
		h.metrics.ObserveLogin(observability.LoginError)
		h.logger.Error("login lookup", slog.Any("error", err))
		http.Error(w, "Erreur serveur", http.StatusInternalServerError)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, "Erreur serveur", http.StatusInternalServerError)
		return
	}
	h.sessionManager.Regenerate(sess)
	sess.SetUser(user.SessionUser())
	h.metrics.ObserveLogin(observability.LoginSuccess)
	h.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("role", user.Role))
	http.Redirect(w, r, landingPath, http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := h.sessionManager.Destroy(r.Context(), sess); err != nil {
		h.logger.Error("destroy session", slog.Any("error", err))
		http.Error(w, "Erreur serveur", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}

func readLoginForm(r *http.Request) (loginForm, error) {
	var form loginForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := httpx.DecodeJSON(r, &form)
		return form, err
	}
	if err := r.ParseForm(); err != nil {
		return form, err
	}
	form.Login = r.PostFormValue("login")
	form.Password = r.PostFormValue("password")
	return form, nil
}
