package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gestion-users/gestion-users/internal/platform/httpx"
	"github.com/gestion-users/gestion-users/internal/shared"
	"github.com/gestion-users/gestion-users/internal/view"
)

const (
	msgServerError    = "Erreur serveur"
	msgRequired       = "Tous les champs sont obligatoires"
	msgDuplicateLogin = "Ce login existe déjà"
	msgBadRequest     = "Requête invalide"
	msgInvalidID      = "Identifiant invalide"
	msgCreated        = "Utilisateur créé"
	msgUpdated        = "Utilisateur mis à jour"
	msgDeleted        = "Utilisateur supprimé"
	msgStoreDown      = "Erreur de connexion à la base de données"
)

// ServicePort is the behaviour the HTTP layer needs from Service.
type ServicePort interface {
	Validate(in Input) error
	ListUsers(ctx context.Context, search string) ([]User, error)
	CreateUser(ctx context.Context, in Input) error
	UpdateUser(ctx context.Context, id int64, in Input) error
	DeleteUser(ctx context.Context, id int64) error
}

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service ServicePort
	pages   *view.Engine
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service ServicePort, pages *view.Engine) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers the JSON API under the current route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
	r.Put("/{id}", h.updateUser)
	r.Delete("/{id}", h.deleteUser)
}

// ShowPage serves the users management page.
func (h *Handler) ShowPage(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Render(w, view.PageUsers); err != nil {
		h.logger.Error("render users page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// TestDB dumps every record; it is left unauthenticated for debugging.
func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), "")
	if err != nil {
		h.logger.Error("test db", slog.Any("error", err))
		http.Error(w, msgStoreDown, http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	in, err := bindInput(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := h.service.CreateUser(r.Context(), in); err != nil {
		h.respondError(w, r, "create user", err)
		return
	}
	h.audit(r, "user created", slog.String("login", in.Login))
	httpx.Message(w, http.StatusCreated, msgCreated)
}

// updateUser reports missing fields before an unparsable id.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	in, err := bindInput(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := h.service.Validate(in); err != nil {
		h.respondError(w, r, "update user", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, "update user", err)
		return
	}
	if err := h.service.UpdateUser(r.Context(), id, in); err != nil {
		h.respondError(w, r, "update user", err)
		return
	}
	h.audit(r, "user updated", slog.Int64("id", id))
	httpx.Message(w, http.StatusOK, msgUpdated)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, "delete user", err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, r, "delete user", err)
		return
	}
	h.audit(r, "user deleted", slog.Int64("id", id))
	httpx.Message(w, http.StatusOK, msgDeleted)
}

func (h *Handler) audit(r *http.Request, msg string, attrs ...any) {
	if actor, ok := shared.UserFromContext(r.Context()); ok {
		attrs = append(attrs, slog.Int64("actor_id", actor.ID))
	}
	h.logger.Info(msg, attrs...)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.Error(w, status, msgServerError)
		return
	}
	h.logger.Warn(op+" rejected", slog.Any("error", err))
	switch {
	case errors.Is(err, shared.ErrConflict):
		httpx.Error(w, status, msgDuplicateLogin)
	case errors.Is(err, ErrInvalidID):
		httpx.Error(w, status, msgInvalidID)
	default:
		httpx.Error(w, status, msgRequired)
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// bindInput reads the payload from a JSON body, or from form values when the
// request is form encoded. An empty JSON body yields an empty Input.
func bindInput(r *http.Request) (Input, error) {
	var in Input
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return in, err
		}
		in = Input{
			Prenom:   r.PostFormValue("prenom"),
			Nom:      r.PostFormValue("nom"),
			Login:    r.PostFormValue("login"),
			Password: r.PostFormValue("password"),
			Role:     r.PostFormValue("role"),
		}
		return in, nil
	}
	if err := httpx.DecodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		return in, err
	}
	return in, nil
}
