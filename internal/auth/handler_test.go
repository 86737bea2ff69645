package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-users/gestion-users/internal/shared"
	"github.com/gestion-users/gestion-users/internal/view"
	_ "github.com/gestion-users/gestion-users/testing"
)

type stubRepo struct {
	user  *User
	login string
	pass  string
	err   error
	calls int
}

func (s *stubRepo) FindByCredentials(ctx context.Context, login, password string) (*User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || login != s.login || password != s.pass {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

type fixture struct {
	router   http.Handler
	store    *shared.MemorySessionStore
	sessions *shared.SessionManager
}

func newFixture(t *testing.T, repo Repository) fixture {
	t.Helper()
	store := shared.NewMemorySessionStore()
	sessions := shared.NewSessionManager(store, "test_session", "secret", time.Hour, false)
	pages, err := view.NewEngine()
	require.NoError(t, err)
	handler := NewHandler(nil, NewService(repo), pages, sessions, nil)

	r := chi.NewRouter()
	r.Use(sessions.Middleware(nil))
	handler.MountRoutes(r)
	r.With(handler.RequireUser).Get("/users", func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user in context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("hello " + user.Prenom))
	})
	return fixture{router: r, store: store, sessions: sessions}
}

func (f fixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func loginRequest(login, password string) *http.Request {
	form := url.Values{}
	form.Set("login", login)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func yann() *stubRepo {
	return &stubRepo{
		user:  &User{ID: 1, Prenom: "Yann", Nom: "Le Goff", Login: "yann", Role: "admin"},
		login: "yann",
		pass:  "secret1",
	}
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t, &stubRepo{})
	rr := f.do(httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<form")
	assert.Nil(t, findCookie(rr, "test_session"))
}

func TestLoginSuccessGrantsAccess(t *testing.T) {
	f := newFixture(t, yann())

	rr := f.do(loginRequest("yann", "secret1"))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/users", rr.Header().Get("Location"))
	cookie := findCookie(rr, "test_session")
	require.NotNil(t, cookie)
	assert.Equal(t, 1, f.store.Len())

	page := f.do(httptest.NewRequest(http.MethodGet, "/users", nil), cookie)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Equal(t, "hello Yann", page.Body.String())
}

func TestLoginAcceptsJSON(t *testing.T) {
	f := newFixture(t, yann())
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"yann","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := f.do(req)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/users", rr.Header().Get("Location"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	cases := map[string][2]string{
		"wrong password": {"yann", "nope"},
		"wrong login":    {"yan", "secret1"},
		"case differs":   {"Yann", "secret1"},
		"empty":          {"", ""},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, yann())
			rr := f.do(loginRequest(creds[0], creds[1]))

			assert.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "/login?error=1", rr.Header().Get("Location"))
			assert.Nil(t, findCookie(rr, "test_session"))
			assert.Equal(t, 0, f.store.Len())
		})
	}
}

func TestLoginStoreFailure(t *testing.T) {
	f := newFixture(t, &stubRepo{err: errors.New("connection refused")})
	rr := f.do(loginRequest("yann", "secret1"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
	assert.Equal(t, 0, f.store.Len())
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	f := newFixture(t, yann())
	rr := f.do(httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t, yann())
	cookie := findCookie(f.do(loginRequest("yann", "secret1")), "test_session")
	require.NotNil(t, cookie)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/logout", nil), cookie)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Equal(t, 0, f.store.Len())
	cleared := findCookie(rr, "test_session")
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	page := f.do(httptest.NewRequest(http.MethodGet, "/users", nil), cookie)
	assert.Equal(t, http.StatusFound, page.Code)
	assert.Equal(t, "/login", page.Header().Get("Location"))
}

func TestLogoutWithoutSession(t *testing.T) {
	f := newFixture(t, yann())
	rr := f.do(httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestAuthenticateMapsErrors(t *testing.T) {
	svc := NewService(yann())
	_, err := svc.Authenticate(context.Background(), "yann", "bad")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	down := errors.New("down")
	svc = NewService(&stubRepo{err: down})
	_, err = svc.Authenticate(context.Background(), "yann", "secret1")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}
