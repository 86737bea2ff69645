package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionUser is the projection of a user record captured at login.
// It is never refreshed if the underlying record changes afterwards.
type SessionUser struct {
	ID     int64  `json:"id"`
	Prenom string `json:"prenom"`
	Nom    string `json:"nom"`
	Role   string `json:"role"`
}

// SessionManager orchestrates cookie based sessions backed by a SessionStore.
type SessionManager struct {
	store      SessionStore
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID        string
	user      *SessionUser
	previous  string
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	User *SessionUser `json:"user,omitempty"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(store SessionStore, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads the session referenced by the request cookie, or starts a new
// empty one when the cookie is missing, tampered with or expired.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	id, ok := sm.verify(cookie.Value)
	if !ok {
		return sm.newSession(), nil
	}

	payload, err := sm.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return sm.newSession(), nil
		}
		return nil, fmt.Errorf("shared: load session: %w", err)
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}

	sess := sm.newSession()
	sess.ID = id
	sess.user = stored.User
	sess.isNew = false
	sess.dirty = false
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed. New
// sessions without any data are never stored and get no cookie.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}

	if !sess.dirty {
		return nil
	}
	if sess.isNew && sess.user == nil {
		return nil
	}

	if sess.previous != "" {
		if err := sm.store.Delete(ctx, sess.previous); err != nil {
			return fmt.Errorf("shared: drop previous session: %w", err)
		}
		sess.previous = ""
	}

	data, err := json.Marshal(sessionPayload{User: sess.user})
	if err != nil {
		return err
	}
	if err := sm.store.Save(ctx, sess.ID, data, sm.ttl); err != nil {
		return fmt.Errorf("shared: save session: %w", err)
	}
	sess.dirty = false
	sess.isNew = false

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sm.sign(sess.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return nil
}

// Destroy removes the session from the store right away. Destroying a
// session that was never stored, or twice, is not an error.
func (sm *SessionManager) Destroy(ctx context.Context, sess *Session) error {
	if sess == nil || sess.destroyed {
		return nil
	}
	if !sess.isNew {
		if err := sm.store.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("shared: destroy session: %w", err)
		}
	}
	if sess.previous != "" {
		if err := sm.store.Delete(ctx, sess.previous); err != nil {
			return fmt.Errorf("shared: destroy session: %w", err)
		}
		sess.previous = ""
	}
	sess.destroyed = true
	sess.user = nil
	return nil
}

// Regenerate moves the session to a fresh id; the old entry is dropped on
// the next commit.
func (sm *SessionManager) Regenerate(sess *Session) {
	if sess == nil {
		return
	}
	if !sess.isNew && sess.previous == "" {
		sess.previous = sess.ID
	}
	sess.ID = sm.generateSessionID()
	sess.isNew = true
	sess.dirty = true
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// SetUser associates the session with an authenticated user.
func (s *Session) SetUser(user SessionUser) {
	s.user = &user
	s.dirty = true
}

// User returns the session-user, if any.
func (s *Session) User() (SessionUser, bool) {
	if s == nil || s.user == nil {
		return SessionUser{}, false
	}
	return *s.user, true
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:    sm.generateSessionID(),
		isNew: true,
	}
}

func (sm *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verify(value string) (string, bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 {
		return "", false
	}
	id := value[:idx]
	if !hmac.Equal([]byte(sm.sign(id)), []byte(value)) {
		return "", false
	}
	return id, true
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
