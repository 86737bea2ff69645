package shared

import "context"

type sessionContextKey struct{}

type userContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithUser stores the authenticated session-user in context.
func ContextWithUser(ctx context.Context, user SessionUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the session-user placed by the auth gate.
func UserFromContext(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(SessionUser)
	return user, ok
}
