package shared

import (
	"context"
	"log/slog"
	"net/http"
)

type responseWriterWithCommit struct {
	http.ResponseWriter
	sess          *Session
	manager       *SessionManager
	logger        *slog.Logger
	ctx           context.Context
	headerWritten bool
}

func (w *responseWriterWithCommit) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		if err := w.manager.Commit(w.ctx, w.ResponseWriter, w.sess); err != nil {
			w.logger.Error("commit session", slog.Any("error", err))
			statusCode = http.StatusInternalServerError
			w.ResponseWriter.Header().Del("Location")
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWithCommit) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func (w *responseWriterWithCommit) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Middleware loads the session into the request context and commits it
// right before the response header is written.
func (sm *SessionManager) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := sm.Load(ctx, r)
			if err != nil {
				logger.Error("failed to load session", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx = ContextWithSession(ctx, sess)

			wrapped := &responseWriterWithCommit{
				ResponseWriter: w,
				sess:           sess,
				manager:        sm,
				logger:         logger,
				ctx:            ctx,
			}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			if !wrapped.headerWritten {
				wrapped.WriteHeader(http.StatusOK)
			}
		})
	}
}
