package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"hardcore-quiz-service/internal/logger"
)

type userKey struct{}

func userFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userKey{}).(string)
	return userID
}

// requestLogger stores a request-scoped logger in the context and logs
// completion with status and timing.
func requestLogger(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.NewContext(r.Context(), log)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{"status", status, "bytes", ww.BytesWritten(), "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case status >= 500:
				log.Error("request completed with server error", fields...)
			case status >= 400:
				log.Warn("request completed with client error", fields...)
			default:
				log.Info("request completed", fields...)
			}
		})
	}
}

// authenticateWith rejects requests that auth cannot tie to a user.
func (h *Handler) authenticateWith(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.Authenticate(r)
			if err != nil {
				writeError(w, r, h.log, err)
				return
			}
			ctx := context.WithValue(r.Context(), userKey{}, userID)
			log := logger.FromContext(ctx, h.log).With("user_id", userID)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, log)))
		})
	}
}
