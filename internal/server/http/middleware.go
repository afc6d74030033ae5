package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/identity"
)

// accessLog logs one line per request: metadata only, never bodies.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info("http",
				zap.String("method", r.Method),
				zap.String("route", routeLabel(r)),
				zap.Int("status", statusOf(ww)),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// authenticate attaches the caller id when an Authorization header is present.
// Requests without one stay anonymous; a bad credential is rejected outright.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r)
			return
		}
		tok, err := identity.BearerToken(h)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detailBody{Detail: "invalid authorization header"})
			return
		}
		id, err := s.tokens.Verify(tok)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detailBody{Detail: "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), id)))
	})
}

// requireAuth rejects anonymous callers.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.UserIDFromCtx(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, detailBody{Detail: "authentication credentials were not provided"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// caller returns the authenticated user id, or identity.Anonymous.
func caller(r *http.Request) int64 {
	id, _ := identity.UserIDFromCtx(r.Context())
	return id
}
