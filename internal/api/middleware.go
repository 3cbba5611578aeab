package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logistics-service/internal/api/handlers"
	"logistics-service/internal/auth"
	"logistics-service/internal/platform/obs"
)

// statusWriter captures the final HTTP status code and number of bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestIDMiddleware assigns every request an id, echoed in X-Request-ID.
// An id sent by the client is kept.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		obs.Logger(r.Context()).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	})
}

// bearerMiddleware authenticates /api/ requests carrying an access token.
// A present but invalid token is rejected outright.
func bearerMiddleware(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(r.URL.Path, "/api/") || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				handlers.Problem(w, r, http.StatusUnauthorized, "authorization header must be: Bearer <token>")
				return
			}

			u, err := a.UserForAccessToken(r.Context(), strings.TrimSpace(token))
			if errors.Is(err, auth.ErrInvalidToken) {
				handlers.Problem(w, r, http.StatusUnauthorized, "given token not valid for any token type")
				return
			}
			if err != nil {
				obs.Logger(r.Context()).Error("token lookup failed", zap.Error(err))
				handlers.Problem(w, r, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := auth.WithTokenAuth(auth.WithUser(r.Context(), u))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// csrfMiddleware rejects unsafe /api/ requests authenticated by a session
// cookie unless they carry the session's CSRF token. HTML forms check the
// token themselves.
func csrfMiddleware(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if safeMethod(r.Method) || !strings.HasPrefix(r.URL.Path, "/api/") ||
				auth.UserFrom(ctx) == nil || auth.TokenAuthenticated(ctx) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get(auth.CSRFHeader) == "" || !sessions.CheckCSRF(r) {
				handlers.Problem(w, r, http.StatusForbidden, "CSRF token missing or incorrect")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}
