package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"familytravel/internal/metrics"
	"familytravel/internal/security"
	"familytravel/internal/session"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	store       sessions.Store
	csrf        *security.CSRFGenerator
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(store sessions.Store, csrf *security.CSRFGenerator, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		store:       store,
		csrf:        csrf,
		rateLimiter: rateLimiter,
	}
}

// LoadSession puts the session id and active identity into the request
// context. Visitors without a session get one so forms can carry a CSRF token.
func (m *Middleware) LoadSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, session.CookieName)
		if err != nil {
			slog.Error("failed to load session", "error", err)
		}

		if sess.ID == "" {
			if err := sess.Save(r, w); err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to create session", err)
				return
			}
		}

		ctx := session.WithIdentity(r.Context(), sess.ID, session.Identity(sess))
		next(w, r.WithContext(ctx))
	}
}

// RequireIdentity redirects anonymous visitors to the landing page.
// Must run inside LoadSession.
func (m *Middleware) RequireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session.IdentityFrom(r.Context()).IsAnonymous() {
			http.Redirect(w, r, pathStart, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// CSRFProtect rejects state-changing requests without a valid token.
// Must run inside LoadSession.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
			return
		}

		sessionID := session.SessionIDFrom(r.Context())
		if !m.csrf.ValidateToken(sessionID, r.PostFormValue(security.CSRFFormField)) {
			slog.Warn("rejected request with invalid CSRF token", "path", r.URL.Path)
			http.Error(w, ErrForbidden, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.ClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token for the request's session, or "" when none
func (m *Middleware) CSRFToken(r *http.Request) string {
	token, err := m.csrf.GenerateToken(session.SessionIDFrom(r.Context()))
	if err != nil {
		return ""
	}
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Logging logs each request and records it in the HTTP metrics. It must wrap
// the ServeMux directly so the matched pattern is visible afterwards.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
