package handlers

import (
	"net/http"

	"familytravel/internal/metrics"
)

// NewRouter wires every route and wraps the mux with request logging
func NewRouter(h *TrackerHandler, m *Middleware, staticPath string) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticPath))))

	// Operational
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Landing and login
	mux.HandleFunc("GET /{$}", m.LoadSession(h.Start))
	mux.HandleFunc("POST /home", m.LoadSession(m.RateLimit(m.CSRFProtect(h.Login))))
	mux.HandleFunc("POST /logout", m.LoadSession(m.CSRFProtect(h.Logout)))

	// Identified routes
	mux.HandleFunc("GET /home", m.LoadSession(m.RequireIdentity(h.Home)))
	mux.HandleFunc("POST /add", m.LoadSession(m.RequireIdentity(m.CSRFProtect(h.AddCountry))))
	mux.HandleFunc("POST /remove", m.LoadSession(m.RequireIdentity(m.CSRFProtect(h.RemoveCountry))))
	mux.HandleFunc("POST /user", m.LoadSession(m.RequireIdentity(m.CSRFProtect(h.User))))
	mux.HandleFunc("POST /new", m.LoadSession(m.RequireIdentity(m.CSRFProtect(h.NewMember))))

	return Logging(mux)
}
