package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/sessions"

	"familytravel/internal/models"
	"familytravel/internal/service"
	"familytravel/internal/session"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// TrackerHandler serves the landing, home and family member pages
type TrackerHandler struct {
	workflow     *service.WorkflowService
	store        sessions.Store
	middleware   *Middleware
	templates    *template.Template
	db           Pinger
	defaultColor string
}

// NewTrackerHandler creates a new tracker handler
func NewTrackerHandler(workflow *service.WorkflowService, store sessions.Store, middleware *Middleware, templates *template.Template, db Pinger, defaultColor string) *TrackerHandler {
	return &TrackerHandler{
		workflow:     workflow,
		store:        store,
		middleware:   middleware,
		templates:    templates,
		db:           db,
		defaultColor: defaultColor,
	}
}

// Start renders the landing form, or sends identified visitors home
func (h *TrackerHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !session.IdentityFrom(r.Context()).IsAnonymous() {
		http.Redirect(w, r, pathHome, http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "start.tmpl", StartViewData{
		Title:     "Family Travel Tracker",
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// Login identifies the visitor by name, creating a new family for new names
func (h *TrackerHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseLoginForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "start.tmpl", StartViewData{
			Title:     "Family Travel Tracker",
			CSRFToken: h.middleware.CSRFToken(r),
			Error:     err.Error(),
			Name:      r.PostFormValue("username"),
		})
		return
	}

	identity, err := h.workflow.Login(r.Context(), form.Name)
	if err != nil {
		slog.Error("failed to log in", "name", form.Name, "error", err)
		http.Redirect(w, r, pathStart, http.StatusSeeOther)
		return
	}

	if err := h.saveIdentity(w, r, identity); err != nil {
		slog.Error("failed to save session", "user_id", identity.UserID, "error", err)
		http.Redirect(w, r, pathStart, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, pathHome, http.StatusSeeOther)
}

// Home renders the active member's countries and the family tabs
func (h *TrackerHandler) Home(w http.ResponseWriter, r *http.Request) {
	identity := session.IdentityFrom(r.Context())

	data, err := h.workflow.Home(r.Context(), identity)
	if errors.Is(err, service.ErrUserNotFound) {
		slog.Warn("session refers to a missing user", "user_id", identity.UserID)
		h.clearSession(w, r)
		http.Redirect(w, r, pathStart, http.StatusSeeOther)
		return
	}
	if err != nil {
		// / redirects identified visitors here, so render it in place
		slog.Error("failed to load home", "user_id", identity.UserID, "error", err)
		h.render(w, http.StatusOK, "start.tmpl", StartViewData{
			Title:     "Family Travel Tracker",
			CSRFToken: h.middleware.CSRFToken(r),
			Error:     noticeMessages[NoticeError],
		})
		return
	}

	h.render(w, http.StatusOK, "home.tmpl", HomeViewData{
		Title:     "Family Travel Tracker",
		CSRFToken: h.middleware.CSRFToken(r),
		Current:   data.Current,
		Users:     data.Users,
		Countries: data.Countries,
		Total:     data.Total,
		Color:     data.Color,
		Notice:    noticeMessages[r.URL.Query().Get("notice")],
	})
}

// AddCountry records a visit for the active member
func (h *TrackerHandler) AddCountry(w http.ResponseWriter, r *http.Request) {
	form, err := parseCountryForm(r)
	if err != nil {
		redirectHome(w, r, NoticeInvalidCountry)
		return
	}

	identity := session.IdentityFrom(r.Context())
	_, err = h.workflow.RecordVisit(r.Context(), identity, form.Country)
	switch {
	case err == nil:
		redirectHome(w, r, "")
	case errors.Is(err, service.ErrCountryNotFound):
		redirectHome(w, r, NoticeNotFound)
	case errors.Is(err, service.ErrAlreadyVisited):
		redirectHome(w, r, NoticeAlreadyVisited)
	default:
		slog.Error("failed to record visit", "user_id", identity.UserID, "country", form.Country, "error", err)
		redirectHome(w, r, NoticeError)
	}
}

// RemoveCountry takes a country off the active member's list
func (h *TrackerHandler) RemoveCountry(w http.ResponseWriter, r *http.Request) {
	form, err := parseRemoveForm(r)
	if err != nil {
		redirectHome(w, r, NoticeNotRemoved)
		return
	}

	identity := session.IdentityFrom(r.Context())
	err = h.workflow.RemoveVisit(r.Context(), identity, form.CountryCode)
	switch {
	case err == nil:
		redirectHome(w, r, "")
	case errors.Is(err, service.ErrCountryNotFound):
		redirectHome(w, r, NoticeNotRemoved)
	default:
		slog.Error("failed to remove visit", "user_id", identity.UserID, "country_code", form.CountryCode, "error", err)
		redirectHome(w, r, NoticeError)
	}
}

// User either shows the new member form or switches the active member
func (h *TrackerHandler) User(w http.ResponseWriter, r *http.Request) {
	if wantsNewMemberForm(r) {
		h.render(w, http.StatusOK, "new.tmpl", NewMemberViewData{
			Title:        "Add Family Member",
			CSRFToken:    h.middleware.CSRFToken(r),
			DefaultColor: h.defaultColor,
		})
		return
	}

	form, err := parseSwitchForm(r)
	if err != nil {
		redirectHome(w, r, NoticeUnknownMember)
		return
	}

	current := session.IdentityFrom(r.Context())
	identity, err := h.workflow.SwitchMember(r.Context(), current, form.UserID)
	switch {
	case errors.Is(err, service.ErrNotFamilyMember), errors.Is(err, service.ErrUserNotFound):
		redirectHome(w, r, NoticeUnknownMember)
		return
	case err != nil:
		slog.Error("failed to switch member", "user_id", current.UserID, "target_id", form.UserID, "error", err)
		redirectHome(w, r, NoticeError)
		return
	}

	if err := h.saveIdentity(w, r, identity); err != nil {
		slog.Error("failed to save session", "user_id", identity.UserID, "error", err)
		redirectHome(w, r, NoticeError)
		return
	}
	redirectHome(w, r, "")
}

// NewMember adds a member to the active family and makes them active
func (h *TrackerHandler) NewMember(w http.ResponseWriter, r *http.Request) {
	form, err := parseMemberForm(r, h.defaultColor)
	if err != nil {
		h.render(w, http.StatusBadRequest, "new.tmpl", NewMemberViewData{
			Title:        "Add Family Member",
			CSRFToken:    h.middleware.CSRFToken(r),
			Error:        err.Error(),
			Name:         r.PostFormValue("name"),
			Color:        r.PostFormValue("color"),
			DefaultColor: h.defaultColor,
		})
		return
	}

	current := session.IdentityFrom(r.Context())
	identity, err := h.workflow.AddMember(r.Context(), current, form.Name, form.Color)
	if err != nil {
		slog.Error("failed to add family member", "family_id", current.FamilyID, "name", form.Name, "error", err)
		redirectHome(w, r, NoticeError)
		return
	}

	if err := h.saveIdentity(w, r, identity); err != nil {
		slog.Error("failed to save session", "user_id", identity.UserID, "error", err)
		redirectHome(w, r, NoticeError)
		return
	}
	redirectHome(w, r, "")
}

// Logout forgets the active member
func (h *TrackerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	http.Redirect(w, r, pathStart, http.StatusSeeOther)
}

// Healthz reports database reachability
func (h *TrackerHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}

func (h *TrackerHandler) saveIdentity(w http.ResponseWriter, r *http.Request, identity models.Identity) error {
	sess, err := h.store.Get(r, session.CookieName)
	if err != nil {
		return err
	}
	session.SetIdentity(sess, identity)
	return sess.Save(r, w)
}

func (h *TrackerHandler) clearSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r, session.CookieName)
	if err != nil {
		slog.Error("failed to load session for clearing", "error", err)
	}
	session.Clear(sess)
	if err := sess.Save(r, w); err != nil {
		slog.Error("failed to clear session", "error", err)
	}
}

func (h *TrackerHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to render "+name, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	target := pathHome
	if notice != "" {
		target += "?" + url.Values{"notice": {notice}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
