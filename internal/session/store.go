// Package session keeps the active family member on the server, keyed by a
// signed and encrypted cookie holding only the session id.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"familytravel/internal/models"
	"familytravel/internal/repository"
	"familytravel/internal/security"
)

// CookieName is the name of the session cookie
const CookieName = "familytravel_session"

const (
	userIDKey   = "current_user_id"
	familyIDKey = "current_family_id"
)

// SQLStore implements sessions.Store on top of the sessions table
type SQLStore struct {
	repo     *repository.SessionRepository
	codecs   []securecookie.Codec
	duration time.Duration

	Options *sessions.Options
}

var _ sessions.Store = (*SQLStore)(nil)

// NewSQLStore creates a store whose cookies are authenticated with hashKey
// and encrypted with blockKey
func NewSQLStore(repo *repository.SessionRepository, duration time.Duration, hashKey, blockKey []byte) *SQLStore {
	codecs := securecookie.CodecsFromPairs(hashKey, blockKey)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(duration.Seconds()))
		}
	}

	return &SQLStore{
		repo:     repo,
		codecs:   codecs,
		duration: duration,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(duration.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns the session for this request, cached in the request registry
func (s *SQLStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. Missing, tampered or expired
// cookies yield a fresh anonymous session.
func (s *SQLStore) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.codecs...); err != nil {
		slog.Debug("discarding undecodable session cookie", "error", err)
		return sess, nil
	}

	record, err := s.repo.GetSession(r.Context(), id)
	if err != nil {
		return sess, err
	}
	if record == nil || record.IsExpired() {
		return sess, nil
	}

	sess.ID = record.ID
	sess.IsNew = false
	if record.IsIdentified() {
		sess.Values[userIDKey] = record.UserID
		sess.Values[familyIDKey] = record.FamilyID
	}
	return sess, nil
}

// Save persists the session row and refreshes the cookie. A negative MaxAge
// deletes both.
func (s *SQLStore) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	opts := *sess.Options
	opts.Secure = opts.Secure || security.IsSecureRequest(r)

	if opts.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.repo.DeleteSession(r.Context(), sess.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", &opts))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	identity := identityOf(sess)
	record := &models.Session{
		ID:        sess.ID,
		UserID:    identity.UserID,
		FamilyID:  identity.FamilyID,
		ExpiresAt: time.Now().Add(s.duration),
	}
	if err := s.repo.SaveSession(r.Context(), record); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, &opts))
	return nil
}

// Cleanup deletes expired session rows
func (s *SQLStore) Cleanup(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}

// Identity reads the active member from a loaded session
func Identity(sess *sessions.Session) models.Identity {
	return identityOf(sess)
}

// SetIdentity writes both ids into the session. Call Save afterwards.
func SetIdentity(sess *sessions.Session, identity models.Identity) {
	sess.Values[userIDKey] = identity.UserID
	sess.Values[familyIDKey] = identity.FamilyID
}

// Clear forgets the active member and expires the session on Save
func Clear(sess *sessions.Session) {
	delete(sess.Values, userIDKey)
	delete(sess.Values, familyIDKey)
	sess.Options.MaxAge = -1
}

func identityOf(sess *sessions.Session) models.Identity {
	userID, _ := sess.Values[userIDKey].(int64)
	familyID, _ := sess.Values[familyIDKey].(int64)
	return models.Identity{UserID: userID, FamilyID: familyID}
}
