package models

import "time"

// User is a member of exactly one family
type User struct {
	ID        int64
	Name      string
	Color     string // display tag used on the home map
	FamilyID  int64
	CreatedAt time.Time
}

// Session is the server-side record behind the session cookie.
// UserID and FamilyID are zero while the visitor is anonymous.
type Session struct {
	ID        string
	UserID    int64
	FamilyID  int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsIdentified reports whether a family member has been chosen
func (s *Session) IsIdentified() bool {
	return s.UserID != 0
}
