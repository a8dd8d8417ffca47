package models

// Identity is the request-scoped view of a session: who is active and which
// family list they act within.
type Identity struct {
	UserID   int64
	FamilyID int64
}

// IsAnonymous reports whether no family member is active
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}
