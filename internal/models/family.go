package models

// Family is the set of users sharing a family id. It is never stored on its own.
type Family struct {
	ID      int64
	Members []User
}

// HasMember reports whether userID belongs to the family
func (f *Family) HasMember(userID int64) bool {
	for _, m := range f.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
