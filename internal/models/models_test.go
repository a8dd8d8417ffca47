package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				FamilyID:  1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIsIdentified(t *testing.T) {
	anonymous := Session{ID: "anon"}
	if anonymous.IsIdentified() {
		t.Error("anonymous session should not be identified")
	}
	known := Session{ID: "known", UserID: 7, FamilyID: 3}
	if !known.IsIdentified() {
		t.Error("session with a user should be identified")
	}
}

func TestFamilyHasMember(t *testing.T) {
	family := Family{
		ID: 1,
		Members: []User{
			{ID: 1, Name: "Angela", FamilyID: 1},
			{ID: 2, Name: "Jack", FamilyID: 1},
		},
	}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"first member", 1, true},
		{"second member", 2, true},
		{"stranger", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := family.HasMember(tt.userID); got != tt.want {
				t.Errorf("HasMember(%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}
