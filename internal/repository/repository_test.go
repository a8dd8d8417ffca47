package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"familytravel/internal/database/databasetest"
	"familytravel/internal/models"
)

func TestUserRepository(t *testing.T) {
	db := databasetest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("MaxFamilyID is zero on an empty table", func(t *testing.T) {
		maxID, err := repo.MaxFamilyID(ctx)
		if err != nil {
			t.Fatalf("MaxFamilyID failed: %v", err)
		}
		if maxID != 0 {
			t.Errorf("MaxFamilyID = %d, want 0", maxID)
		}
	})

	t.Run("CreateUserInNewFamily allocates max plus one", func(t *testing.T) {
		first, err := repo.CreateUserInNewFamily(ctx, "Angela", "teal")
		if err != nil {
			t.Fatalf("CreateUserInNewFamily failed: %v", err)
		}
		if first.FamilyID != 1 {
			t.Errorf("first family id = %d, want 1", first.FamilyID)
		}

		second, err := repo.CreateUserInNewFamily(ctx, "Jack", "teal")
		if err != nil {
			t.Fatalf("CreateUserInNewFamily failed: %v", err)
		}
		if second.FamilyID != 2 {
			t.Errorf("second family id = %d, want 2", second.FamilyID)
		}
		if second.Name != "Jack" || second.Color != "teal" || second.ID == 0 {
			t.Errorf("unexpected user %+v", second)
		}
	})

	t.Run("CreateUser joins an existing family", func(t *testing.T) {
		member, err := repo.CreateUser(ctx, "Jill", "powderblue", 1)
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if member.FamilyID != 1 || member.Color != "powderblue" {
			t.Errorf("unexpected member %+v", member)
		}

		maxID, err := repo.MaxFamilyID(ctx)
		if err != nil {
			t.Fatalf("MaxFamilyID failed: %v", err)
		}
		if maxID != 2 {
			t.Errorf("MaxFamilyID = %d, want 2", maxID)
		}
	})

	t.Run("GetFamilyMembers returns only that family in id order", func(t *testing.T) {
		members, err := repo.GetFamilyMembers(ctx, 1)
		if err != nil {
			t.Fatalf("GetFamilyMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(members))
		}
		if members[0].Name != "Angela" || members[1].Name != "Jill" {
			t.Errorf("unexpected members %+v", members)
		}
	})

	t.Run("lookups return nil for unknown rows", func(t *testing.T) {
		user, err := repo.GetUserByName(ctx, "Nobody")
		if err != nil || user != nil {
			t.Errorf("GetUserByName = %+v, %v; want nil, nil", user, err)
		}
		user, err = repo.GetUserByID(ctx, 999)
		if err != nil || user != nil {
			t.Errorf("GetUserByID = %+v, %v; want nil, nil", user, err)
		}
	})

	t.Run("GetUserByName is exact", func(t *testing.T) {
		user, err := repo.GetUserByName(ctx, "angela")
		if err != nil {
			t.Fatalf("GetUserByName failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected case-sensitive miss, got %+v", user)
		}
		user, err = repo.GetUserByName(ctx, "Angela")
		if err != nil || user == nil {
			t.Fatalf("GetUserByName(Angela) = %+v, %v", user, err)
		}
	})
}

func TestCountryRepository(t *testing.T) {
	db := databasetest.New(t)
	repo := NewCountryRepository(db)
	ctx := context.Background()

	databasetest.SeedCountries(t, db,
		"ES", "Spain",
		"FR", "France",
		"GF", "French Guiana",
		"NE", "Niger",
		"NG", "Nigeria",
	)

	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{"case insensitive", "SPAIN", []string{"ES"}},
		{"substring in catalog order", "fr", []string{"FR", "GF"}},
		{"multiple prefix hits", "niger", []string{"NE", "NG"}},
		{"no match", "atlantis", nil},
		{"wildcards are literal", "%", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchByName(ctx, tt.fragment)
			if err != nil {
				t.Fatalf("SearchByName failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SearchByName(%q) returned %d rows, want %d", tt.fragment, len(got), len(tt.want))
			}
			for i, c := range got {
				if c.Code != tt.want[i] {
					t.Errorf("row %d = %s, want %s", i, c.Code, tt.want[i])
				}
			}
		})
	}

	t.Run("Upsert adds new codes and renames existing ones", func(t *testing.T) {
		added, err := repo.Upsert(ctx, []models.Country{
			{Code: "ES", Name: "Kingdom of Spain"},
			{Code: "PT", Name: "Portugal"},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if added != 1 {
			t.Errorf("added = %d, want 1", added)
		}
		es, err := repo.GetByCode(ctx, "ES")
		if err != nil || es == nil || es.Name != "Kingdom of Spain" {
			t.Errorf("GetByCode(ES) = %+v, %v", es, err)
		}
		count, err := repo.Count(ctx)
		if err != nil || count != 6 {
			t.Errorf("Count = %d, %v; want 6", count, err)
		}
	})
}

func TestVisitedRepository(t *testing.T) {
	db := databasetest.New(t)
	users := NewUserRepository(db)
	repo := NewVisitedRepository(db)
	ctx := context.Background()

	databasetest.SeedCountries(t, db, "ES", "Spain", "FR", "France", "JP", "Japan")
	user, err := users.CreateUserInNewFamily(ctx, "Angela", "teal")
	if err != nil {
		t.Fatalf("CreateUserInNewFamily failed: %v", err)
	}

	codes, err := repo.ListVisitedCodes(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListVisitedCodes failed: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("expected empty ledger, got %v", codes)
	}

	for _, code := range []string{"JP", "ES", "FR"} {
		if err := repo.AddVisit(ctx, user.ID, code); err != nil {
			t.Fatalf("AddVisit(%s) failed: %v", code, err)
		}
	}

	t.Run("recording order is preserved", func(t *testing.T) {
		codes, err := repo.ListVisitedCodes(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListVisitedCodes failed: %v", err)
		}
		want := []string{"JP", "ES", "FR"}
		if len(codes) != len(want) {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
		for i := range want {
			if codes[i] != want[i] {
				t.Errorf("codes[%d] = %s, want %s", i, codes[i], want[i])
			}
		}
	})

	t.Run("duplicate visit is rejected", func(t *testing.T) {
		err := repo.AddVisit(ctx, user.ID, "ES")
		if !errors.Is(err, ErrDuplicateVisit) {
			t.Errorf("AddVisit duplicate error = %v, want ErrDuplicateVisit", err)
		}
	})

	t.Run("unknown country code violates the catalog reference", func(t *testing.T) {
		if err := repo.AddVisit(ctx, user.ID, "XX"); err == nil {
			t.Error("expected foreign key error for unknown code")
		}
	})

	t.Run("RemoveVisit", func(t *testing.T) {
		removed, err := repo.RemoveVisit(ctx, user.ID, "FR")
		if err != nil || !removed {
			t.Fatalf("RemoveVisit = %v, %v", removed, err)
		}
		visited, err := repo.HasVisited(ctx, user.ID, "FR")
		if err != nil || visited {
			t.Errorf("HasVisited after remove = %v, %v", visited, err)
		}
		removed, err = repo.RemoveVisit(ctx, user.ID, "FR")
		if err != nil || removed {
			t.Errorf("second RemoveVisit = %v, %v; want false", removed, err)
		}
	})

	t.Run("GetAllVisits", func(t *testing.T) {
		visits, err := repo.GetAllVisits(ctx)
		if err != nil {
			t.Fatalf("GetAllVisits failed: %v", err)
		}
		if len(visits) != 2 {
			t.Errorf("expected 2 visits, got %d", len(visits))
		}
	})
}

func TestSessionRepository(t *testing.T) {
	db := databasetest.New(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	user, err := users.CreateUserInNewFamily(ctx, "Angela", "teal")
	if err != nil {
		t.Fatalf("CreateUserInNewFamily failed: %v", err)
	}

	s := &models.Session{ID: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession insert failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "abc")
	if err != nil || got == nil {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}
	if got.IsIdentified() {
		t.Errorf("new session should be anonymous, got %+v", got)
	}

	s.UserID, s.FamilyID = user.ID, user.FamilyID
	if err := repo.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession update failed: %v", err)
	}
	got, err = repo.GetSession(ctx, "abc")
	if err != nil || got == nil {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}
	if got.UserID != user.ID || got.FamilyID != user.FamilyID {
		t.Errorf("session identity = %d/%d, want %d/%d", got.UserID, got.FamilyID, user.ID, user.FamilyID)
	}

	expired := &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := repo.SaveSession(ctx, expired); err != nil {
		t.Fatalf("SaveSession expired failed: %v", err)
	}
	n, err := repo.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}

	if err := repo.DeleteSession(ctx, "abc"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	got, err = repo.GetSession(ctx, "abc")
	if err != nil || got != nil {
		t.Errorf("GetSession after delete = %+v, %v", got, err)
	}
}
