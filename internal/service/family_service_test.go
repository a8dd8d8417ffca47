package service

import (
	"context"
	"errors"
	"testing"

	"familytravel/internal/models"
)

func TestResolveOrCreateUser(t *testing.T) {
	f := newStrictFixture(t)
	ctx := context.Background()

	t.Run("unseen name creates one user in family max plus one", func(t *testing.T) {
		before, err := f.users.MaxFamilyID(ctx)
		if err != nil {
			t.Fatalf("MaxFamilyID failed: %v", err)
		}

		user, created, err := f.family.ResolveOrCreateUser(ctx, "Alice")
		if err != nil {
			t.Fatalf("ResolveOrCreateUser failed: %v", err)
		}
		if !created {
			t.Error("expected a new user")
		}
		if user.FamilyID != before+1 {
			t.Errorf("family id = %d, want %d", user.FamilyID, before+1)
		}
		if user.Color != "teal" {
			t.Errorf("color = %q, want default teal", user.Color)
		}
	})

	t.Run("existing name creates nothing", func(t *testing.T) {
		countBefore, _ := f.users.CountUsers(ctx)
		first, _, err := f.family.ResolveOrCreateUser(ctx, "Alice")
		if err != nil {
			t.Fatalf("ResolveOrCreateUser failed: %v", err)
		}
		again, created, err := f.family.ResolveOrCreateUser(ctx, "Alice")
		if err != nil {
			t.Fatalf("ResolveOrCreateUser failed: %v", err)
		}
		if created {
			t.Error("expected existing user to be resolved")
		}
		if again.ID != first.ID || again.FamilyID != first.FamilyID {
			t.Errorf("resolved %+v, want %+v", again, first)
		}
		countAfter, _ := f.users.CountUsers(ctx)
		if countAfter != countBefore {
			t.Errorf("user count changed from %d to %d", countBefore, countAfter)
		}
	})

	t.Run("each unseen name starts its own family", func(t *testing.T) {
		bob, _, err := f.family.ResolveOrCreateUser(ctx, "Bob")
		if err != nil {
			t.Fatalf("ResolveOrCreateUser failed: %v", err)
		}
		alice, _, _ := f.family.ResolveOrCreateUser(ctx, "Alice")
		if bob.FamilyID == alice.FamilyID {
			t.Errorf("Bob joined Alice's family %d", bob.FamilyID)
		}
	})
}

func TestGetFamilyMembers(t *testing.T) {
	f := newStrictFixture(t)
	ctx := context.Background()

	alice, _, _ := f.family.ResolveOrCreateUser(ctx, "Alice")
	carol, err := f.family.AddFamilyMember(ctx, "Carol", "powderblue", alice.FamilyID)
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}
	dave, _, _ := f.family.ResolveOrCreateUser(ctx, "Dave")

	members, err := f.family.GetFamilyMembers(ctx, alice.FamilyID)
	if err != nil {
		t.Fatalf("GetFamilyMembers failed: %v", err)
	}

	family := models.Family{ID: alice.FamilyID, Members: members}
	if !family.HasMember(alice.ID) || !family.HasMember(carol.ID) {
		t.Errorf("expected Alice and Carol in %+v", members)
	}
	if family.HasMember(dave.ID) {
		t.Errorf("Dave (family %d) should not be listed", dave.FamilyID)
	}

	loaded, err := f.family.GetFamily(ctx, alice.FamilyID)
	if err != nil {
		t.Fatalf("GetFamily failed: %v", err)
	}
	if len(loaded.Members) != 2 {
		t.Errorf("GetFamily members = %d, want 2", len(loaded.Members))
	}
}

func TestAddFamilyMember(t *testing.T) {
	f := newStrictFixture(t)
	ctx := context.Background()

	alice, _, _ := f.family.ResolveOrCreateUser(ctx, "Alice")
	maxBefore, _ := f.users.MaxFamilyID(ctx)

	member, err := f.family.AddFamilyMember(ctx, "Eve", "", alice.FamilyID)
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}
	if member.FamilyID != alice.FamilyID {
		t.Errorf("family id = %d, want %d", member.FamilyID, alice.FamilyID)
	}
	if member.Color != "teal" {
		t.Errorf("empty color should default to teal, got %q", member.Color)
	}

	maxAfter, _ := f.users.MaxFamilyID(ctx)
	if maxAfter != maxBefore {
		t.Errorf("AddFamilyMember allocated a family id: %d -> %d", maxBefore, maxAfter)
	}

	if _, err := f.family.AddFamilyMember(ctx, "Ghost", "red", 0); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("expected ErrNoIdentity for family 0, got %v", err)
	}
}
