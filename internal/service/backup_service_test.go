package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"familytravel/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	src := newStrictFixture(t)
	ctx := context.Background()

	alice, _ := src.workflow.Login(ctx, "Alice")
	carol, _ := src.workflow.AddMember(ctx, alice, "Carol", "powderblue")
	if _, err := src.workflow.RecordVisit(ctx, alice, "Spain"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if _, err := src.workflow.RecordVisit(ctx, carol, "France"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	src.workflow.Login(ctx, "Dave")

	backup := NewBackupService(src.users, repository.NewVisitedRepository(src.db))
	var buf bytes.Buffer
	if err := backup.Export(ctx, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var data BackupData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(data.Families) != 2 {
		t.Fatalf("exported %d families, want 2", len(data.Families))
	}
	if len(data.Families[0].Members) != 2 {
		t.Errorf("first family has %d members, want 2", len(data.Families[0].Members))
	}

	// Import into a database that already has a household
	dst := newStrictFixture(t)
	existing, _ := dst.workflow.Login(ctx, "Zoe")

	restore := NewBackupService(dst.users, repository.NewVisitedRepository(dst.db))
	stats, err := restore.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if stats.Families != 2 || stats.Users != 3 || stats.Visits != 2 || stats.Skipped != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	members, _ := dst.family.GetFamilyMembers(ctx, existing.FamilyID)
	if len(members) != 1 {
		t.Errorf("import merged into existing family: %+v", members)
	}

	restored, _ := dst.workflow.Login(ctx, "Carol")
	home, err := dst.workflow.Home(ctx, restored)
	if err != nil {
		t.Fatalf("Home failed: %v", err)
	}
	if home.Total != 1 || home.Countries[0] != "FR" || home.Color != "powderblue" {
		t.Errorf("restored Carol = %+v", home)
	}
	if len(home.Users) != 2 {
		t.Errorf("restored family has %d members, want 2", len(home.Users))
	}

	summary, err := restore.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Users != 4 || summary.MaxFamilyID != 3 {
		t.Errorf("Summary = %+v, want 4 users and max family id 3", summary)
	}
}
