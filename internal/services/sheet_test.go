package services

import (
	"context"
	"testing"

	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/realtime"
)

func strPtr(s string) *string { return &s }

func TestSheetLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSheetService(f.db, f.log, f.sheets, f.shares, f.engine, f.notifier())
	admin := f.as(auth.Administrator(31))

	if _, err := svc.Create(admin, CreateSheetInput{SheetNumber: " ", SheetName: "x"}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("blank number: want validation, got %v", err)
	}
	a, err := svc.Create(admin, CreateSheetInput{SheetNumber: "A-1", SheetName: "Alpha"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(admin, CreateSheetInput{SheetNumber: "A-1", SheetName: "Other"}); !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("duplicate number: want conflict, got %v", err)
	}
	b, err := svc.Create(admin, CreateSheetInput{SheetNumber: "B-1", SheetName: "Beta"})
	if err != nil {
		t.Fatalf("Create(second): %v", err)
	}
	if _, err := svc.Update(admin, b.ID, UpdateSheetInput{SheetName: strPtr("Alpha")}); !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("rename onto existing: want conflict, got %v", err)
	}
	renamed, err := svc.Update(admin, b.ID, UpdateSheetInput{SheetName: strPtr("Beta 2"), SheetNumber: strPtr("B-1")})
	if err != nil || renamed.SheetName != "Beta 2" {
		t.Fatalf("Update: %+v err=%v", renamed, err)
	}

	// Another tenant may reuse the same number and name.
	if _, err := svc.Create(f.as(auth.Administrator(32)), CreateSheetInput{SheetNumber: "A-1", SheetName: "Alpha"}); err != nil {
		t.Fatalf("Create(other tenant): %v", err)
	}
	if _, err := svc.Get(f.as(auth.Administrator(32)), a.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("cross-tenant Get: want not found, got %v", err)
	}

	testutil.SeedGrant(t, ctx, f.tx, a, 900)
	list, err := svc.List(admin)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %d err=%v", len(list), err)
	}
	counts := map[int64]int64{}
	for _, s := range list {
		counts[s.ID] = s.ShareCount
	}
	if counts[a.ID] != 1 || counts[b.ID] != 0 {
		t.Fatalf("share counts: %v", counts)
	}

	field := testutil.SeedField(t, ctx, f.tx, a, "Name", types.FieldTypeDynamic)
	testutil.SeedCell(t, ctx, f.tx, field, "r", nil, "v")
	if err := svc.Delete(admin, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(admin, a.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("deleted sheet: want not found, got %v", err)
	}
	if got := f.events.events(); len(got) != 1 || got[0] != realtime.SSEEventSheetDeleted {
		t.Fatalf("events: %v", got)
	}
}

func TestSharedSheetsAndVisibleIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSheetService(f.db, f.log, f.sheets, f.shares, f.engine, nil)
	shared := testutil.SeedSheet(t, ctx, f.tx, 41, "shared")
	testutil.SeedSheet(t, ctx, f.tx, 41, "private")
	testutil.SeedGrant(t, ctx, f.tx, shared, 500)

	agent := f.as(auth.Agent(500, 41))
	list, err := svc.ListShared(agent)
	if err != nil || len(list) != 1 || list[0].ID != shared.ID {
		t.Fatalf("ListShared: %+v err=%v", list, err)
	}
	ids, err := svc.VisibleSheetIDs(agent)
	if err != nil || len(ids) != 1 || ids[0] != shared.ID {
		t.Fatalf("VisibleSheetIDs(agent): %v err=%v", ids, err)
	}
	ids, err = svc.VisibleSheetIDs(f.as(auth.Administrator(41)))
	if err != nil || len(ids) != 2 {
		t.Fatalf("VisibleSheetIDs(admin): %v err=%v", ids, err)
	}
	if _, err := svc.ListShared(f.as(auth.Administrator(41))); !apierr.IsKind(err, apierr.KindForbidden) {
		t.Fatalf("admin ListShared: want forbidden, got %v", err)
	}
}

func TestFieldAndShareServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fields := NewFieldService(f.db, f.log, f.sheets, f.fields, f.shares, f.engine, f.notifier())
	shares := NewShareService(f.db, f.log, f.sheets, f.shares, f.agents, f.notifier())
	sheet := testutil.SeedSheet(t, ctx, f.tx, 51, "fields")
	admin := f.as(auth.Administrator(51))

	created, err := fields.Create(admin, sheet.ID, CreateFieldInput{Title: "Phone"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Type != types.FieldTypeStatic || created.DisplayFormat != "text" || created.DisplayWidth != 150 {
		t.Fatalf("defaults: %+v", created)
	}
	if _, err := fields.Create(admin, sheet.ID, CreateFieldInput{Title: "Bad", DisplayFormat: "currency"}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("bad format: want validation, got %v", err)
	}
	dyn := "dynamic"
	updated, err := fields.Update(admin, created.ID, UpdateFieldInput{Type: &dyn})
	if err != nil || updated.Type != types.FieldTypeDynamic {
		t.Fatalf("Update: %+v err=%v", updated, err)
	}
	if _, err := fields.Update(f.as(auth.Administrator(52)), created.ID, UpdateFieldInput{Type: &dyn}); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("other tenant field: want not found, got %v", err)
	}

	agent := testutil.SeedAgent(t, ctx, f.tx, 51, "share-agent-fields")
	foreign := testutil.SeedAgent(t, ctx, f.tx, 52, "share-agent-foreign")
	if _, err := shares.Grant(admin, sheet.ID, foreign.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("agent of another manager: want not found, got %v", err)
	}
	if _, err := shares.Grant(admin, sheet.ID, agent.ID); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if _, err := shares.Grant(admin, sheet.ID, agent.ID); !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("duplicate grant: want conflict, got %v", err)
	}
	entries, err := shares.List(admin, sheet.ID)
	if err != nil || len(entries) != 1 || entries[0].Username != agent.Username {
		t.Fatalf("List: %+v err=%v", entries, err)
	}

	agentFields, err := fields.List(f.as(auth.Agent(agent.ID, 51)), sheet.ID)
	if err != nil || len(agentFields) != 1 {
		t.Fatalf("agent field list: %d err=%v", len(agentFields), err)
	}

	if err := shares.Revoke(admin, sheet.ID, agent.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := shares.Revoke(admin, sheet.ID, agent.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("second revoke: want not found, got %v", err)
	}
	if err := fields.Delete(admin, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	left, _ := f.fields.ListBySheet(admin, sheet.ID)
	if len(left) != 0 {
		t.Fatalf("field still present")
	}
}
