package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
)

func TestCellRepoIdentityAndOwnerScope(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCellRepo(database, testutil.Logger(t))
	sheet := testutil.SeedSheet(t, ctx, tx, 1, "cells")
	field := testutil.SeedField(t, ctx, tx, sheet, "Name", types.FieldTypeDynamic)
	agent := testutil.SeedAgent(t, ctx, tx, 1, "cellrepo-agent")

	adminCell := testutil.SeedCell(t, ctx, tx, field, "r1", nil, "admin")
	agentCell := testutil.SeedCell(t, ctx, tx, field, "r1", &agent.ID, "agent")

	got, err := repo.GetByIdentity(dbc, sheet.ID, field.ID, "r1", nil)
	if err != nil {
		t.Fatalf("GetByIdentity(admin): %v", err)
	}
	if got == nil || got.ID != adminCell.ID {
		t.Fatalf("GetByIdentity(admin): want=%d got=%+v", adminCell.ID, got)
	}
	got, err = repo.GetByIdentity(dbc, sheet.ID, field.ID, "r1", &agent.ID)
	if err != nil {
		t.Fatalf("GetByIdentity(agent): %v", err)
	}
	if got == nil || got.ID != agentCell.ID {
		t.Fatalf("GetByIdentity(agent): want=%d got=%+v", agentCell.ID, got)
	}
	missing, err := repo.GetByIdentity(dbc, sheet.ID, field.ID, "nope", nil)
	if err != nil || missing != nil {
		t.Fatalf("GetByIdentity(missing): want nil got=%+v err=%v", missing, err)
	}

	mine, err := repo.ListBySheetOwner(dbc, sheet.ID, &agent.ID)
	if err != nil {
		t.Fatalf("ListBySheetOwner: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != agentCell.ID {
		t.Fatalf("ListBySheetOwner: unexpected %+v", mine)
	}

	if err := repo.UpdateValue(dbc, adminCell.ID, "changed"); err != nil {
		t.Fatalf("UpdateValue: %v", err)
	}
	all, err := repo.ListBySheet(dbc, sheet.ID)
	if err != nil {
		t.Fatalf("ListBySheet: %v", err)
	}
	if len(all) != 2 || all[0].Value != "changed" {
		t.Fatalf("ListBySheet: unexpected %+v", all)
	}

	n, err := repo.DeleteRow(dbc, sheet.ID, "r1", nil)
	if err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteRow: want=1 got=%d", n)
	}
	left, _ := repo.ListBySheet(dbc, sheet.ID)
	if len(left) != 1 || left[0].ID != agentCell.ID {
		t.Fatalf("DeleteRow touched the agent row: %+v", left)
	}
}

func TestCellRepoUniqueIdentity(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCellRepo(database, testutil.Logger(t))
	sheet := testutil.SeedSheet(t, ctx, tx, 1, "unique")
	field := testutil.SeedField(t, ctx, tx, sheet, "Name", types.FieldTypeDynamic)
	testutil.SeedCell(t, ctx, tx, field, "r1", nil, "first")

	if err := tx.SavePoint("dup").Error; err != nil {
		t.Fatalf("SavePoint: %v", err)
	}
	err := repo.Create(dbc, &types.Cell{
		ManagerID: 1,
		SheetID:   sheet.ID,
		FieldID:   field.ID,
		RowKey:    "r1",
		Value:     "second",
		CreatedAt: time.Now().UTC(),
	})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("second admin cell: expected unique violation, got %v", err)
	}
	if err := tx.RollbackTo("dup").Error; err != nil {
		t.Fatalf("RollbackTo: %v", err)
	}

	owner := int64(5)
	if err := repo.Create(dbc, &types.Cell{
		ManagerID:   1,
		SheetID:     sheet.ID,
		FieldID:     field.ID,
		RowKey:      "r1",
		OwnerUserID: &owner,
		Value:       "agent",
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("same rowKey under another owner should be allowed: %v", err)
	}
}

func TestCellRepoRowKeyCollisions(t *testing.T) {
	database := testutil.DB(t)
	tx := testutil.Tx(t, database)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCellRepo(database, testutil.Logger(t))
	sheet := testutil.SeedSheet(t, ctx, tx, 1, "audit")
	field := testutil.SeedField(t, ctx, tx, sheet, "Name", types.FieldTypeDynamic)
	other := testutil.SeedField(t, ctx, tx, sheet, "Phone", types.FieldTypeDynamic)

	testutil.SeedCell(t, ctx, tx, field, "shared", nil, "a")
	testutil.SeedCell(t, ctx, tx, field, "shared", testutil.Int64Ptr(7), "b")
	testutil.SeedCell(t, ctx, tx, field, "solo", testutil.Int64Ptr(7), "c")
	testutil.SeedCell(t, ctx, tx, other, "solo", testutil.Int64Ptr(7), "d")

	got, err := repo.ListRowKeyCollisions(dbc, sheet.ID)
	if err != nil {
		t.Fatalf("ListRowKeyCollisions: %v", err)
	}
	if len(got) != 1 || got[0].RowKey != "shared" || got[0].Owners != 2 {
		t.Fatalf("ListRowKeyCollisions: unexpected %+v", got)
	}
}
