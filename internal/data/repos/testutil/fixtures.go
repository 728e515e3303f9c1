package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
)

func SeedAgent(tb testing.TB, ctx context.Context, tx *gorm.DB, managerID int64, username string) *types.Agent {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Agent{
		ManagerID:    managerID,
		Username:     username,
		PasswordHash: "x",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed agent: %v", err)
	}
	return a
}

func SeedSheet(tb testing.TB, ctx context.Context, tx *gorm.DB, managerID int64, name string) *types.Sheet {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.Sheet{
		ManagerID:   managerID,
		SheetNumber: fmt.Sprintf("N-%s", uuid.NewString()[:8]),
		SheetName:   name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sheet: %v", err)
	}
	return s
}

func SeedField(tb testing.TB, ctx context.Context, tx *gorm.DB, sheet *types.Sheet, title string, fieldType types.FieldType) *types.Field {
	tb.Helper()
	f := &types.Field{
		ManagerID:     sheet.ManagerID,
		SheetID:       sheet.ID,
		Title:         title,
		Type:          fieldType,
		DisplayFormat: "text",
		DisplayWidth:  150,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed field: %v", err)
	}
	return f
}

func SeedCell(tb testing.TB, ctx context.Context, tx *gorm.DB, field *types.Field, rowKey string, owner *int64, value string) *types.Cell {
	tb.Helper()
	c := &types.Cell{
		ManagerID:   field.ManagerID,
		SheetID:     field.SheetID,
		FieldID:     field.ID,
		RowKey:      rowKey,
		OwnerUserID: owner,
		Value:       value,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cell: %v", err)
	}
	return c
}

func SeedGrant(tb testing.TB, ctx context.Context, tx *gorm.DB, sheet *types.Sheet, userID int64) *types.ShareGrant {
	tb.Helper()
	g := &types.ShareGrant{
		ManagerID: sheet.ManagerID,
		SheetID:   sheet.ID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed grant: %v", err)
	}
	return g
}

func Int64Ptr(v int64) *int64 { return &v }
