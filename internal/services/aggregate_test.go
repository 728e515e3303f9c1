package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

type fixedLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *fixedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestAPIKeyRotateAndVerify(t *testing.T) {
	f := newFixture(t)
	svc := NewAPIKeyService(f.db, f.log, f.keys)
	admin := f.as(auth.Administrator(61))

	missing, err := svc.Get(admin)
	if err != nil || missing != nil {
		t.Fatalf("Get before rotate: %+v err=%v", missing, err)
	}
	first, err := svc.Rotate(admin)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	second, err := svc.Rotate(admin)
	if err != nil || second.Key == first.Key {
		t.Fatalf("second Rotate should replace the key: %+v err=%v", second, err)
	}
	if err := svc.Verify(f.anonymous(), 61, first.Key); !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("old key: want unauthorized, got %v", err)
	}
	if err := svc.Verify(f.anonymous(), 61, second.Key); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := svc.Verify(f.anonymous(), 0, ""); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("missing params: want validation, got %v", err)
	}
	if _, err := svc.Rotate(f.as(auth.Agent(5, 61))); !apierr.IsKind(err, apierr.KindForbidden) {
		t.Fatalf("agent Rotate: want forbidden, got %v", err)
	}
}

func TestViewPreference(t *testing.T) {
	f := newFixture(t)
	svc := NewViewPreferenceService(f.db, f.log, f.prefs)
	admin := f.as(auth.Administrator(62))

	pref, err := svc.Get(admin)
	if err != nil || pref.ViewType != types.ViewCard {
		t.Fatalf("default: %+v err=%v", pref, err)
	}
	if _, err := svc.Set(admin, types.ViewType(7)); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("bad view type: want validation, got %v", err)
	}
	if _, err := svc.Set(admin, types.ViewTable); err != nil {
		t.Fatalf("Set: %v", err)
	}
	pref, err = svc.Get(admin)
	if err != nil || pref.ViewType != types.ViewTable {
		t.Fatalf("after Set: %+v err=%v", pref, err)
	}
}

func TestSharedCells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keys := NewAPIKeyService(f.db, f.log, f.keys)
	limiter := &fixedLimiter{allowed: true}
	svc := NewAggregateService(f.db, f.log, f.sheets, f.fields, f.cells, f.agents, keys, limiter, observability.NewMetrics())

	admin := f.as(auth.Administrator(63))
	key, err := keys.Rotate(admin)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	agent := testutil.SeedAgent(t, ctx, f.tx, 63, "aggregate-agent")
	sheet := testutil.SeedSheet(t, ctx, f.tx, 63, "external")
	name := testutil.SeedField(t, ctx, f.tx, sheet, "Name", types.FieldTypeStatic)
	note := testutil.SeedField(t, ctx, f.tx, sheet, "Note", types.FieldTypeDynamic)
	testutil.SeedCell(t, ctx, f.tx, name, "admin-row", nil, "HQ")
	testutil.SeedCell(t, ctx, f.tx, name, "agent-row", &agent.ID, "Field office")
	testutil.SeedCell(t, ctx, f.tx, note, "agent-row", &agent.ID, "visited")
	testutil.SeedSheet(t, ctx, f.tx, 64, "someone else")

	if _, err := svc.SharedCells(f.anonymous(), 63, "wrong"); !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("bad key: want unauthorized, got %v", err)
	}

	out, err := svc.SharedCells(f.anonymous(), 63, key.Key)
	if err != nil {
		t.Fatalf("SharedCells: %v", err)
	}
	if len(out) != 1 || out[0].SheetID != sheet.ID || len(out[0].Rows) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	byUser := map[any]map[string]any{}
	for _, r := range out[0].Rows {
		byUser[r["Username"]] = r
	}
	adminRow, agentRow := byUser["Admin"], byUser["aggregate-agent"]
	if adminRow == nil || agentRow == nil {
		t.Fatalf("rows by username: %v", byUser)
	}
	if adminRow["Name"] != "HQ" || adminRow["Note"] != "" {
		t.Fatalf("admin row: %v", adminRow)
	}
	if agentRow["Note"] != "visited" || agentRow["Updated_At"] == "" {
		t.Fatalf("agent row: %v", agentRow)
	}
	// Rejected keys count against the budget too.
	if len(limiter.keys) != 2 || limiter.keys[0] != "sharecells:63" || limiter.keys[1] != "sharecells:63" {
		t.Fatalf("limiter keys: %v", limiter.keys)
	}

	limiter.allowed = false
	if _, err := svc.SharedCells(f.anonymous(), 63, key.Key); !apierr.IsKind(err, apierr.KindRateLimited) {
		t.Fatalf("over limit: want rate limited, got %v", err)
	}
	if _, err := svc.SharedCells(f.anonymous(), 63, "wrong"); !apierr.IsKind(err, apierr.KindRateLimited) {
		t.Fatalf("guessing over limit: want rate limited, got %v", err)
	}
	limiter.err = errors.New("redis down")
	if _, err := svc.SharedCells(f.anonymous(), 63, key.Key); err != nil {
		t.Fatalf("limiter failure should fail open: %v", err)
	}
}
