package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/passhash"
)

func TestAgentRegister(t *testing.T) {
	f := newFixture(t)
	svc := NewAgentService(f.db, f.log, f.agents, f.shares, nil)
	dbc := f.anonymous()
	username := "reg-" + uuid.NewString()[:8]

	cases := []struct {
		name string
		in   RegisterAgentInput
	}{
		{"missing customer", RegisterAgentInput{Username: username, Password: "long-enough"}},
		{"short username", RegisterAgentInput{CustomerID: 1, Username: "ab", Password: "long-enough"}},
		{"short password", RegisterAgentInput{CustomerID: 1, Username: username, Password: "short"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(dbc, tc.in); !apierr.IsKind(err, apierr.KindValidation) {
			t.Fatalf("%s: want validation, got %v", tc.name, err)
		}
	}

	agent, err := svc.Register(dbc, RegisterAgentInput{CustomerID: 1, Username: "  " + username + " ", Password: "long-enough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if agent.IsActive || agent.Username != username || agent.ManagerID != 1 {
		t.Fatalf("new agent should be pending: %+v", agent)
	}
	if !passhash.Verify("long-enough", agent.PasswordHash) {
		t.Fatalf("password hash does not verify")
	}
	if _, err := svc.Register(dbc, RegisterAgentInput{CustomerID: 1, Username: username, Password: "long-enough"}); !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("duplicate: want conflict, got %v", err)
	}
	exists, err := svc.UsernameExists(dbc, username)
	if err != nil || !exists {
		t.Fatalf("UsernameExists: %v err=%v", exists, err)
	}
}

func TestAgentAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAgentService(f.db, f.log, f.agents, f.shares, nil)
	agent := testutil.SeedAgent(t, ctx, f.tx, 1, "adm-"+uuid.NewString()[:8])
	sheet := testutil.SeedSheet(t, ctx, f.tx, 1, "agent-admin")
	field := testutil.SeedField(t, ctx, f.tx, sheet, "Name", types.FieldTypeDynamic)
	testutil.SeedGrant(t, ctx, f.tx, sheet, agent.ID)
	testutil.SeedCell(t, ctx, f.tx, field, "r", &agent.ID, "history")

	admin := f.as(auth.Administrator(1))
	stranger := f.as(auth.Administrator(2))

	if _, err := svc.SetActive(stranger, agent.ID, false); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("other manager: want not found, got %v", err)
	}
	if _, err := svc.SetActive(f.as(auth.Agent(agent.ID, 1)), agent.ID, false); !apierr.IsKind(err, apierr.KindForbidden) {
		t.Fatalf("agent caller: want forbidden, got %v", err)
	}
	updated, err := svc.SetActive(admin, agent.ID, false)
	if err != nil || updated.IsActive {
		t.Fatalf("SetActive: %+v err=%v", updated, err)
	}

	if err := svc.ChangePassword(admin, agent.ID, "12345"); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("short password: want validation, got %v", err)
	}
	if err := svc.ChangePassword(admin, agent.ID, "new-secret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	reloaded, _ := f.agents.GetByID(admin, agent.ID)
	if !passhash.Verify("new-secret", reloaded.PasswordHash) || reloaded.PasswordRequested {
		t.Fatalf("password not changed: %+v", reloaded)
	}

	list, err := svc.List(admin)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %d err=%v", len(list), err)
	}

	if err := svc.Delete(admin, agent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := f.shares.Exists(admin, sheet.ID, agent.ID); ok {
		t.Fatalf("grant should be removed with the agent")
	}
	cells, _ := f.cells.ListBySheet(admin, sheet.ID)
	if len(cells) != 1 {
		t.Fatalf("agent cells should remain as history, got %d", len(cells))
	}
}

func TestAgentProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAgentService(f.db, f.log, f.agents, f.shares, nil)
	hash, _ := passhash.HashWithRounds("old-password", 1000)
	agent := testutil.SeedAgent(t, ctx, f.tx, 1, "prof-"+uuid.NewString()[:8])
	taken := testutil.SeedAgent(t, ctx, f.tx, 1, "taken-"+uuid.NewString()[:8])
	if err := f.tx.Model(&types.Agent{}).Where("id = ?", agent.ID).Update("password_hash", hash).Error; err != nil {
		t.Fatalf("set hash: %v", err)
	}
	me := f.as(auth.Agent(agent.ID, 1))

	prof, err := svc.Profile(me)
	if err != nil || prof.ManagerID != 1 || prof.Username != agent.Username {
		t.Fatalf("Profile: %+v err=%v", prof, err)
	}
	if _, err := svc.UpdateProfile(me, UpdateProfileInput{Username: taken.Username}); !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("taken username: want conflict, got %v", err)
	}
	if _, err := svc.UpdateProfile(me, UpdateProfileInput{Username: agent.Username, CurrentPassword: "wrong", NewPassword: "brand-new"}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("wrong current password: want validation, got %v", err)
	}

	renamed := "renamed-" + uuid.NewString()[:8]
	prof, err = svc.UpdateProfile(me, UpdateProfileInput{Username: renamed, CurrentPassword: "old-password", NewPassword: "brand-new"})
	if err != nil || prof.Username != renamed {
		t.Fatalf("UpdateProfile: %+v err=%v", prof, err)
	}
	reloaded, _ := f.agents.GetByID(me, agent.ID)
	if !passhash.Verify("brand-new", reloaded.PasswordHash) {
		t.Fatalf("password not updated")
	}
}
