package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/platform/admindir"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/passhash"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (AuthService, *types.Agent, *types.Agent) {
	t.Helper()
	database := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	hash, err := passhash.HashWithRounds("agent-password", 1000)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	active := testutil.SeedAgent(t, ctx, database, 101, "active-"+uuid.NewString()[:8])
	inactive := testutil.SeedAgent(t, ctx, database, 101, "inactive-"+uuid.NewString()[:8])
	if err := database.Model(&types.Agent{}).Where("id IN ?", []int64{active.ID, inactive.ID}).Update("password_hash", hash).Error; err != nil {
		t.Fatalf("set hash: %v", err)
	}
	if err := database.Model(&types.Agent{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	t.Cleanup(func() {
		database.Where("id IN ?", []int64{active.ID, inactive.ID}).Delete(&types.Agent{})
	})

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	dir, err := admindir.New([]admindir.Administrator{{CustomerID: 101, Email: "owner@example.com", PasswordHash: string(adminHash)}})
	if err != nil {
		t.Fatalf("admindir: %v", err)
	}
	svc := NewAuthService(database, log, repos.NewAgentRepo(database, log), dir, testSecret, time.Hour)
	return svc, active, inactive
}

func TestSignInAgent(t *testing.T) {
	svc, active, inactive := newAuthService(t)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Identifier: active.Username, Password: "agent-password", Role: "agent"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.User.ID != active.ID || res.User.CustomerID != 101 || res.User.Role != "agent" {
		t.Fatalf("user: %+v", res.User)
	}
	p, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if p != auth.Agent(active.ID, 101) {
		t.Fatalf("principal: want=%+v got=%+v", auth.Agent(active.ID, 101), p)
	}

	_, err = svc.SignIn(ctx, SignInInput{Identifier: active.Username, Password: "wrong", Role: "agent"})
	if !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("wrong password: want unauthorized, got %v", err)
	}
	_, err = svc.SignIn(ctx, SignInInput{Identifier: inactive.Username, Password: "agent-password", Role: "agent"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "account_inactive" {
		t.Fatalf("inactive: want account_inactive, got %v", err)
	}
	_, err = svc.SignIn(ctx, SignInInput{Identifier: "nobody-" + uuid.NewString(), Password: "x", Role: "agent"})
	if !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("unknown user: want unauthorized, got %v", err)
	}
}

func TestSignInAdministrator(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Identifier: "OWNER@example.com", Password: "admin-password", Role: "admin"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.User.ID != 101 || res.User.CustomerID != 101 || res.User.Role != "admin" {
		t.Fatalf("user: %+v", res.User)
	}

	withRD, err := svc.SetContextFromToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	p, ok := ctxutil.GetPrincipal(withRD)
	if !ok || p != auth.Administrator(101) {
		t.Fatalf("principal in context: %+v ok=%v", p, ok)
	}

	if _, err := svc.SignIn(ctx, SignInInput{Identifier: "owner@example.com", Password: "nope", Role: "admin"}); !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("wrong password: want unauthorized, got %v", err)
	}
	if _, err := svc.SignIn(ctx, SignInInput{Identifier: "owner@example.com", Password: "x", Role: "root"}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("bad role: want validation, got %v", err)
	}
}

func TestParseTokenRejectsForgeries(t *testing.T) {
	svc, _, _ := newAuthService(t)

	good, _, err := svc.IssueToken(auth.Agent(5, 101))
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, err := svc.ParseToken(tampered); !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("tampered signature: want unauthorized, got %v", err)
	}

	other := NewAuthService(nil, testutil.Logger(t), nil, nil, "other-secret", time.Hour)
	foreign, _, _ := other.IssueToken(auth.Agent(5, 101))
	if _, err := svc.ParseToken(foreign); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Role:      "agent",
		ManagerID: 101,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, _ := expired.SignedString([]byte(testSecret))
	if _, err := svc.ParseToken(signed); err == nil {
		t.Fatalf("expired token must be rejected")
	}

	noManager := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Role: "agent",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, _ = noManager.SignedString([]byte(testSecret))
	if _, err := svc.ParseToken(signed); err == nil {
		t.Fatalf("agent token without manager must be rejected")
	}
}
