package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
)

const adminDisplayName = "Admin"

func requirePrincipal(ctx context.Context) (auth.Principal, error) {
	p, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		return auth.Principal{}, apierr.Unauthorized("unauthorized", errNotAuthenticated)
	}
	return p, nil
}

func requireAdministrator(ctx context.Context) (auth.Principal, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return p, err
	}
	if !p.IsAdministrator() {
		return p, apierr.Forbiddenf("admin_only", "administrator access required")
	}
	return p, nil
}

func requireAgent(ctx context.Context) (auth.Principal, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return p, err
	}
	if !p.IsAgent() {
		return p, apierr.Forbiddenf("agent_only", "agent access required")
	}
	return p, nil
}

// withTx runs fn in the caller's transaction if there is one, otherwise in a
// new one on db.
func withTx(db *gorm.DB, dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
