package services

import (
	"fmt"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/modules/rows"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

// RowEngine is the part of the row reconciliation engine the services call.
// rows.Usecases implements it.
type RowEngine interface {
	ListRows(dbc dbctx.Context, sheetID int64, p auth.Principal) ([]*rows.Row, error)
	UpsertCell(dbc dbctx.Context, in rows.UpsertCellInput) (rows.UpsertCellResult, error)
	IsStaticFieldEditable(dbc dbctx.Context, sheetID int64, owner *int64, rowKey string) (bool, error)
	DeleteRow(dbc dbctx.Context, in rows.DeleteRowInput) (int64, error)
	DeleteField(dbc dbctx.Context, fieldID int64) error
	DeleteSheet(dbc dbctx.Context, sheetID int64) error
}

var _ RowEngine = rows.Usecases{}

// loadVisibleSheet returns the sheet if p may open it: the owning
// administrator, or an agent holding a sharing grant. Anything else is
// reported as not found so sheet ids of other tenants do not leak.
func loadVisibleSheet(dbc dbctx.Context, sheetRepo repos.SheetRepo, shareRepo repos.ShareGrantRepo, p auth.Principal, sheetID int64) (*types.Sheet, error) {
	if sheetID <= 0 {
		return nil, apierr.Validationf("invalid_sheet_id", "invalid sheet id")
	}
	switch p.Role {
	case auth.RoleAdministrator:
		sheet, err := sheetRepo.GetByIDForManager(dbc, p.ID, sheetID)
		if err != nil {
			return nil, fmt.Errorf("load sheet: %w", err)
		}
		if sheet == nil {
			return nil, apierr.NotFoundf("sheet_not_found", "sheet not found")
		}
		return sheet, nil
	case auth.RoleAgent:
		shared, err := shareRepo.Exists(dbc, sheetID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check grant: %w", err)
		}
		if !shared {
			return nil, apierr.NotFoundf("sheet_not_found", "sheet not found or not shared with you")
		}
		sheet, err := sheetRepo.GetByID(dbc, sheetID)
		if err != nil {
			return nil, fmt.Errorf("load sheet: %w", err)
		}
		if sheet == nil {
			return nil, apierr.NotFoundf("sheet_not_found", "sheet not found")
		}
		return sheet, nil
	default:
		return nil, apierr.Forbiddenf("unknown_role", "principal has no role")
	}
}
