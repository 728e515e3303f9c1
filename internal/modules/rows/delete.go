package rows

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

type DeleteRowInput struct {
	SheetID     int64
	RowKey      string
	OwnerUserID *int64
	Requester   auth.Principal
}

// DeleteRow removes every cell of one row. Deleting a row that does not exist
// is not an error.
func (u Usecases) DeleteRow(dbc dbctx.Context, in DeleteRowInput) (deleted int64, err error) {
	ctx, span := u.startSpan(dbc.Ctx, "DeleteRow",
		attribute.Int64("sheet_id", in.SheetID),
		attribute.String("role", in.Requester.Role.String()),
	)
	defer func() { endSpan(span, err) }()
	dbc.Ctx = ctx

	in.RowKey = strings.TrimSpace(in.RowKey)
	if in.SheetID <= 0 || in.RowKey == "" {
		return 0, apierr.Validationf("invalid_row", "sheet id and row key are required")
	}
	switch in.Requester.Role {
	case auth.RoleAdministrator:
	case auth.RoleAgent:
		if in.OwnerUserID == nil || *in.OwnerUserID != in.Requester.ID {
			return 0, apierr.Forbiddenf("owner_mismatch", "agents may only delete their own rows")
		}
	default:
		return 0, apierr.Forbiddenf("unknown_role", "principal has no role")
	}

	deleted, err = u.deps.Cells.DeleteRow(dbc, in.SheetID, in.RowKey, in.OwnerUserID)
	if err != nil {
		return 0, fmt.Errorf("delete row: %w", err)
	}
	u.deps.Metrics.AddCellsDeleted("row", deleted)
	span.SetAttributes(attribute.Int64("cells_deleted", deleted))
	return deleted, nil
}

// DeleteField removes a column and every value stored under it.
func (u Usecases) DeleteField(dbc dbctx.Context, fieldID int64) (err error) {
	ctx, span := u.startSpan(dbc.Ctx, "DeleteField", attribute.Int64("field_id", fieldID))
	defer func() { endSpan(span, err) }()
	dbc.Ctx = ctx

	if fieldID <= 0 {
		return apierr.Validationf("invalid_field_id", "field id is required")
	}
	return u.inTx(dbc, func(dbc dbctx.Context) error {
		n, err := u.deps.Cells.DeleteByFieldIDs(dbc, []int64{fieldID})
		if err != nil {
			return fmt.Errorf("delete field cells: %w", err)
		}
		if err := u.deps.Fields.DeleteByIDs(dbc, []int64{fieldID}); err != nil {
			return fmt.Errorf("delete field: %w", err)
		}
		u.deps.Metrics.AddCellsDeleted("field", n)
		return nil
	})
}

// DeleteSheet removes a sheet with its cells, fields and sharing grants.
func (u Usecases) DeleteSheet(dbc dbctx.Context, sheetID int64) (err error) {
	ctx, span := u.startSpan(dbc.Ctx, "DeleteSheet", attribute.Int64("sheet_id", sheetID))
	defer func() { endSpan(span, err) }()
	dbc.Ctx = ctx

	if sheetID <= 0 {
		return apierr.Validationf("invalid_sheet_id", "sheet id is required")
	}
	ids := []int64{sheetID}
	return u.inTx(dbc, func(dbc dbctx.Context) error {
		n, err := u.deps.Cells.DeleteBySheetIDs(dbc, ids)
		if err != nil {
			return fmt.Errorf("delete sheet cells: %w", err)
		}
		if _, err := u.deps.Fields.DeleteBySheetIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete sheet fields: %w", err)
		}
		if _, err := u.deps.Shares.DeleteBySheetIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete sheet grants: %w", err)
		}
		if err := u.deps.Sheets.DeleteByIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete sheet: %w", err)
		}
		u.deps.Metrics.AddCellsDeleted("sheet", n)
		return nil
	})
}
