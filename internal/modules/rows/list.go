package rows

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

// ListRows returns the rows of a sheet the principal may see: every row for
// the administrator, only the agent's own rows for an agent. Whether the
// principal may open the sheet at all is decided by the caller.
func (u Usecases) ListRows(dbc dbctx.Context, sheetID int64, p auth.Principal) (rows []*Row, err error) {
	ctx, span := u.startSpan(dbc.Ctx, "ListRows",
		attribute.Int64("sheet_id", sheetID),
		attribute.String("role", p.Role.String()),
	)
	defer func() { endSpan(span, err) }()
	dbc.Ctx = ctx

	if sheetID <= 0 {
		return nil, apierr.Validationf("invalid_sheet_id", "sheet id is required")
	}

	var cells []*types.Cell
	switch p.Role {
	case auth.RoleAdministrator:
		cells, err = u.deps.Cells.ListBySheet(dbc, sheetID)
	case auth.RoleAgent:
		cells, err = u.deps.Cells.ListBySheetOwner(dbc, sheetID, p.OwnerID())
	default:
		return nil, apierr.Forbiddenf("unknown_role", "principal has no role")
	}
	if err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	rows = Reconcile(cells)
	span.SetAttributes(attribute.Int("rows", len(rows)), attribute.Int("cells", len(cells)))
	return rows, nil
}
