package rows

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

type UpsertCellInput struct {
	SheetID     int64
	FieldID     int64
	ManagerID   int64
	RowKey      string
	OwnerUserID *int64
	Value       string
	Writer      auth.Principal
}

type UpsertCellResult struct {
	CellID     int64
	WasCreated bool
}

// UpsertCell writes one value at (sheet, field, rowKey, owner). An existing
// cell keeps its id and createdAt; otherwise a new cell is inserted. Losing an
// insert race to the unique index is reported as a Conflict so the caller can
// retry, which then takes the update path.
func (u Usecases) UpsertCell(dbc dbctx.Context, in UpsertCellInput) (res UpsertCellResult, err error) {
	ctx, span := u.startSpan(dbc.Ctx, "UpsertCell",
		attribute.Int64("sheet_id", in.SheetID),
		attribute.Int64("field_id", in.FieldID),
		attribute.String("role", in.Writer.Role.String()),
	)
	defer func() { endSpan(span, err) }()
	dbc.Ctx = ctx

	in.RowKey = strings.TrimSpace(in.RowKey)
	if err := validateWrite(in); err != nil {
		return UpsertCellResult{}, err
	}

	existing, err := u.deps.Cells.GetByIdentity(dbc, in.SheetID, in.FieldID, in.RowKey, in.OwnerUserID)
	if err != nil {
		return UpsertCellResult{}, fmt.Errorf("lookup cell: %w", err)
	}
	if existing != nil {
		if err := u.deps.Cells.UpdateValue(dbc, existing.ID, in.Value); err != nil {
			return UpsertCellResult{}, fmt.Errorf("update cell: %w", err)
		}
		u.deps.Metrics.IncCellWrite("updated")
		return UpsertCellResult{CellID: existing.ID}, nil
	}

	cell := &types.Cell{
		ManagerID:   in.ManagerID,
		SheetID:     in.SheetID,
		FieldID:     in.FieldID,
		RowKey:      in.RowKey,
		OwnerUserID: in.OwnerUserID,
		Value:       in.Value,
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.deps.Cells.Create(dbc, cell); err != nil {
		if db.IsUniqueViolation(err) {
			return UpsertCellResult{}, apierr.Conflict("cell_exists", fmt.Errorf("cell was created concurrently: %w", err))
		}
		return UpsertCellResult{}, fmt.Errorf("insert cell: %w", err)
	}
	u.deps.Metrics.IncCellWrite("created")
	return UpsertCellResult{CellID: cell.ID, WasCreated: true}, nil
}

func validateWrite(in UpsertCellInput) error {
	if in.SheetID <= 0 || in.FieldID <= 0 {
		return apierr.Validationf("invalid_cell", "sheet id and field id are required")
	}
	if in.RowKey == "" {
		return apierr.Validationf("invalid_row_key", "row key is required")
	}
	switch in.Writer.Role {
	case auth.RoleAgent:
		if in.OwnerUserID == nil || *in.OwnerUserID != in.Writer.ID {
			return apierr.Forbiddenf("owner_mismatch", "agents may only write their own rows")
		}
	case auth.RoleAdministrator:
		if in.OwnerUserID != nil {
			return apierr.Forbiddenf("owner_mismatch", "administrators write under their own rows")
		}
	default:
		return apierr.Forbiddenf("unknown_role", "principal has no role")
	}
	return nil
}

// IsStaticFieldEditable reports whether a static field may be written on the
// given row: only on the owner's first row, or on a new row when the owner has
// none yet.
func (u Usecases) IsStaticFieldEditable(dbc dbctx.Context, sheetID int64, owner *int64, rowKey string) (bool, error) {
	cells, err := u.deps.Cells.ListBySheetOwner(dbc, sheetID, owner)
	if err != nil {
		return false, fmt.Errorf("load owner cells: %w", err)
	}
	rows := Reconcile(cells)
	if len(rows) == 0 {
		return true, nil
	}
	// Every row here has the same owner, so sort order is first-row order.
	return rows[0].RowKey == strings.TrimSpace(rowKey), nil
}
