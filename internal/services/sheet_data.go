package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/modules/rows"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"

	unknownUsername = "Unknown"
	maxRowKeyLength = 64
)

type CellView struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

type RowView struct {
	RowKey    string    `json:"row_key"`
	UserID    *int64    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	MinCellID int64     `json:"min_cell_id"`

	// StaticEditable is true on the owner's first row, the only row where
	// static fields may be written and shown.
	StaticEditable bool               `json:"static_editable"`
	Cells          map[int64]CellView `json:"cells"`
}

type SheetData struct {
	Sheet  *types.Sheet   `json:"sheet"`
	Fields []*types.Field `json:"fields"`
	Rows   []RowView      `json:"rows"`
}

type WriteCellInput struct {
	SheetID int64
	FieldID int64
	RowKey  string
	Value   string
}

type WriteCellResult struct {
	CellID int64  `json:"cell_id"`
	Action string `json:"action"`
}

type DeleteRowRequest struct {
	SheetID int64
	RowKey  string
	// OwnerUserID selects the row owner for administrators. Agents always
	// delete their own rows and the value is ignored.
	OwnerUserID *int64
}

type SheetDataService interface {
	Get(dbc dbctx.Context, sheetID int64) (*SheetData, error)
	WriteCell(dbc dbctx.Context, in WriteCellInput) (*WriteCellResult, error)
	DeleteRow(dbc dbctx.Context, in DeleteRowRequest) error
}

type sheetDataService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheetRepo repos.SheetRepo
	fieldRepo repos.FieldRepo
	shareRepo repos.ShareGrantRepo
	agentRepo repos.AgentRepo
	engine    RowEngine
	notifier  SheetNotifier
	metrics   *observability.Metrics
}

func NewSheetDataService(
	db *gorm.DB,
	log *logger.Logger,
	sheetRepo repos.SheetRepo,
	fieldRepo repos.FieldRepo,
	shareRepo repos.ShareGrantRepo,
	agentRepo repos.AgentRepo,
	engine RowEngine,
	notifier SheetNotifier,
	metrics *observability.Metrics,
) SheetDataService {
	if notifier == nil {
		notifier = NewNoopSheetNotifier()
	}
	return &sheetDataService{
		db:        db,
		log:       log.With("service", "SheetDataService"),
		sheetRepo: sheetRepo,
		fieldRepo: fieldRepo,
		shareRepo: shareRepo,
		agentRepo: agentRepo,
		engine:    engine,
		notifier:  notifier,
		metrics:   metrics,
	}
}

func (s *sheetDataService) Get(dbc dbctx.Context, sheetID int64) (*SheetData, error) {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
	if err != nil {
		return nil, err
	}
	fields, err := s.fieldRepo.ListBySheet(dbc, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, apierr.Validationf("sheet_not_designed", "this sheet has no fields yet")
	}
	rowList, err := s.engine.ListRows(dbc, sheet.ID, p)
	if err != nil {
		return nil, err
	}
	names, err := agentNames(dbc, s.agentRepo, rowList)
	if err != nil {
		return nil, err
	}
	return &SheetData{
		Sheet:  sheet,
		Fields: fields,
		Rows:   buildRowViews(rowList, fields, names),
	}, nil
}

// buildRowViews hides static values everywhere except on each owner's first
// row.
func buildRowViews(rowList []*rows.Row, fields []*types.Field, names map[int64]string) []RowView {
	static := make(map[int64]bool, len(fields))
	for _, f := range fields {
		static[f.ID] = f.IsStatic()
	}
	first := rows.FirstRows(rowList)

	out := make([]RowView, 0, len(rowList))
	for _, r := range rowList {
		isFirst := first[r.Identity()]
		view := RowView{
			RowKey:         r.RowKey,
			UserID:         r.OwnerUserID,
			Username:       displayName(r.OwnerUserID, names),
			CreatedAt:      r.CreatedAt,
			MinCellID:      r.MinCellID,
			StaticEditable: isFirst,
			Cells:          make(map[int64]CellView, len(r.Cells)),
		}
		for fieldID, c := range r.Cells {
			if static[fieldID] && !isFirst {
				continue
			}
			view.Cells[fieldID] = CellView{ID: c.ID, Value: c.Value}
		}
		out = append(out, view)
	}
	return out
}

func displayName(owner *int64, names map[int64]string) string {
	if owner == nil {
		return adminDisplayName
	}
	if n, ok := names[*owner]; ok {
		return n
	}
	return unknownUsername
}

func agentNames(dbc dbctx.Context, agentRepo repos.AgentRepo, rowList []*rows.Row) (map[int64]string, error) {
	seen := map[int64]bool{}
	ids := []int64{}
	for _, r := range rowList {
		if r.OwnerUserID == nil || seen[*r.OwnerUserID] {
			continue
		}
		seen[*r.OwnerUserID] = true
		ids = append(ids, *r.OwnerUserID)
	}
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	agents, err := agentRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	for _, a := range agents {
		names[a.ID] = a.Username
	}
	return names, nil
}

func validateRowKey(rowKey string) (string, error) {
	rowKey = strings.TrimSpace(rowKey)
	if rowKey == "" {
		return "", apierr.Validationf("invalid_row_key", "row key is required")
	}
	if len(rowKey) > maxRowKeyLength {
		return "", apierr.Validationf("invalid_row_key", "row key is too long")
	}
	if _, err := uuid.Parse(rowKey); err != nil {
		return "", apierr.Validationf("invalid_row_key", "row key must be a UUID")
	}
	return rowKey, nil
}

// WriteCell stores one value on the caller's own row. A static field may only
// be written on the caller's first row. An insert that loses the race for the
// cell identity is retried once, which then updates the winner's cell.
func (s *sheetDataService) WriteCell(dbc dbctx.Context, in WriteCellInput) (*WriteCellResult, error) {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, in.SheetID)
	if err != nil {
		return nil, err
	}
	if in.FieldID <= 0 {
		return nil, apierr.Validationf("invalid_field_id", "field id is required")
	}
	field, err := s.fieldRepo.GetByID(dbc, in.FieldID)
	if err != nil {
		return nil, fmt.Errorf("load field: %w", err)
	}
	if field == nil || field.SheetID != sheet.ID {
		return nil, apierr.NotFoundf("field_not_found", "field not found")
	}
	rowKey, err := validateRowKey(in.RowKey)
	if err != nil {
		return nil, err
	}

	owner := p.OwnerID()
	if field.IsStatic() {
		ok, err := s.engine.IsStaticFieldEditable(dbc, sheet.ID, owner, rowKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierr.Forbiddenf("static_field_locked", "static fields can only be edited on the first row")
		}
	}

	upsert := rows.UpsertCellInput{
		SheetID:     sheet.ID,
		FieldID:     field.ID,
		ManagerID:   sheet.ManagerID,
		RowKey:      rowKey,
		OwnerUserID: owner,
		Value:       in.Value,
		Writer:      p,
	}
	res, err := s.engine.UpsertCell(dbc, upsert)
	if apierr.IsKind(err, apierr.KindConflict) {
		s.log.Debug("Cell insert raced, retrying as update", "sheet_id", sheet.ID, "field_id", field.ID)
		res, err = s.engine.UpsertCell(dbc, upsert)
		if err != nil {
			s.metrics.IncUpsertConflict("failed")
		} else {
			s.metrics.IncUpsertConflict("retried")
		}
	}
	if err != nil {
		return nil, err
	}

	action := ActionUpdated
	if res.WasCreated {
		action = ActionCreated
	}
	s.notifier.CellChanged(dbc.Ctx, sheet.ID, CellChangedEvent{
		FieldID:     field.ID,
		CellID:      res.CellID,
		RowKey:      rowKey,
		OwnerUserID: owner,
		Value:       in.Value,
		Action:      action,
	})
	return &WriteCellResult{CellID: res.CellID, Action: action}, nil
}

func (s *sheetDataService) DeleteRow(dbc dbctx.Context, in DeleteRowRequest) error {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return err
	}
	sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, in.SheetID)
	if err != nil {
		return err
	}
	owner := in.OwnerUserID
	if p.IsAgent() {
		owner = p.OwnerID()
	}
	n, err := s.engine.DeleteRow(dbc, rows.DeleteRowInput{
		SheetID:     sheet.ID,
		RowKey:      in.RowKey,
		OwnerUserID: owner,
		Requester:   p,
	})
	if err != nil {
		return err
	}
	if n > 0 {
		s.notifier.RowDeleted(dbc.Ctx, sheet.ID, strings.TrimSpace(in.RowKey), owner)
	}
	return nil
}
