package sheets

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

// RowKeyCollision is a rowKey that appears under more than one owner on the
// same sheet.
type RowKeyCollision struct {
	SheetID int64  `gorm:"column:sheet_id" json:"sheet_id"`
	RowKey  string `gorm:"column:row_key" json:"row_key"`
	Owners  int64  `gorm:"column:owners" json:"owners"`
}

type CellRepo interface {
	// GetByIdentity returns nil, nil when no cell holds the tuple.
	GetByIdentity(dbc dbctx.Context, sheetID, fieldID int64, rowKey string, owner *int64) (*types.Cell, error)
	Create(dbc dbctx.Context, cell *types.Cell) error
	UpdateValue(dbc dbctx.Context, id int64, value string) error

	ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.Cell, error)
	ListBySheetOwner(dbc dbctx.Context, sheetID int64, owner *int64) ([]*types.Cell, error)

	DeleteRow(dbc dbctx.Context, sheetID int64, rowKey string, owner *int64) (int64, error)
	DeleteByFieldIDs(dbc dbctx.Context, fieldIDs []int64) (int64, error)
	DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error)

	// ListRowKeyCollisions scans one sheet, or every sheet when sheetID is 0.
	ListRowKeyCollisions(dbc dbctx.Context, sheetID int64) ([]RowKeyCollision, error)
}

type cellRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCellRepo(db *gorm.DB, baseLog *logger.Logger) CellRepo {
	return &cellRepo{db: db, log: baseLog.With("repo", "CellRepo")}
}

func ownerScope(q *gorm.DB, owner *int64) *gorm.DB {
	if owner == nil {
		return q.Where("owner_user_id IS NULL")
	}
	return q.Where("owner_user_id = ?", *owner)
}

func (r *cellRepo) GetByIdentity(dbc dbctx.Context, sheetID, fieldID int64, rowKey string, owner *int64) (*types.Cell, error) {
	var out []*types.Cell
	q := dbc.Conn(r.db).Where("sheet_id = ? AND field_id = ? AND row_key = ?", sheetID, fieldID, rowKey)
	if err := ownerScope(q, owner).Order("id ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *cellRepo) Create(dbc dbctx.Context, cell *types.Cell) error {
	return dbc.Conn(r.db).Create(cell).Error
}

func (r *cellRepo) UpdateValue(dbc dbctx.Context, id int64, value string) error {
	return dbc.Conn(r.db).
		Model(&types.Cell{}).
		Where("id = ?", id).
		Update("value", value).Error
}

func (r *cellRepo) ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.Cell, error) {
	var out []*types.Cell
	if err := dbc.Conn(r.db).
		Where("sheet_id = ?", sheetID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cellRepo) ListBySheetOwner(dbc dbctx.Context, sheetID int64, owner *int64) ([]*types.Cell, error) {
	var out []*types.Cell
	q := dbc.Conn(r.db).Where("sheet_id = ?", sheetID)
	if err := ownerScope(q, owner).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cellRepo) DeleteRow(dbc dbctx.Context, sheetID int64, rowKey string, owner *int64) (int64, error) {
	q := dbc.Conn(r.db).Where("sheet_id = ? AND row_key = ?", sheetID, rowKey)
	res := ownerScope(q, owner).Delete(&types.Cell{})
	return res.RowsAffected, res.Error
}

func (r *cellRepo) DeleteByFieldIDs(dbc dbctx.Context, fieldIDs []int64) (int64, error) {
	if len(fieldIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("field_id IN ?", fieldIDs).Delete(&types.Cell{})
	return res.RowsAffected, res.Error
}

func (r *cellRepo) DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error) {
	if len(sheetIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("sheet_id IN ?", sheetIDs).Delete(&types.Cell{})
	return res.RowsAffected, res.Error
}

func (r *cellRepo) ListRowKeyCollisions(dbc dbctx.Context, sheetID int64) ([]RowKeyCollision, error) {
	q := dbc.Conn(r.db).
		Model(&types.Cell{}).
		Select("sheet_id, row_key, COUNT(DISTINCT COALESCE(owner_user_id, 0)) AS owners")
	if sheetID > 0 {
		q = q.Where("sheet_id = ?", sheetID)
	}
	var out []RowKeyCollision
	if err := q.
		Group("sheet_id, row_key").
		Having("COUNT(DISTINCT COALESCE(owner_user_id, 0)) > 1").
		Order("sheet_id ASC, row_key ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
