package sheets

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type FieldRepo interface {
	Create(dbc dbctx.Context, rows []*types.Field) ([]*types.Field, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Field, error)
	// ListBySheet returns the sheet's columns in display order (id ascending).
	ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.Field, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
	DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error)
}

type fieldRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldRepo(db *gorm.DB, baseLog *logger.Logger) FieldRepo {
	return &fieldRepo{db: db, log: baseLog.With("repo", "FieldRepo")}
}

func (r *fieldRepo) Create(dbc dbctx.Context, rows []*types.Field) ([]*types.Field, error) {
	if len(rows) == 0 {
		return []*types.Field{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *fieldRepo) GetByID(dbc dbctx.Context, id int64) (*types.Field, error) {
	var out []*types.Field
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fieldRepo) ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.Field, error) {
	var out []*types.Field
	if err := dbc.Conn(r.db).
		Where("sheet_id = ?", sheetID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.Field{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *fieldRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Where("id IN ?", ids).Delete(&types.Field{}).Error
}

func (r *fieldRepo) DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error) {
	if len(sheetIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("sheet_id IN ?", sheetIDs).Delete(&types.Field{})
	return res.RowsAffected, res.Error
}
