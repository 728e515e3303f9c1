package sheets

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type SheetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Sheet) ([]*types.Sheet, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Sheet, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Sheet, error)
	GetByIDForManager(dbc dbctx.Context, managerID, id int64) (*types.Sheet, error)
	ListByManager(dbc dbctx.Context, managerID int64) ([]*types.Sheet, error)
	ListSharedWithUser(dbc dbctx.Context, userID int64) ([]*types.Sheet, error)
	NumberTaken(dbc dbctx.Context, managerID int64, number string, excludeID int64) (bool, error)
	NameTaken(dbc dbctx.Context, managerID int64, name string, excludeID int64) (bool, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
}

type sheetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSheetRepo(db *gorm.DB, baseLog *logger.Logger) SheetRepo {
	return &sheetRepo{db: db, log: baseLog.With("repo", "SheetRepo")}
}

func (r *sheetRepo) Create(dbc dbctx.Context, rows []*types.Sheet) ([]*types.Sheet, error) {
	if len(rows) == 0 {
		return []*types.Sheet{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sheetRepo) GetByID(dbc dbctx.Context, id int64) (*types.Sheet, error) {
	rows, err := r.GetByIDs(dbc, []int64{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *sheetRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Sheet, error) {
	var out []*types.Sheet
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sheetRepo) GetByIDForManager(dbc dbctx.Context, managerID, id int64) (*types.Sheet, error) {
	var out []*types.Sheet
	if err := dbc.Conn(r.db).
		Where("id = ? AND manager_id = ?", id, managerID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sheetRepo) ListByManager(dbc dbctx.Context, managerID int64) ([]*types.Sheet, error) {
	var out []*types.Sheet
	if err := dbc.Conn(r.db).
		Where("manager_id = ?", managerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sheetRepo) ListSharedWithUser(dbc dbctx.Context, userID int64) ([]*types.Sheet, error) {
	var out []*types.Sheet
	if err := dbc.Conn(r.db).
		Joins("JOIN share_grant ON share_grant.sheet_id = sheet.id").
		Where("share_grant.user_id = ?", userID).
		Order("sheet.created_at DESC, sheet.id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sheetRepo) NumberTaken(dbc dbctx.Context, managerID int64, number string, excludeID int64) (bool, error) {
	return r.exists(dbc, managerID, "sheet_number", number, excludeID)
}

func (r *sheetRepo) NameTaken(dbc dbctx.Context, managerID int64, name string, excludeID int64) (bool, error) {
	return r.exists(dbc, managerID, "sheet_name", name, excludeID)
}

func (r *sheetRepo) exists(dbc dbctx.Context, managerID int64, column, value string, excludeID int64) (bool, error) {
	q := dbc.Conn(r.db).
		Model(&types.Sheet{}).
		Where("manager_id = ?", managerID).
		Where(column+" = ?", strings.TrimSpace(value))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sheetRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.Sheet{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sheetRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Where("id IN ?", ids).Delete(&types.Sheet{}).Error
}
