package sheets

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type ShareGrantRepo interface {
	Create(dbc dbctx.Context, grant *types.ShareGrant) error
	Exists(dbc dbctx.Context, sheetID, userID int64) (bool, error)
	ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.ShareGrant, error)
	ListSheetIDsByUser(dbc dbctx.Context, userID int64) ([]int64, error)
	CountBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (map[int64]int64, error)
	Delete(dbc dbctx.Context, sheetID, userID int64) (int64, error)
	DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error)
	DeleteByUserIDs(dbc dbctx.Context, userIDs []int64) (int64, error)
}

type shareGrantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShareGrantRepo(db *gorm.DB, baseLog *logger.Logger) ShareGrantRepo {
	return &shareGrantRepo{db: db, log: baseLog.With("repo", "ShareGrantRepo")}
}

func (r *shareGrantRepo) Create(dbc dbctx.Context, grant *types.ShareGrant) error {
	return dbc.Conn(r.db).Create(grant).Error
}

func (r *shareGrantRepo) Exists(dbc dbctx.Context, sheetID, userID int64) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&types.ShareGrant{}).
		Where("sheet_id = ? AND user_id = ?", sheetID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shareGrantRepo) ListBySheet(dbc dbctx.Context, sheetID int64) ([]*types.ShareGrant, error) {
	var out []*types.ShareGrant
	if err := dbc.Conn(r.db).
		Where("sheet_id = ?", sheetID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *shareGrantRepo) ListSheetIDsByUser(dbc dbctx.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := dbc.Conn(r.db).
		Model(&types.ShareGrant{}).
		Where("user_id = ?", userID).
		Order("sheet_id ASC").
		Pluck("sheet_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *shareGrantRepo) CountBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(sheetIDs))
	if len(sheetIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		SheetID int64
		Total   int64
	}
	if err := dbc.Conn(r.db).
		Model(&types.ShareGrant{}).
		Select("sheet_id, COUNT(*) AS total").
		Where("sheet_id IN ?", sheetIDs).
		Group("sheet_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SheetID] = row.Total
	}
	return out, nil
}

func (r *shareGrantRepo) Delete(dbc dbctx.Context, sheetID, userID int64) (int64, error) {
	res := dbc.Conn(r.db).
		Where("sheet_id = ? AND user_id = ?", sheetID, userID).
		Delete(&types.ShareGrant{})
	return res.RowsAffected, res.Error
}

func (r *shareGrantRepo) DeleteBySheetIDs(dbc dbctx.Context, sheetIDs []int64) (int64, error) {
	if len(sheetIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("sheet_id IN ?", sheetIDs).Delete(&types.ShareGrant{})
	return res.RowsAffected, res.Error
}

func (r *shareGrantRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("user_id IN ?", userIDs).Delete(&types.ShareGrant{})
	return res.RowsAffected, res.Error
}
