package sheets

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type ViewPreferenceRepo interface {
	GetByManager(dbc dbctx.Context, managerID int64) (*types.ViewPreference, error)
	Upsert(dbc dbctx.Context, managerID int64, viewType types.ViewType) (*types.ViewPreference, error)
}

type viewPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) ViewPreferenceRepo {
	return &viewPreferenceRepo{db: db, log: baseLog.With("repo", "ViewPreferenceRepo")}
}

func (r *viewPreferenceRepo) GetByManager(dbc dbctx.Context, managerID int64) (*types.ViewPreference, error) {
	var out []*types.ViewPreference
	if err := dbc.Conn(r.db).Where("manager_id = ?", managerID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *viewPreferenceRepo) Upsert(dbc dbctx.Context, managerID int64, viewType types.ViewType) (*types.ViewPreference, error) {
	row := &types.ViewPreference{ManagerID: managerID, ViewType: viewType, UpdatedAt: time.Now().UTC()}
	if err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "manager_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"view_type", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
