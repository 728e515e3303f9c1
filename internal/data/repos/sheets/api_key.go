package sheets

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type APIKeyRepo interface {
	GetByCustomer(dbc dbctx.Context, customerID int64) (*types.APIKey, error)
	Upsert(dbc dbctx.Context, customerID int64, key string) (*types.APIKey, error)
	Matches(dbc dbctx.Context, customerID int64, key string) (bool, error)
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	return &apiKeyRepo{db: db, log: baseLog.With("repo", "APIKeyRepo")}
}

func (r *apiKeyRepo) GetByCustomer(dbc dbctx.Context, customerID int64) (*types.APIKey, error) {
	var out []*types.APIKey
	if err := dbc.Conn(r.db).Where("customer_id = ?", customerID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *apiKeyRepo) Upsert(dbc dbctx.Context, customerID int64, key string) (*types.APIKey, error) {
	now := time.Now().UTC()
	row := &types.APIKey{CustomerID: customerID, Key: key, CreatedAt: now, UpdatedAt: now}
	if err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"api_key", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByCustomer(dbc, customerID)
}

func (r *apiKeyRepo) Matches(dbc dbctx.Context, customerID int64, key string) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&types.APIKey{}).
		Where("customer_id = ? AND api_key = ?", customerID, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
