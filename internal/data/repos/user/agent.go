package user

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type AgentRepo interface {
	Create(dbc dbctx.Context, agents []*types.Agent) ([]*types.Agent, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Agent, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Agent, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.Agent, error)
	UsernameExists(dbc dbctx.Context, username string, excludeID int64) (bool, error)
	ListByManager(dbc dbctx.Context, managerID int64) ([]*types.Agent, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
}

type agentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentRepo(db *gorm.DB, baseLog *logger.Logger) AgentRepo {
	return &agentRepo{db: db, log: baseLog.With("repo", "AgentRepo")}
}

func (r *agentRepo) Create(dbc dbctx.Context, agents []*types.Agent) ([]*types.Agent, error) {
	if len(agents) == 0 {
		return []*types.Agent{}, nil
	}
	if err := dbc.Conn(r.db).Create(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepo) GetByID(dbc dbctx.Context, id int64) (*types.Agent, error) {
	rows, err := r.GetByIDs(dbc, []int64{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *agentRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Agent, error) {
	var out []*types.Agent
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *agentRepo) GetByUsername(dbc dbctx.Context, username string) (*types.Agent, error) {
	var out []*types.Agent
	if err := dbc.Conn(r.db).
		Where("username = ?", strings.TrimSpace(username)).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *agentRepo) UsernameExists(dbc dbctx.Context, username string, excludeID int64) (bool, error) {
	q := dbc.Conn(r.db).
		Model(&types.Agent{}).
		Where("username = ?", strings.TrimSpace(username))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *agentRepo) ListByManager(dbc dbctx.Context, managerID int64) ([]*types.Agent, error) {
	var out []*types.Agent
	if err := dbc.Conn(r.db).
		Where("manager_id = ?", managerID).
		Order("username ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *agentRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.Agent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *agentRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Where("id IN ?", ids).Delete(&types.Agent{}).Error
}
