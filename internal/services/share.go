package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type ShareEntry struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type ShareService interface {
	List(dbc dbctx.Context, sheetID int64) ([]ShareEntry, error)
	Grant(dbc dbctx.Context, sheetID, userID int64) (*types.ShareGrant, error)
	Revoke(dbc dbctx.Context, sheetID, userID int64) error
}

type shareService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheetRepo repos.SheetRepo
	shareRepo repos.ShareGrantRepo
	agentRepo repos.AgentRepo
	notifier  SheetNotifier
}

func NewShareService(db *gorm.DB, log *logger.Logger, sheetRepo repos.SheetRepo, shareRepo repos.ShareGrantRepo, agentRepo repos.AgentRepo, notifier SheetNotifier) ShareService {
	if notifier == nil {
		notifier = NewNoopSheetNotifier()
	}
	return &shareService{
		db:        db,
		log:       log.With("service", "ShareService"),
		sheetRepo: sheetRepo,
		shareRepo: shareRepo,
		agentRepo: agentRepo,
		notifier:  notifier,
	}
}

func (s *shareService) ownedSheet(dbc dbctx.Context, sheetID int64) (*types.Sheet, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
}

func (s *shareService) List(dbc dbctx.Context, sheetID int64) ([]ShareEntry, error) {
	sheet, err := s.ownedSheet(dbc, sheetID)
	if err != nil {
		return nil, err
	}
	grants, err := s.shareRepo.ListBySheet(dbc, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	ids := make([]int64, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.UserID)
	}
	agents, err := s.agentRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	byID := make(map[int64]*types.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}
	out := make([]ShareEntry, 0, len(grants))
	for _, g := range grants {
		e := ShareEntry{UserID: g.UserID, CreatedAt: g.CreatedAt}
		if a := byID[g.UserID]; a != nil {
			e.Username = a.Username
			e.IsActive = a.IsActive
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *shareService) Grant(dbc dbctx.Context, sheetID, userID int64) (*types.ShareGrant, error) {
	sheet, err := s.ownedSheet(dbc, sheetID)
	if err != nil {
		return nil, err
	}
	if userID <= 0 {
		return nil, apierr.Validationf("invalid_user_id", "user id is required")
	}
	agent, err := s.agentRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load agent: %w", err)
	}
	if agent == nil || agent.ManagerID != sheet.ManagerID {
		return nil, apierr.NotFoundf("agent_not_found", "user not found")
	}
	exists, err := s.shareRepo.Exists(dbc, sheet.ID, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("check grant: %w", err)
	}
	if exists {
		return nil, apierr.Conflictf("already_shared", "sheet is already shared with this user")
	}
	grant := &types.ShareGrant{
		ManagerID: sheet.ManagerID,
		SheetID:   sheet.ID,
		UserID:    agent.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.shareRepo.Create(dbc, grant); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflictf("already_shared", "sheet is already shared with this user")
		}
		return nil, fmt.Errorf("create grant: %w", err)
	}
	s.notifier.SheetShared(dbc.Ctx, sheet.ID, agent.ID)
	return grant, nil
}

func (s *shareService) Revoke(dbc dbctx.Context, sheetID, userID int64) error {
	sheet, err := s.ownedSheet(dbc, sheetID)
	if err != nil {
		return err
	}
	n, err := s.shareRepo.Delete(dbc, sheet.ID, userID)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	if n == 0 {
		return apierr.NotFoundf("share_not_found", "sheet is not shared with this user")
	}
	s.notifier.SheetUnshared(dbc.Ctx, sheet.ID, userID)
	return nil
}
