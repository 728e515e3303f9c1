package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type ViewPreferenceService interface {
	Get(dbc dbctx.Context) (*types.ViewPreference, error)
	Set(dbc dbctx.Context, viewType types.ViewType) (*types.ViewPreference, error)
}

type viewPreferenceService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ViewPreferenceRepo
}

func NewViewPreferenceService(db *gorm.DB, log *logger.Logger, repo repos.ViewPreferenceRepo) ViewPreferenceService {
	return &viewPreferenceService{db: db, log: log.With("service", "ViewPreferenceService"), repo: repo}
}

// Get creates the card-view default on first read.
func (s *viewPreferenceService) Get(dbc dbctx.Context) (*types.ViewPreference, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	pref, err := s.repo.GetByManager(dbc, p.ID)
	if err != nil {
		return nil, err
	}
	if pref != nil {
		return pref, nil
	}
	return s.repo.Upsert(dbc, p.ID, types.ViewCard)
}

func (s *viewPreferenceService) Set(dbc dbctx.Context, viewType types.ViewType) (*types.ViewPreference, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if !viewType.Valid() {
		return nil, apierr.Validationf("invalid_view_type", "view_type must be 0 (card) or 1 (table)")
	}
	return s.repo.Upsert(dbc, p.ID, viewType)
}
