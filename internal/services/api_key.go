package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type APIKeyService interface {
	// Get returns nil when the caller has not generated a key yet.
	Get(dbc dbctx.Context) (*types.APIKey, error)
	Rotate(dbc dbctx.Context) (*types.APIKey, error)
	Verify(dbc dbctx.Context, customerID int64, key string) error
}

type apiKeyService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.APIKeyRepo
}

func NewAPIKeyService(db *gorm.DB, log *logger.Logger, repo repos.APIKeyRepo) APIKeyService {
	return &apiKeyService{db: db, log: log.With("service", "APIKeyService"), repo: repo}
}

func (s *apiKeyService) Get(dbc dbctx.Context) (*types.APIKey, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByCustomer(dbc, p.ID)
}

func (s *apiKeyService) Rotate(dbc dbctx.Context) (*types.APIKey, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	key, err := s.repo.Upsert(dbc, p.ID, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("store api key: %w", err)
	}
	s.log.Info("API key rotated", "customer_id", p.ID)
	return key, nil
}

func (s *apiKeyService) Verify(dbc dbctx.Context, customerID int64, key string) error {
	key = strings.TrimSpace(key)
	if customerID <= 0 || key == "" {
		return apierr.Validationf("missing_parameters", "both customer_id and apikey are required")
	}
	ok, err := s.repo.Matches(dbc, customerID, key)
	if err != nil {
		return fmt.Errorf("check api key: %w", err)
	}
	if !ok {
		return apierr.Unauthorizedf("invalid_api_key", "invalid customer_id or apikey")
	}
	return nil
}
