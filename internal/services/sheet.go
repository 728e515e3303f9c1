package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type CreateSheetInput struct {
	SheetNumber string
	SheetName   string
}

// UpdateSheetInput leaves nil fields unchanged.
type UpdateSheetInput struct {
	SheetNumber *string
	SheetName   *string
}

type SheetService interface {
	List(dbc dbctx.Context) ([]*types.SheetSummary, error)
	Create(dbc dbctx.Context, in CreateSheetInput) (*types.Sheet, error)
	Get(dbc dbctx.Context, sheetID int64) (*types.Sheet, error)
	Update(dbc dbctx.Context, sheetID int64, in UpdateSheetInput) (*types.Sheet, error)
	Delete(dbc dbctx.Context, sheetID int64) error

	ListShared(dbc dbctx.Context) ([]*types.Sheet, error)
	VisibleSheetIDs(dbc dbctx.Context) ([]int64, error)
}

type sheetService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheetRepo repos.SheetRepo
	shareRepo repos.ShareGrantRepo
	engine    RowEngine
	notifier  SheetNotifier
}

func NewSheetService(db *gorm.DB, log *logger.Logger, sheetRepo repos.SheetRepo, shareRepo repos.ShareGrantRepo, engine RowEngine, notifier SheetNotifier) SheetService {
	if notifier == nil {
		notifier = NewNoopSheetNotifier()
	}
	return &sheetService{
		db:        db,
		log:       log.With("service", "SheetService"),
		sheetRepo: sheetRepo,
		shareRepo: shareRepo,
		engine:    engine,
		notifier:  notifier,
	}
}

func (s *sheetService) List(dbc dbctx.Context) ([]*types.SheetSummary, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	sheets, err := s.sheetRepo.ListByManager(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	ids := make([]int64, 0, len(sheets))
	for _, sh := range sheets {
		ids = append(ids, sh.ID)
	}
	counts, err := s.shareRepo.CountBySheetIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("count grants: %w", err)
	}
	out := make([]*types.SheetSummary, 0, len(sheets))
	for _, sh := range sheets {
		out = append(out, &types.SheetSummary{Sheet: *sh, ShareCount: counts[sh.ID]})
	}
	return out, nil
}

func (s *sheetService) Create(dbc dbctx.Context, in CreateSheetInput) (*types.Sheet, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.SheetNumber)
	name := strings.TrimSpace(in.SheetName)
	if number == "" || name == "" {
		return nil, apierr.Validationf("invalid_sheet", "sheet number and sheet name are required")
	}

	var created *types.Sheet
	err = withTx(s.db, dbc, func(dbc dbctx.Context) error {
		if err := s.checkUnique(dbc, p.ID, number, name, 0); err != nil {
			return err
		}
		now := time.Now().UTC()
		rows, err := s.sheetRepo.Create(dbc, []*types.Sheet{{
			ManagerID:   p.ID,
			SheetNumber: number,
			SheetName:   name,
			CreatedAt:   now,
			UpdatedAt:   now,
		}})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflictf("sheet_exists", "a sheet with this number or name already exists")
			}
			return fmt.Errorf("create sheet: %w", err)
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Sheet created", "sheet_id", created.ID, "manager_id", p.ID)
	return created, nil
}

func (s *sheetService) checkUnique(dbc dbctx.Context, managerID int64, number, name string, excludeID int64) error {
	if number != "" {
		taken, err := s.sheetRepo.NumberTaken(dbc, managerID, number, excludeID)
		if err != nil {
			return fmt.Errorf("check sheet number: %w", err)
		}
		if taken {
			return apierr.Conflictf("sheet_number_taken", "sheet number %q already exists", number)
		}
	}
	if name != "" {
		taken, err := s.sheetRepo.NameTaken(dbc, managerID, name, excludeID)
		if err != nil {
			return fmt.Errorf("check sheet name: %w", err)
		}
		if taken {
			return apierr.Conflictf("sheet_name_taken", "sheet name %q already exists", name)
		}
	}
	return nil
}

func (s *sheetService) Get(dbc dbctx.Context, sheetID int64) (*types.Sheet, error) {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
}

func (s *sheetService) Update(dbc dbctx.Context, sheetID int64, in UpdateSheetInput) (*types.Sheet, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Sheet
	err = withTx(s.db, dbc, func(dbc dbctx.Context) error {
		sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{}
		var number, name string
		if in.SheetNumber != nil {
			number = strings.TrimSpace(*in.SheetNumber)
			if number == "" {
				return apierr.Validationf("invalid_sheet", "sheet number cannot be empty")
			}
			if number != sheet.SheetNumber {
				updates["sheet_number"] = number
				sheet.SheetNumber = number
			} else {
				number = ""
			}
		}
		if in.SheetName != nil {
			name = strings.TrimSpace(*in.SheetName)
			if name == "" {
				return apierr.Validationf("invalid_sheet", "sheet name cannot be empty")
			}
			if name != sheet.SheetName {
				updates["sheet_name"] = name
				sheet.SheetName = name
			} else {
				name = ""
			}
		}
		if len(updates) == 0 {
			out = sheet
			return nil
		}
		if err := s.checkUnique(dbc, p.ID, number, name, sheet.ID); err != nil {
			return err
		}
		sheet.UpdatedAt = time.Now().UTC()
		updates["updated_at"] = sheet.UpdatedAt
		if err := s.sheetRepo.UpdateFields(dbc, sheet.ID, updates); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflictf("sheet_exists", "a sheet with this number or name already exists")
			}
			return fmt.Errorf("update sheet: %w", err)
		}
		out = sheet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sheetService) Delete(dbc dbctx.Context, sheetID int64) error {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return err
	}
	sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
	if err != nil {
		return err
	}
	if err := s.engine.DeleteSheet(dbc, sheet.ID); err != nil {
		return err
	}
	s.log.Info("Sheet deleted", "sheet_id", sheet.ID, "manager_id", p.ID)
	s.notifier.SheetDeleted(dbc.Ctx, sheet.ID)
	return nil
}

func (s *sheetService) ListShared(dbc dbctx.Context) ([]*types.Sheet, error) {
	p, err := requireAgent(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.sheetRepo.ListSharedWithUser(dbc, p.ID)
}

// VisibleSheetIDs lists the sheets the caller may stream events for.
func (s *sheetService) VisibleSheetIDs(dbc dbctx.Context) ([]int64, error) {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case auth.RoleAdministrator:
		sheets, err := s.sheetRepo.ListByManager(dbc, p.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(sheets))
		for _, sh := range sheets {
			ids = append(ids, sh.ID)
		}
		return ids, nil
	case auth.RoleAgent:
		return s.shareRepo.ListSheetIDsByUser(dbc, p.ID)
	default:
		return nil, apierr.Forbiddenf("unknown_role", "principal has no role")
	}
}
