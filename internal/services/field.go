package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/domain/sheets"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

const maxDisplayWidth = 2000

type CreateFieldInput struct {
	Title         string
	Type          string
	DisplayFormat string
	DisplayWidth  *int
}

type UpdateFieldInput struct {
	Title         *string
	Type          *string
	DisplayFormat *string
	DisplayWidth  *int
}

type FieldService interface {
	List(dbc dbctx.Context, sheetID int64) ([]*types.Field, error)
	Create(dbc dbctx.Context, sheetID int64, in CreateFieldInput) (*types.Field, error)
	Update(dbc dbctx.Context, fieldID int64, in UpdateFieldInput) (*types.Field, error)
	Delete(dbc dbctx.Context, fieldID int64) error
}

type fieldService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheetRepo repos.SheetRepo
	fieldRepo repos.FieldRepo
	shareRepo repos.ShareGrantRepo
	engine    RowEngine
	notifier  SheetNotifier
}

func NewFieldService(db *gorm.DB, log *logger.Logger, sheetRepo repos.SheetRepo, fieldRepo repos.FieldRepo, shareRepo repos.ShareGrantRepo, engine RowEngine, notifier SheetNotifier) FieldService {
	if notifier == nil {
		notifier = NewNoopSheetNotifier()
	}
	return &fieldService{
		db:        db,
		log:       log.With("service", "FieldService"),
		sheetRepo: sheetRepo,
		fieldRepo: fieldRepo,
		shareRepo: shareRepo,
		engine:    engine,
		notifier:  notifier,
	}
}

// List is open to anyone who can see the sheet; agents need the columns to
// render their rows.
func (s *fieldService) List(dbc dbctx.Context, sheetID int64) ([]*types.Field, error) {
	p, err := requirePrincipal(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID); err != nil {
		return nil, err
	}
	return s.fieldRepo.ListBySheet(dbc, sheetID)
}

func validDisplayWidth(w int) error {
	if w <= 0 || w > maxDisplayWidth {
		return apierr.Validationf("invalid_display_width", "display width must be between 1 and %d", maxDisplayWidth)
	}
	return nil
}

func (s *fieldService) Create(dbc dbctx.Context, sheetID int64, in CreateFieldInput) (*types.Field, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	sheet, err := loadVisibleSheet(dbc, s.sheetRepo, s.shareRepo, p, sheetID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validationf("invalid_title", "title is required")
	}
	fieldType, err := sheets.ParseFieldType(in.Type)
	if err != nil {
		return nil, apierr.Validation("invalid_field_type", err)
	}
	format, err := sheets.ParseDisplayFormat(in.DisplayFormat)
	if err != nil {
		return nil, apierr.Validation("invalid_display_format", err)
	}
	width := sheets.DefaultDisplayWidth
	if in.DisplayWidth != nil {
		width = *in.DisplayWidth
	}
	if err := validDisplayWidth(width); err != nil {
		return nil, err
	}

	created, err := s.fieldRepo.Create(dbc, []*types.Field{{
		ManagerID:     sheet.ManagerID,
		SheetID:       sheet.ID,
		Title:         title,
		Type:          fieldType,
		DisplayFormat: format,
		DisplayWidth:  width,
		CreatedAt:     time.Now().UTC(),
	}})
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	s.notifier.FieldsChanged(dbc.Ctx, sheet.ID)
	return created[0], nil
}

func (s *fieldService) ownedField(dbc dbctx.Context, fieldID int64) (*types.Field, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if fieldID <= 0 {
		return nil, apierr.Validationf("invalid_field_id", "invalid field id")
	}
	field, err := s.fieldRepo.GetByID(dbc, fieldID)
	if err != nil {
		return nil, fmt.Errorf("load field: %w", err)
	}
	if field == nil || field.ManagerID != p.ID {
		return nil, apierr.NotFoundf("field_not_found", "field not found")
	}
	return field, nil
}

func (s *fieldService) Update(dbc dbctx.Context, fieldID int64, in UpdateFieldInput) (*types.Field, error) {
	field, err := s.ownedField(dbc, fieldID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.Validationf("invalid_title", "title cannot be empty")
		}
		updates["title"] = title
		field.Title = title
	}
	if in.Type != nil {
		ft, err := sheets.ParseFieldType(*in.Type)
		if err != nil {
			return nil, apierr.Validation("invalid_field_type", err)
		}
		updates["type"] = ft
		field.Type = ft
	}
	if in.DisplayFormat != nil {
		df, err := sheets.ParseDisplayFormat(*in.DisplayFormat)
		if err != nil {
			return nil, apierr.Validation("invalid_display_format", err)
		}
		updates["display_format"] = df
		field.DisplayFormat = df
	}
	if in.DisplayWidth != nil {
		if err := validDisplayWidth(*in.DisplayWidth); err != nil {
			return nil, err
		}
		updates["display_width"] = *in.DisplayWidth
		field.DisplayWidth = *in.DisplayWidth
	}
	if len(updates) == 0 {
		return field, nil
	}
	if err := s.fieldRepo.UpdateFields(dbc, field.ID, updates); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	s.notifier.FieldsChanged(dbc.Ctx, field.SheetID)
	return field, nil
}

func (s *fieldService) Delete(dbc dbctx.Context, fieldID int64) error {
	field, err := s.ownedField(dbc, fieldID)
	if err != nil {
		return err
	}
	if err := s.engine.DeleteField(dbc, field.ID); err != nil {
		return err
	}
	s.notifier.FieldsChanged(dbc.Ctx, field.SheetID)
	return nil
}
