package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos/sheets"
	"github.com/yungbote/sheetshare-backend/internal/data/repos/user"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type SheetRepo = sheets.SheetRepo
type FieldRepo = sheets.FieldRepo
type CellRepo = sheets.CellRepo
type ShareGrantRepo = sheets.ShareGrantRepo
type APIKeyRepo = sheets.APIKeyRepo
type ViewPreferenceRepo = sheets.ViewPreferenceRepo
type RowKeyCollision = sheets.RowKeyCollision

type AgentRepo = user.AgentRepo

func NewSheetRepo(db *gorm.DB, log *logger.Logger) SheetRepo { return sheets.NewSheetRepo(db, log) }
func NewFieldRepo(db *gorm.DB, log *logger.Logger) FieldRepo { return sheets.NewFieldRepo(db, log) }
func NewCellRepo(db *gorm.DB, log *logger.Logger) CellRepo   { return sheets.NewCellRepo(db, log) }
func NewShareGrantRepo(db *gorm.DB, log *logger.Logger) ShareGrantRepo {
	return sheets.NewShareGrantRepo(db, log)
}
func NewAPIKeyRepo(db *gorm.DB, log *logger.Logger) APIKeyRepo { return sheets.NewAPIKeyRepo(db, log) }
func NewViewPreferenceRepo(db *gorm.DB, log *logger.Logger) ViewPreferenceRepo {
	return sheets.NewViewPreferenceRepo(db, log)
}
func NewAgentRepo(db *gorm.DB, log *logger.Logger) AgentRepo { return user.NewAgentRepo(db, log) }
