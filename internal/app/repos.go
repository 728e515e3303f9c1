package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type Repos struct {
	Sheet          repos.SheetRepo
	Field          repos.FieldRepo
	Cell           repos.CellRepo
	ShareGrant     repos.ShareGrantRepo
	APIKey         repos.APIKeyRepo
	ViewPreference repos.ViewPreferenceRepo
	Agent          repos.AgentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Sheet:          repos.NewSheetRepo(db, log),
		Field:          repos.NewFieldRepo(db, log),
		Cell:           repos.NewCellRepo(db, log),
		ShareGrant:     repos.NewShareGrantRepo(db, log),
		APIKey:         repos.NewAPIKeyRepo(db, log),
		ViewPreference: repos.NewViewPreferenceRepo(db, log),
		Agent:          repos.NewAgentRepo(db, log),
	}
}
