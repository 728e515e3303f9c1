package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/modules/rows"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type Services struct {
	Engine services.RowEngine

	Auth           services.AuthService
	Agent          services.AgentService
	Sheet          services.SheetService
	Field          services.FieldService
	Share          services.ShareService
	SheetData      services.SheetDataService
	APIKey         services.APIKeyService
	ViewPreference services.ViewPreferenceService
	Aggregate      services.AggregateService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	engine := rows.New(rows.UsecasesDeps{
		DB:      db,
		Log:     log,
		Sheets:  repos.Sheet,
		Fields:  repos.Field,
		Cells:   repos.Cell,
		Shares:  repos.ShareGrant,
		Metrics: metrics,
	})
	notifier := services.NewSheetNotifier(&services.BusEmitter{Bus: clients.Bus, Log: log.With("service", "SSEEmitter")})

	limiter := services.NewNoopRateLimiter()
	if clients.Redis != nil {
		limiter = services.NewRedisRateLimiter(clients.Redis, cfg.APIRateLimitPerMinute, time.Minute)
	}
	apiKeys := services.NewAPIKeyService(db, log, repos.APIKey)

	return Services{
		Engine:         engine,
		Auth:           services.NewAuthService(db, log, repos.Agent, clients.Directory, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Agent:          services.NewAgentService(db, log, repos.Agent, repos.ShareGrant, clients.Directory),
		Sheet:          services.NewSheetService(db, log, repos.Sheet, repos.ShareGrant, engine, notifier),
		Field:          services.NewFieldService(db, log, repos.Sheet, repos.Field, repos.ShareGrant, engine, notifier),
		Share:          services.NewShareService(db, log, repos.Sheet, repos.ShareGrant, repos.Agent, notifier),
		SheetData:      services.NewSheetDataService(db, log, repos.Sheet, repos.Field, repos.ShareGrant, repos.Agent, engine, notifier, metrics),
		APIKey:         apiKeys,
		ViewPreference: services.NewViewPreferenceService(db, log, repos.ViewPreference),
		Aggregate:      services.NewAggregateService(db, log, repos.Sheet, repos.Field, repos.Cell, repos.Agent, apiKeys, limiter, metrics),
	}
}
