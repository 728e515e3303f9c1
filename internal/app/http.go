package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/http"
	httpH "github.com/yungbote/sheetshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sheetshare-backend/internal/http/middleware"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Agent     *httpH.AgentHandler
	Sheet     *httpH.SheetHandler
	Field     *httpH.FieldHandler
	Share     *httpH.ShareHandler
	SheetData *httpH.SheetDataHandler
	APIKey    *httpH.APIKeyHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Auth:      httpH.NewAuthHandler(services.Auth, cfg.SecureCookie),
		Agent:     httpH.NewAgentHandler(services.Agent),
		Sheet:     httpH.NewSheetHandler(services.Sheet, services.ViewPreference),
		Field:     httpH.NewFieldHandler(services.Field),
		Share:     httpH.NewShareHandler(services.Share),
		SheetData: httpH.NewSheetDataHandler(services.SheetData),
		APIKey:    httpH.NewAPIKeyHandler(services.APIKey, services.Aggregate),
		Realtime:  httpH.NewRealtimeHandler(log, sseHub, services.Sheet),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.ServiceName,
		TracingEnabled:   cfg.TracingEnabled,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   middleware.Auth,
		AuthHandler:      handlers.Auth,
		AgentHandler:     handlers.Agent,
		SheetHandler:     handlers.Sheet,
		FieldHandler:     handlers.Field,
		ShareHandler:     handlers.Share,
		SheetDataHandler: handlers.SheetData,
		APIKeyHandler:    handlers.APIKey,
		RealtimeHandler:  handlers.Realtime,
		HealthHandler:    handlers.Health,
	})
}
