package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
	httpH "github.com/yungbote/sheetshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sheetshare-backend/internal/http/middleware"
	"github.com/yungbote/sheetshare-backend/internal/observability"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler      *httpH.AuthHandler
	AgentHandler     *httpH.AgentHandler
	SheetHandler     *httpH.SheetHandler
	FieldHandler     *httpH.FieldHandler
	ShareHandler     *httpH.ShareHandler
	SheetDataHandler *httpH.SheetDataHandler
	APIKeyHandler    *httpH.APIKeyHandler
	RealtimeHandler  *httpH.RealtimeHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/auth/signin", cfg.AuthHandler.SignIn)
			api.POST("/auth/signout", cfg.AuthHandler.SignOut)
		}
		if cfg.AgentHandler != nil {
			api.POST("/agents/register", cfg.AgentHandler.Register)
			api.POST("/agents/check-username", cfg.AgentHandler.CheckUsername)
		}
		// API key authenticated
		if cfg.APIKeyHandler != nil {
			api.GET("/sharecells", cfg.APIKeyHandler.SharedCells)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	}

	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireRole(auth.RoleAdministrator))
	{
		if cfg.AgentHandler != nil {
			admin.GET("/users", cfg.AgentHandler.List)
			admin.PATCH("/users/:id", cfg.AgentHandler.Update)
			admin.DELETE("/users/:id", cfg.AgentHandler.Delete)
			admin.POST("/users/:id/change-password", cfg.AgentHandler.ChangePassword)
		}
		if cfg.SheetHandler != nil {
			admin.GET("/sheets", cfg.SheetHandler.List)
			admin.POST("/sheets", cfg.SheetHandler.Create)
			admin.GET("/sheets/:id", cfg.SheetHandler.Get)
			admin.PATCH("/sheets/:id", cfg.SheetHandler.Update)
			admin.DELETE("/sheets/:id", cfg.SheetHandler.Delete)
			admin.GET("/view-preference", cfg.SheetHandler.GetViewPreference)
			admin.POST("/view-preference", cfg.SheetHandler.SetViewPreference)
		}
		if cfg.FieldHandler != nil {
			admin.GET("/sheets/:id/fields", cfg.FieldHandler.List)
			admin.POST("/sheets/:id/fields", cfg.FieldHandler.Create)
			admin.PATCH("/fields/:id", cfg.FieldHandler.Update)
			admin.DELETE("/fields/:id", cfg.FieldHandler.Delete)
		}
		if cfg.ShareHandler != nil {
			admin.GET("/sheets/:id/shares", cfg.ShareHandler.List)
			admin.POST("/sheets/:id/shares", cfg.ShareHandler.Grant)
			admin.DELETE("/sheets/:id/shares/:userId", cfg.ShareHandler.Revoke)
		}
		if cfg.SheetDataHandler != nil {
			admin.GET("/sheets/:id/data", cfg.SheetDataHandler.Get)
			admin.POST("/cells", cfg.SheetDataHandler.WriteCell)
			admin.DELETE("/rows", cfg.SheetDataHandler.DeleteRow)
		}
		if cfg.APIKeyHandler != nil {
			admin.GET("/apikey", cfg.APIKeyHandler.Get)
			admin.POST("/apikey", cfg.APIKeyHandler.Rotate)
		}
	}

	agent := protected.Group("/agent")
	agent.Use(cfg.AuthMiddleware.RequireRole(auth.RoleAgent))
	{
		if cfg.AgentHandler != nil {
			agent.GET("/profile", cfg.AgentHandler.Profile)
			agent.PATCH("/profile", cfg.AgentHandler.UpdateProfile)
		}
		if cfg.SheetHandler != nil {
			agent.GET("/sheets", cfg.SheetHandler.ListShared)
		}
		if cfg.FieldHandler != nil {
			agent.GET("/sheets/:id/fields", cfg.FieldHandler.List)
		}
		if cfg.SheetDataHandler != nil {
			agent.GET("/sheets/:id/data", cfg.SheetDataHandler.Get)
			agent.POST("/cells", cfg.SheetDataHandler.WriteCell)
			agent.DELETE("/rows", cfg.SheetDataHandler.DeleteRow)
		}
	}

	return r
}
