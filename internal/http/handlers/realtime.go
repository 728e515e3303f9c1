package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/realtime"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type RealtimeHandler struct {
	Log          *logger.Logger
	Hub          *realtime.SSEHub
	sheetService services.SheetService

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, sheetService services.SheetService) *RealtimeHandler {
	return &RealtimeHandler{
		Log:          log.With("handler", "RealtimeHandler"),
		Hub:          hub,
		sheetService: sheetService,
		clients:      make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
// Subscribes the caller to every sheet it can see plus its own user channel.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	p, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorEnvelope{Error: response.APIError{Message: "not authenticated", Code: "unauthorized"}})
		return
	}
	sheetIDs, err := h.sheetService.VisibleSheetIDs(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	client := h.Hub.NewSSEClient(p.ID)
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.Hub.AddChannel(client, realtime.UserChannel(p.Role.String(), p.ID))
	for _, id := range sheetIDs {
		for _, ch := range services.StreamChannels(p, id) {
			h.Hub.AddChannel(client, ch)
		}
	}
	h.Log.Info("SSEStream open", "user_id", p.ID, "role", p.Role.String(), "sheets", len(sheetIDs))

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()
	h.Hub.CloseClient(client)
}

// CloseAll ends every open stream; used on shutdown.
func (h *RealtimeHandler) CloseAll() {
	h.mu.Lock()
	clients := make([]*realtime.SSEClient, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, id)
	}
	h.mu.Unlock()
	for _, client := range clients {
		h.Hub.CloseClient(client)
	}
}
