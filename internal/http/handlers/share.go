package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type ShareHandler struct {
	shareService services.ShareService
}

func NewShareHandler(shareService services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// GET /api/admin/sheets/:id/shares
func (h *ShareHandler) List(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.shareService.List(requestDBC(c), sheetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shares": entries})
}

// POST /api/admin/sheets/:id/shares
// body: { "user_id": 42 }
func (h *ShareHandler) Grant(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	grant, err := h.shareService.Grant(requestDBC(c), sheetID, req.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"share": grant})
}

// DELETE /api/admin/sheets/:id/shares/:userId
func (h *ShareHandler) Revoke(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	if err := h.shareService.Revoke(requestDBC(c), sheetID, userID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
