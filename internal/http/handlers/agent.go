package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type AgentHandler struct {
	agentService services.AgentService
}

func NewAgentHandler(agentService services.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// POST /api/agents/register
// body: { "customer_id": 12, "username": "...", "password": "..." }
func (h *AgentHandler) Register(c *gin.Context) {
	var req struct {
		CustomerID int64  `json:"customer_id"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	agent, err := h.agentService.Register(requestDBC(c), services.RegisterAgentInput{
		CustomerID: req.CustomerID,
		Username:   req.Username,
		Password:   req.Password,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"message": "registration received, awaiting approval",
		"user":    agent,
	})
}

// POST /api/agents/check-username
func (h *AgentHandler) CheckUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if !bindJSON(c, &req) {
		return
	}
	exists, err := h.agentService.UsernameExists(requestDBC(c), req.Username)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exists": exists})
}

// GET /api/admin/users
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.agentService.List(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": agents})
}

// PATCH /api/admin/users/:id
// body: { "is_active": true }
func (h *AgentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.IsActive == nil {
		response.RespondAPIError(c, apierr.Validationf("missing_is_active", "is_active is required"))
		return
	}
	agent, err := h.agentService.SetActive(requestDBC(c), id, *req.IsActive)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": agent})
}

// DELETE /api/admin/users/:id
func (h *AgentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.agentService.Delete(requestDBC(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/admin/users/:id/change-password
func (h *AgentHandler) ChangePassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.agentService.ChangePassword(requestDBC(c), id, req.NewPassword); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/agent/profile
func (h *AgentHandler) Profile(c *gin.Context) {
	prof, err := h.agentService.Profile(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": prof})
}

// PATCH /api/agent/profile
func (h *AgentHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	prof, err := h.agentService.UpdateProfile(requestDBC(c), services.UpdateProfileInput{
		Username:        req.Username,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": prof})
}
