package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type FieldHandler struct {
	fieldService services.FieldService
}

func NewFieldHandler(fieldService services.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

// GET /api/admin/sheets/:id/fields
func (h *FieldHandler) List(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	fields, err := h.fieldService.List(requestDBC(c), sheetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"fields": fields})
}

// POST /api/admin/sheets/:id/fields
// body: { "title": "...", "type": "static" | "dynamic", "display_format": "text", "display_width": 150 }
func (h *FieldHandler) Create(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title         string `json:"title"`
		Type          string `json:"type"`
		DisplayFormat string `json:"display_format"`
		DisplayWidth  *int   `json:"display_width"`
	}
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.fieldService.Create(requestDBC(c), sheetID, services.CreateFieldInput{
		Title:         req.Title,
		Type:          req.Type,
		DisplayFormat: req.DisplayFormat,
		DisplayWidth:  req.DisplayWidth,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"field": field})
}

// PATCH /api/admin/fields/:id
func (h *FieldHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title         *string `json:"title"`
		Type          *string `json:"type"`
		DisplayFormat *string `json:"display_format"`
		DisplayWidth  *int    `json:"display_width"`
	}
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.fieldService.Update(requestDBC(c), id, services.UpdateFieldInput{
		Title:         req.Title,
		Type:          req.Type,
		DisplayFormat: req.DisplayFormat,
		DisplayWidth:  req.DisplayWidth,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"field": field})
}

// DELETE /api/admin/fields/:id
func (h *FieldHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.fieldService.Delete(requestDBC(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
