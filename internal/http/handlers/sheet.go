package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type SheetHandler struct {
	sheetService services.SheetService
	prefService  services.ViewPreferenceService
}

func NewSheetHandler(sheetService services.SheetService, prefService services.ViewPreferenceService) *SheetHandler {
	return &SheetHandler{sheetService: sheetService, prefService: prefService}
}

// GET /api/admin/sheets
func (h *SheetHandler) List(c *gin.Context) {
	sheets, err := h.sheetService.List(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sheets": sheets})
}

// POST /api/admin/sheets
// body: { "sheet_number": "...", "sheet_name": "..." }
func (h *SheetHandler) Create(c *gin.Context) {
	var req struct {
		SheetNumber string `json:"sheet_number"`
		SheetName   string `json:"sheet_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.sheetService.Create(requestDBC(c), services.CreateSheetInput{
		SheetNumber: req.SheetNumber,
		SheetName:   req.SheetName,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sheet": sheet})
}

// GET /api/admin/sheets/:id
func (h *SheetHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sheet, err := h.sheetService.Get(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sheet": sheet})
}

// PATCH /api/admin/sheets/:id
func (h *SheetHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SheetNumber *string `json:"sheet_number"`
		SheetName   *string `json:"sheet_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.sheetService.Update(requestDBC(c), id, services.UpdateSheetInput{
		SheetNumber: req.SheetNumber,
		SheetName:   req.SheetName,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sheet": sheet})
}

// DELETE /api/admin/sheets/:id
func (h *SheetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sheetService.Delete(requestDBC(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/agent/sheets
func (h *SheetHandler) ListShared(c *gin.Context) {
	sheets, err := h.sheetService.ListShared(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sheets": sheets})
}

// GET /api/admin/view-preference
func (h *SheetHandler) GetViewPreference(c *gin.Context) {
	pref, err := h.prefService.Get(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"view_type": pref.ViewType})
}

// POST /api/admin/view-preference
// body: { "view_type": 0 | 1 }
func (h *SheetHandler) SetViewPreference(c *gin.Context) {
	var req struct {
		ViewType *int `json:"view_type"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.ViewType == nil {
		response.RespondAPIError(c, apierr.Validationf("invalid_view_type", "view_type is required"))
		return
	}
	pref, err := h.prefService.Set(requestDBC(c), types.ViewType(*req.ViewType))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"view_type": pref.ViewType})
}
