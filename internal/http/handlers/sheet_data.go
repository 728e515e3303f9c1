package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type SheetDataHandler struct {
	dataService services.SheetDataService
}

func NewSheetDataHandler(dataService services.SheetDataService) *SheetDataHandler {
	return &SheetDataHandler{dataService: dataService}
}

// GET /api/admin/sheets/:id/data
// GET /api/agent/sheets/:id/data
func (h *SheetDataHandler) Get(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, err := h.dataService.Get(requestDBC(c), sheetID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, data)
}

// POST /api/admin/cells
// POST /api/agent/cells
// body: { "sheet_id": 1, "field_id": 2, "row_key": "<uuid>", "value": "..." }
func (h *SheetDataHandler) WriteCell(c *gin.Context) {
	var req struct {
		SheetID int64  `json:"sheet_id"`
		FieldID int64  `json:"field_id"`
		RowKey  string `json:"row_key"`
		Value   string `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.dataService.WriteCell(requestDBC(c), services.WriteCellInput{
		SheetID: req.SheetID,
		FieldID: req.FieldID,
		RowKey:  req.RowKey,
		Value:   req.Value,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/admin/rows?sheet_id=&row_key=&user_id=
// DELETE /api/agent/rows?sheet_id=&row_key=
func (h *SheetDataHandler) DeleteRow(c *gin.Context) {
	sheetID, err := strconv.ParseInt(c.Query("sheet_id"), 10, 64)
	if err != nil || sheetID <= 0 {
		response.RespondAPIError(c, apierr.Validationf("invalid_sheet_id", "invalid sheet_id"))
		return
	}
	owner, err := optionalOwner(c.Query("user_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.dataService.DeleteRow(requestDBC(c), services.DeleteRowRequest{
		SheetID:     sheetID,
		RowKey:      c.Query("row_key"),
		OwnerUserID: owner,
	}); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
