package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/http/response"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/sheetshare-backend/internal/services"
)

type APIKeyHandler struct {
	keyService       services.APIKeyService
	aggregateService services.AggregateService
}

func NewAPIKeyHandler(keyService services.APIKeyService, aggregateService services.AggregateService) *APIKeyHandler {
	return &APIKeyHandler{keyService: keyService, aggregateService: aggregateService}
}

// GET /api/admin/apikey
func (h *APIKeyHandler) Get(c *gin.Context) {
	key, err := h.keyService.Get(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	p, _ := ctxutil.GetPrincipal(c.Request.Context())
	var apiKey any
	if key != nil {
		apiKey = key.Key
	}
	response.RespondOK(c, gin.H{"api_key": apiKey, "customer_id": p.ID})
}

// POST /api/admin/apikey
func (h *APIKeyHandler) Rotate(c *gin.Context) {
	key, err := h.keyService.Rotate(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"api_key": key.Key, "customer_id": key.CustomerID})
}

// GET /api/sharecells?customer_id=&apikey=
func (h *APIKeyHandler) SharedCells(c *gin.Context) {
	rawCustomer := strings.TrimSpace(c.Query("customer_id"))
	apiKey := strings.TrimSpace(c.Query("apikey"))
	if rawCustomer == "" || apiKey == "" {
		response.RespondAPIError(c, apierr.Validationf("missing_parameters", "both customer_id and apikey are required"))
		return
	}
	customerID, err := strconv.ParseInt(rawCustomer, 10, 64)
	if err != nil || customerID <= 0 {
		response.RespondAPIError(c, apierr.Validationf("invalid_customer_id", "customer_id must be a positive integer"))
		return
	}
	sheets, err := h.aggregateService.SharedCells(requestDBC(c), customerID, apiKey)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"data": sheets})
}
