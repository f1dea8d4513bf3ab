package handler

import (
	"strconv"

	declapp "github.com/carbure/backend/internal/application/declaration"
	"github.com/carbure/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
)

// DeclarationHandler handles declaration-period API endpoints
type DeclarationHandler struct {
	BaseHandler
	declarations *declapp.Service
	invalidator  *cache.InvalidationDispatcher
}

// NewDeclarationHandler creates a new DeclarationHandler
func NewDeclarationHandler(declarations *declapp.Service, invalidator *cache.InvalidationDispatcher) *DeclarationHandler {
	return &DeclarationHandler{
		declarations: declarations,
		invalidator:  invalidator,
	}
}

// RegisterRoutes registers declaration routes on the API group
func (h *DeclarationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	declarations := rg.Group("/declarations")
	{
		declarations.GET("", h.GetSummary)
		declarations.GET("/years/:year", h.ListYear)
		declarations.POST("/validate", h.Validate)
		declarations.POST("/invalidate", h.Invalidate)
	}
}

// periodParam reads the YYYYMM period from the query string
func periodParam(c *gin.Context) (int, bool) {
	period, err := strconv.Atoi(c.Query("period"))
	if err != nil {
		return 0, false
	}
	return period, true
}

// GetSummary reports the roll-up counts for one (entity, period)
func (h *DeclarationHandler) GetSummary(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	period, ok := periodParam(c)
	if !ok {
		h.BadRequest(c, "A numeric period parameter is required")
		return
	}

	resp, err := h.declarations.GetSummary(c.Request.Context(), entityID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListYear reports the declaration state of every period in a year
func (h *DeclarationHandler) ListYear(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}

	resp, err := h.declarations.ListYear(c.Request.Context(), entityID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Validate declares a period, freezing its settled lots
func (h *DeclarationHandler) Validate(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	period, ok := periodParam(c)
	if !ok {
		h.BadRequest(c, "A numeric period parameter is required")
		return
	}

	resp, scopes, err := h.declarations.Validate(c.Request.Context(), entityID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Success(c, resp)
}

// Invalidate reopens a declared period, un-freezing its lots
func (h *DeclarationHandler) Invalidate(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	period, ok := periodParam(c)
	if !ok {
		h.BadRequest(c, "A numeric period parameter is required")
		return
	}

	resp, scopes, err := h.declarations.Invalidate(c.Request.Context(), entityID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Success(c, resp)
}
