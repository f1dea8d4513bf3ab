package handler

import (
	settingsapp "github.com/carbure/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles entity-preference API endpoints
type SettingsHandler struct {
	BaseHandler
	settings *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes registers settings routes on the API group
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/settings")
	{
		group.GET("", h.Get)
		group.PUT("", h.Update)
	}
}

// Get returns the acting entity's display preferences
func (h *SettingsHandler) Get(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	resp, err := h.settings.Get(c.Request.Context(), entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update patches the acting entity's display preferences
func (h *SettingsHandler) Update(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req settingsapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.settings.Update(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
