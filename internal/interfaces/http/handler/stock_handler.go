package handler

import (
	"encoding/json"
	"net/http"

	stockapp "github.com/carbure/backend/internal/application/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/carbure/backend/internal/infrastructure/cache"
	"github.com/carbure/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockHandler handles custody-position API endpoints
type StockHandler struct {
	BaseHandler
	stocks      *stockapp.Service
	listings    cache.ScopeCache
	invalidator *cache.InvalidationDispatcher
	selection   SelectionPruner
	logger      *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stocks *stockapp.Service, listings cache.ScopeCache, invalidator *cache.InvalidationDispatcher, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stocks:      stocks,
		listings:    listings,
		invalidator: invalidator,
		logger:      logger,
	}
}

// WithSelectionPruner clears browsing selections after positions leave scope
func (h *StockHandler) WithSelectionPruner(p SelectionPruner) *StockHandler {
	h.selection = p
	return h
}

func (h *StockHandler) pruneSelection(entityID uuid.UUID, ids []uuid.UUID) {
	if h.selection != nil && len(ids) > 0 {
		h.selection.DropSelection(entityID, ids)
	}
}

// RegisterRoutes registers stock routes on the API group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stocks := rg.Group("/stocks")
	{
		stocks.GET("", h.List)
		stocks.GET("/:id", h.GetByID)
		stocks.POST("/split", h.Split)
		stocks.POST("/flush", h.Flush)
		stocks.POST("/transform", h.Transform)
		stocks.POST("/transformations/:id/cancel", h.CancelTransformation)
	}
}

// GetByID retrieves one custody position
func (h *StockHandler) GetByID(c *gin.Context) {
	stockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stock ID format")
		return
	}

	resp, err := h.stocks.GetByID(c.Request.Context(), stockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List retrieves a scoped page of stocks, cached per scope like lot listings
func (h *StockHandler) List(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	query, err := parseListQuery(c, entityID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	scope := view.Scope{EntityID: query.EntityID, Year: query.Year, Status: query.Status}
	queryKey := query.ScopeKey()

	if payload, ok, err := h.listings.Get(c.Request.Context(), scope, queryKey); err == nil && ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	resp, err := h.stocks.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload, err := json.Marshal(dto.NewSuccessResponse(resp))
	if err != nil {
		h.InternalError(c, "Failed to encode response")
		return
	}
	if err := h.listings.Set(c.Request.Context(), scope, queryKey, payload, 0); err != nil {
		h.logger.Warn("failed to cache stock listing", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// Split carves a child delivery lot out of a position
func (h *StockHandler) Split(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req stockapp.SplitStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.stocks.Split(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Created(c, resp)
}

// Flush empties a position irreversibly. Flushing what is already empty is
// reported, not rejected.
func (h *StockHandler) Flush(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req stockapp.FlushStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	alreadyEmpty, scopes, err := h.stocks.Flush(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.pruneSelection(entityID, []uuid.UUID{req.StockID})
	h.Success(c, gin.H{"already_empty": alreadyEmpty})
}

// Transform declares an ethanol-to-ETBE transformation over allocated stocks
func (h *StockHandler) Transform(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req stockapp.TransformETBERequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.stocks.Transform(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Created(c, resp)
}

// CancelTransformation reverts a transformation, restoring its allocations
func (h *StockHandler) CancelTransformation(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	transformationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transformation ID format")
		return
	}

	scopes, err := h.stocks.CancelTransformation(c.Request.Context(), entityID, transformationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.NoContent(c)
}
