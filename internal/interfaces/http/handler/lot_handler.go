package handler

import (
	"context"
	"encoding/json"
	"net/http"

	lotapp "github.com/carbure/backend/internal/application/lot"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/carbure/backend/internal/infrastructure/cache"
	"github.com/carbure/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LotHandler handles transaction-record API endpoints
type LotHandler struct {
	BaseHandler
	lots        *lotapp.Service
	listings    cache.ScopeCache
	invalidator *cache.InvalidationDispatcher
	selection   SelectionPruner
	logger      *zap.Logger
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lots *lotapp.Service, listings cache.ScopeCache, invalidator *cache.InvalidationDispatcher, logger *zap.Logger) *LotHandler {
	return &LotHandler{
		lots:        lots,
		listings:    listings,
		invalidator: invalidator,
		logger:      logger,
	}
}

// WithSelectionPruner clears browsing selections after batch transitions
func (h *LotHandler) WithSelectionPruner(p SelectionPruner) *LotHandler {
	h.selection = p
	return h
}

func (h *LotHandler) pruneSelection(entityID uuid.UUID, ids []uuid.UUID) {
	if h.selection != nil && len(ids) > 0 {
		h.selection.DropSelection(entityID, ids)
	}
}

// RegisterRoutes registers lot routes on the API group
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lots := rg.Group("/lots")
	{
		lots.POST("", h.Create)
		lots.GET("", h.List)
		lots.GET("/:id", h.GetByID)
		lots.PUT("/:id", h.Update)
		lots.POST("/:id/duplicate", h.Duplicate)
		lots.POST("/send", h.Send)
		lots.POST("/accept", h.Accept)
		lots.POST("/reject", h.Reject)
		lots.POST("/cancel-acceptance", h.CancelAcceptance)
		lots.POST("/request-fix", h.RequestFix)
		lots.POST("/confirm-fix", h.ConfirmFix)
		lots.POST("/approve-fix", h.ApproveFix)
		lots.POST("/delete", h.Delete)
	}
}

// Create opens a new draft lot for the acting entity
func (h *LotHandler) Create(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req lotapp.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.lots.Create(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Created(c, resp)
}

// GetByID retrieves one lot
func (h *LotHandler) GetByID(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	resp, err := h.lots.GetByID(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List retrieves a scoped page of lots. The marshaled response is cached per
// scope; mutations drop whole scopes through the invalidation dispatcher.
func (h *LotHandler) List(c *gin.Context) {
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

	resp, err := h.lots.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.writeCached(c, scope, queryKey, dto.NewSuccessResponse(resp))
}

// Update patches a draft or correction-phase lot
func (h *LotHandler) Update(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req lotapp.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.lots.Update(c.Request.Context(), entityID, lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Success(c, resp)
}

// Duplicate copies a lot into a fresh draft
func (h *LotHandler) Duplicate(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	resp, scopes, err := h.lots.Duplicate(c.Request.Context(), entityID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.Created(c, resp)
}

// Send submits a batch of drafts to their recipients
func (h *LotHandler) Send(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req lotapp.SendLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.lots.Send(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.pruneSelection(entityID, resp.LotIDs)
	h.Success(c, resp)
}

// Accept accepts a batch of pending lots under one delivery mode
func (h *LotHandler) Accept(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req lotapp.AcceptLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := h.lots.Accept(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.pruneSelection(entityID, resp.LotIDs)
	h.Success(c, resp)
}

// Reject refuses a batch of pending lots with a mandatory comment
func (h *LotHandler) Reject(c *gin.Context) {
	h.commentedBatch(c, h.lots.Reject)
}

// CancelAcceptance reverts accepted lots back to pending
func (h *LotHandler) CancelAcceptance(c *gin.Context) {
	h.idBatch(c, h.lots.CancelAcceptance)
}

// RequestFix asks the sender to correct accepted lots
func (h *LotHandler) RequestFix(c *gin.Context) {
	h.commentedBatch(c, h.lots.RequestFix)
}

// ConfirmFix marks requested corrections as applied
func (h *LotHandler) ConfirmFix(c *gin.Context) {
	h.commentedBatch(c, h.lots.ConfirmFix)
}

// ApproveFix closes the correction loop on fixed lots
func (h *LotHandler) ApproveFix(c *gin.Context) {
	h.idBatch(c, h.lots.ApproveFix)
}

// Delete removes a batch of lots (physically for drafts, logically otherwise)
func (h *LotHandler) Delete(c *gin.Context) {
	h.idBatch(c, h.lots.Delete)
}

func (h *LotHandler) commentedBatch(c *gin.Context, op func(ctx context.Context, entityID uuid.UUID, req lotapp.CommentedLotsRequest) (*lotapp.MutationResponse, []view.Scope, error)) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req lotapp.CommentedLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := op(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.pruneSelection(entityID, resp.LotIDs)
	h.Success(c, resp)
}

func (h *LotHandler) idBatch(c *gin.Context, op func(ctx context.Context, entityID uuid.UUID, req lotapp.LotIDsRequest) (*lotapp.MutationResponse, []view.Scope, error)) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	var req lotapp.LotIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, scopes, err := op(c.Request.Context(), entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidator.Dispatch(c.Request.Context(), scopes)
	h.pruneSelection(entityID, resp.LotIDs)
	h.Success(c, resp)
}

// writeCached marshals the envelope once, stores it under the scope and
// serves the same bytes
func (h *LotHandler) writeCached(c *gin.Context, scope view.Scope, queryKey string, resp dto.Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		h.InternalError(c, "Failed to encode response")
		return
	}

	if err := h.listings.Set(c.Request.Context(), scope, queryKey, payload, 0); err != nil {
		h.logger.Warn("failed to cache lot listing", zap.Error(err))
	}

	c.Data(http.StatusOK, "application/json", payload)
}
