package handler

import (
	"sync"

	"github.com/carbure/backend/internal/application/browse"
	lotapp "github.com/carbure/backend/internal/application/lot"
	stockapp "github.com/carbure/backend/internal/application/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogRouteSink records filter synchronizations in the server log. The HTTP
// deployment has no external route to mirror state into; the coordinator
// still pushes through it so the deferred write path stays exercised.
type LogRouteSink struct {
	logger *zap.Logger
}

// NewLogRouteSink creates a new LogRouteSink
func NewLogRouteSink(logger *zap.Logger) *LogRouteSink {
	return &LogRouteSink{logger: logger}
}

// SyncFilters implements browse.RouteSink
func (s *LogRouteSink) SyncFilters(filters view.FilterSet) {
	if s.logger != nil {
		s.logger.Debug("browse filters synchronized", zap.Int("keys", len(filters)))
	}
}

// CoordinatorFactory builds a fresh query-state coordinator for one entity
// session
type CoordinatorFactory func() *browse.Coordinator

// browseSessions keeps one coordinator per acting entity. The coordinator is
// the single owner of that entity's browsing state; requests reconcile it
// with the scope they name instead of rebuilding state from scratch.
type browseSessions struct {
	mu       sync.Mutex
	byEntity map[uuid.UUID]*browse.Coordinator
	create   CoordinatorFactory
}

func newBrowseSessions(create CoordinatorFactory) *browseSessions {
	return &browseSessions{
		byEntity: make(map[uuid.UUID]*browse.Coordinator),
		create:   create,
	}
}

func (s *browseSessions) forEntity(entityID uuid.UUID) *browse.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byEntity[entityID]; ok {
		return sess
	}
	sess := s.create()
	sess.SetEntity(entityID)
	s.byEntity[entityID] = sess
	return sess
}

// SelectionPruner clears ids from an entity's browsing selection once a
// mutation has moved them out of the scope the selection was made under
type SelectionPruner interface {
	DropSelection(entityID uuid.UUID, ids []uuid.UUID)
}

// BrowseHandler drives the query-state coordinator over HTTP: scoped listing
// pages, the per-category snapshot and the selection summary
type BrowseHandler struct {
	BaseHandler
	sessions *browseSessions
}

// NewBrowseHandler creates a new BrowseHandler
func NewBrowseHandler(create CoordinatorFactory) *BrowseHandler {
	return &BrowseHandler{sessions: newBrowseSessions(create)}
}

// DropSelection implements SelectionPruner for the entity's live session, if
// any
func (h *BrowseHandler) DropSelection(entityID uuid.UUID, ids []uuid.UUID) {
	h.sessions.mu.Lock()
	sess, ok := h.sessions.byEntity[entityID]
	h.sessions.mu.Unlock()
	if ok {
		sess.DropFromSelection(ids)
	}
}

// RegisterRoutes registers browse routes on the API group
func (h *BrowseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/browse")
	{
		group.GET("/lots", h.Lots)
		group.GET("/stocks", h.Stocks)
		group.GET("/summary", h.Summary)
		group.GET("/snapshot", h.Snapshot)
		group.GET("/state", h.State)
	}
}

// browseQuery binds the navigation parameters of a browse request
type browseQuery struct {
	Year     int    `form:"year"`
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"query"`
	Invalid  bool   `form:"invalid"`
	Deadline bool   `form:"deadline"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// session reconciles the entity's coordinator with the scope named by the
// request, then applies the secondary parameters through their regular set
// transitions. On failure the error response is already written.
func (h *BrowseHandler) session(c *gin.Context) (*browse.Coordinator, bool) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return nil, false
	}

	var params browseQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BadRequest(c, err.Error())
		return nil, false
	}

	sess := h.sessions.forEntity(entityID)
	if err := sess.Reconcile(browse.Observed{
		EntityID: entityID,
		Year:     params.Year,
		Status:   view.Status(params.Status),
		Category: view.Category(params.Category),
	}); err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	if filters := parseFilters(c); !filters.Equal(sess.Filters()) {
		sess.SetFilters(filters)
	}
	sess.SetSearch(params.Search)
	sess.SetInvalid(params.Invalid)
	sess.SetDeadline(params.Deadline)
	if params.SortBy != "" {
		order := params.Order
		if order == "" {
			order = "desc"
		}
		sess.SetOrder(params.SortBy, order)
	}
	if params.Limit > 0 && params.Limit != sess.Limit() {
		if err := sess.SetLimit(c.Request.Context(), params.Limit); err != nil {
			h.HandleError(c, err)
			return nil, false
		}
	}
	// Page first: moving page drops any previous selection, so an explicit
	// selection on this request must be applied after it.
	sess.SetPage(params.Page)
	if selection := c.QueryArray("selection"); len(selection) > 0 {
		ids := make([]uuid.UUID, 0, len(selection))
		for _, raw := range selection {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.BadRequest(c, "Invalid selection ID format")
				return nil, false
			}
			ids = append(ids, id)
		}
		sess.SetSelection(ids)
	}

	return sess, true
}

// Lots serves the current page of lots under the reconciled scope
func (h *BrowseHandler) Lots(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	page, err := sess.Lots(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lotapp.ToListResponse(page))
}

// Stocks serves the current page of custody positions
func (h *BrowseHandler) Stocks(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	page, err := sess.Stocks(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stockapp.ToListResponse(page))
}

// Summary aggregates the full filter scope, or exactly the selected rows
func (h *BrowseHandler) Summary(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	summary, err := sess.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Snapshot refreshes and returns the per-category counts of the scope
func (h *BrowseHandler) Snapshot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snapshot, err := sess.RefreshSnapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// browseState is the transport shape of a coordinator's current state
type browseState struct {
	EntityID  uuid.UUID      `json:"entity_id"`
	Year      int            `json:"year"`
	Status    view.Status    `json:"status"`
	Category  view.Category  `json:"category"`
	Filters   view.FilterSet `json:"filters"`
	Selection []uuid.UUID    `json:"selection"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
}

// State reports the coordinator's current scope without touching it
func (h *BrowseHandler) State(c *gin.Context) {
	entityID, err := getEntityID(c)
	if err != nil {
		h.MissingEntity(c)
		return
	}

	sess := h.sessions.forEntity(entityID)
	h.Success(c, browseState{
		EntityID:  sess.EntityID(),
		Year:      sess.Year(),
		Status:    sess.Status(),
		Category:  sess.Category(),
		Filters:   sess.Filters(),
		Selection: sess.Selection(),
		Page:      sess.Page(),
		Limit:     sess.Limit(),
	})
}
