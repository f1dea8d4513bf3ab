package browse

import (
	"context"
	"sync"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStaleResult marks a response issued under a scope that is no longer the
// current one. Callers drop the payload and re-fetch.
var ErrStaleResult = shared.NewDomainError("STALE_RESULT", "Result was issued for a scope that has since changed")

// Coordinator is the single owner of the browsing query state. Every set
// operation keeps the dependent fields (category, selection, page) consistent
// with the scope they point at; no other component mutates this state.
type Coordinator struct {
	mu sync.Mutex

	entityID uuid.UUID
	year     int
	status   view.Status
	category view.Category

	filters      view.FilterSet
	routeFilters view.FilterSet
	search       string
	invalid      bool
	deadline     bool
	sortBy       string
	order        string
	selection    map[uuid.UUID]struct{}
	page         int
	limit        int
	snapshot     *view.Snapshot

	gateway   Gateway
	scheduler Scheduler
	limits    LimitStore
	route     RouteSink
	logger    *zap.Logger
}

// Observed carries the externally visible scope (route-driven navigation)
// that Reconcile compares against the coordinator's own state.
type Observed struct {
	EntityID uuid.UUID
	Year     int
	Status   view.Status
	Category view.Category
}

func NewCoordinator(gateway Gateway, scheduler Scheduler, limits LimitStore, route RouteSink, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		filters:      view.NewFilterSet(),
		routeFilters: view.NewFilterSet(),
		selection:    make(map[uuid.UUID]struct{}),
		limit:        settings.DefaultPageLimit,
		order:        "desc",
		gateway:      gateway,
		scheduler:    scheduler,
		limits:       limits,
		route:        route,
		logger:       logger,
	}
}

// resetScope reverts the scope-dependent fields: filters back to the
// externally synchronized value, toggles off, selection empty, first page
func (c *Coordinator) resetScope() {
	c.filters = c.routeFilters.Clone()
	c.invalid = false
	c.deadline = false
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
}

func (c *Coordinator) recomputeCategory() {
	c.category = view.DefaultCategory(c.status, c.snapshot)
}

// SetEntity switches the owning company. The snapshot belongs to the previous
// (entity, year) pair and is dropped until the next one arrives.
func (c *Coordinator) SetEntity(entityID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entityID = entityID
	c.snapshot = nil
	c.recomputeCategory()
	c.resetScope()
}

func (c *Coordinator) SetYear(year int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.year = year
	c.snapshot = nil
	c.recomputeCategory()
	c.resetScope()
}

func (c *Coordinator) SetStatus(status view.Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown status tab")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.recomputeCategory()
	c.resetScope()
	return nil
}

// SetSnapshot records fresh per-category counts and recomputes the default
// category from them
func (c *Coordinator) SetSnapshot(snapshot *view.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.recomputeCategory()
	c.resetScope()
}

// SetCategory changes the active category without touching entity/year/status
func (c *Coordinator) SetCategory(category view.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !view.IsValidCategoryFor(c.status, category) {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is not available under the current status")
	}
	c.category = category
	c.resetScope()
	return nil
}

// SetFilters replaces the filter selection. The external route write is
// deferred to the next scheduler tick so it cannot feed back into the change
// that triggered it.
func (c *Coordinator) SetFilters(filters view.FilterSet) {
	c.mu.Lock()
	c.filters = filters.Clone()
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
	pending := c.filters.Clone()
	c.mu.Unlock()

	c.scheduler.Defer(func() {
		c.mu.Lock()
		c.routeFilters = pending
		c.mu.Unlock()
		if c.route != nil {
			c.route.SyncFilters(pending)
		}
	})
}

// SyncRouteFilters applies a filter value observed on the external route.
// An echo of the coordinator's own deferred write is a no-op.
func (c *Coordinator) SyncRouteFilters(filters view.FilterSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routeFilters = filters.Clone()
	if c.filters.Equal(filters) {
		return
	}
	c.filters = filters.Clone()
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
}

func (c *Coordinator) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = search
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
}

func (c *Coordinator) SetInvalid(invalid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = invalid
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
}

func (c *Coordinator) SetDeadline(deadline bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = deadline
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
}

// SetOrder changes the sort only; nothing else resets
func (c *Coordinator) SetOrder(sortBy, order string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortBy = sortBy
	c.order = order
}

func (c *Coordinator) SetSelection(ids []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		c.selection[id] = struct{}{}
	}
}

// DropFromSelection removes ids that a mutation has transitioned out of the
// current scope, so the selection never points at stale targets
func (c *Coordinator) DropFromSelection(ids []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.selection, id)
	}
}

func (c *Coordinator) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.selection = make(map[uuid.UUID]struct{})
}

// SetLimit persists the chosen page size for future sessions
func (c *Coordinator) SetLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return shared.NewDomainError("INVALID_LIMIT", "Page limit must be positive")
	}
	c.mu.Lock()
	c.limit = limit
	c.selection = make(map[uuid.UUID]struct{})
	c.page = 0
	entityID := c.entityID
	c.mu.Unlock()

	if c.limits != nil && entityID != uuid.Nil {
		if err := c.limits.SaveLimit(ctx, entityID, limit); err != nil {
			if c.logger != nil {
				c.logger.Warn("failed to persist page limit", zap.Error(err))
			}
		}
	}
	return nil
}

// Reconcile lazily re-syncs the coordinator with what the route actually
// shows. Each differing field goes through its regular set transition, most
// significant first, so the dependent resets apply exactly as if the user had
// navigated there.
func (c *Coordinator) Reconcile(observed Observed) error {
	if observed.EntityID != uuid.Nil && observed.EntityID != c.EntityID() {
		c.SetEntity(observed.EntityID)
	}
	if observed.Year != 0 && observed.Year != c.Year() {
		c.SetYear(observed.Year)
	}
	if observed.Status != "" && observed.Status != c.Status() {
		if err := c.SetStatus(observed.Status); err != nil {
			return err
		}
	}
	if observed.Category != "" && observed.Category != c.Category() {
		if err := c.SetCategory(observed.Category); err != nil {
			return err
		}
	}
	return nil
}

// BuildQuery derives the query object for the current state. It is always
// rebuilt, never cached.
func (c *Coordinator) BuildQuery() view.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Query{
		EntityID: c.entityID,
		Year:     c.year,
		Status:   c.status,
		Category: c.category,
		Search:   c.search,
		Invalid:  c.invalid,
		Deadline: c.deadline,
		FromIdx:  c.page * c.limit,
		Limit:    c.limit,
		SortBy:   c.sortBy,
		Order:    c.order,
		Filters:  c.filters.Clone(),
	}
}

// ScopeKey is the identity of the current scope, used to discard stale
// in-flight results
func (c *Coordinator) ScopeKey() string {
	return c.BuildQuery().ScopeKey()
}

func (c *Coordinator) scopeCurrent(key string) bool {
	return c.ScopeKey() == key
}

// Lots fetches the current page of lots through the gateway, discarding the
// response when the scope moved while the request was in flight
func (c *Coordinator) Lots(ctx context.Context) (*lot.ListPage, error) {
	q := c.BuildQuery()
	page, err := c.gateway.ListLots(ctx, q)
	if err != nil {
		return nil, err
	}
	if !c.scopeCurrent(q.ScopeKey()) {
		return nil, ErrStaleResult
	}
	return page, nil
}

// Stocks fetches the current page of stocks with the same stale-result guard
func (c *Coordinator) Stocks(ctx context.Context) (*stock.ListPage, error) {
	q := c.BuildQuery()
	page, err := c.gateway.ListStocks(ctx, q)
	if err != nil {
		return nil, err
	}
	if !c.scopeCurrent(q.ScopeKey()) {
		return nil, ErrStaleResult
	}
	return page, nil
}

// Summary aggregates either the full filter scope or, when rows are selected,
// exactly the selected ids
func (c *Coordinator) Summary(ctx context.Context) (*Summary, error) {
	q := c.BuildQuery()
	selection := c.Selection()
	summary, err := c.gateway.Summary(ctx, q, selection)
	if err != nil {
		return nil, err
	}
	if !c.scopeCurrent(q.ScopeKey()) {
		return nil, ErrStaleResult
	}
	return summary, nil
}

// RefreshSnapshot pulls fresh counts for the current (entity, year) and
// applies them unless the pair changed while the request was in flight
func (c *Coordinator) RefreshSnapshot(ctx context.Context) (*view.Snapshot, error) {
	entityID, year := c.EntityID(), c.Year()
	snapshot, err := c.gateway.Snapshot(ctx, entityID, year)
	if err != nil {
		return nil, err
	}
	if c.EntityID() != entityID || c.Year() != year {
		return nil, ErrStaleResult
	}
	c.SetSnapshot(snapshot)
	return snapshot, nil
}

// ==================== read accessors ====================

func (c *Coordinator) EntityID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entityID
}

func (c *Coordinator) Year() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.year
}

func (c *Coordinator) Status() view.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) Category() view.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Coordinator) Filters() view.FilterSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Clone()
}

func (c *Coordinator) Selection() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	return ids
}

func (c *Coordinator) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Coordinator) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}
