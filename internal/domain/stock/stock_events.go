package stock

import (
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStock          = "Stock"
	AggregateTypeTransformation = "Transformation"
)

// Event type constants
const (
	EventTypeStockCreated            = "StockCreated"
	EventTypeStockSplit              = "StockSplit"
	EventTypeStockFlushed            = "StockFlushed"
	EventTypeTransformationSubmitted = "TransformationSubmitted"
	EventTypeTransformationCancelled = "TransformationCancelled"
)

// StockCreatedEvent is raised when a lot acceptance derives a custody position
type StockCreatedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID                  `json:"stock_id"`
	ParentLotID uuid.UUID                  `json:"parent_lot_id"`
	Initial     valueobject.QuantityVector `json:"initial"`
}

// NewStockCreatedEvent creates a new StockCreatedEvent
func NewStockCreatedEvent(s *Stock) *StockCreatedEvent {
	return &StockCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCreated, AggregateTypeStock, s.ID, s.EntityID),
		StockID:         s.ID,
		ParentLotID:     s.ParentLotID,
		Initial:         s.Initial,
	}
}

// EventType returns the event type name
func (e *StockCreatedEvent) EventType() string {
	return EventTypeStockCreated
}

// StockSplitEvent is raised when a child lot is carved out of a position
type StockSplitEvent struct {
	shared.BaseDomainEvent
	StockID    uuid.UUID       `json:"stock_id"`
	ChildLotID uuid.UUID       `json:"child_lot_id"`
	Volume     decimal.Decimal `json:"volume"`
}

// NewStockSplitEvent creates a new StockSplitEvent
func NewStockSplitEvent(s *Stock, childLotID uuid.UUID, volume decimal.Decimal) *StockSplitEvent {
	return &StockSplitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockSplit, AggregateTypeStock, s.ID, s.EntityID),
		StockID:         s.ID,
		ChildLotID:      childLotID,
		Volume:          volume,
	}
}

// EventType returns the event type name
func (e *StockSplitEvent) EventType() string {
	return EventTypeStockSplit
}

// StockFlushedEvent is raised when a position is irreversibly emptied
type StockFlushedEvent struct {
	shared.BaseDomainEvent
	StockID uuid.UUID `json:"stock_id"`
}

// NewStockFlushedEvent creates a new StockFlushedEvent
func NewStockFlushedEvent(s *Stock) *StockFlushedEvent {
	return &StockFlushedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockFlushed, AggregateTypeStock, s.ID, s.EntityID),
		StockID:         s.ID,
	}
}

// EventType returns the event type name
func (e *StockFlushedEvent) EventType() string {
	return EventTypeStockFlushed
}

// TransformationSubmittedEvent is raised when an ETBE transformation passes
// validation and is applied to its source stocks
type TransformationSubmittedEvent struct {
	shared.BaseDomainEvent
	TransformationID uuid.UUID       `json:"transformation_id"`
	VolumeETBE       decimal.Decimal `json:"volume_etbe"`
	VolumeEthanol    decimal.Decimal `json:"volume_ethanol"`
}

// NewTransformationSubmittedEvent creates a new TransformationSubmittedEvent
func NewTransformationSubmittedEvent(t *Transformation) *TransformationSubmittedEvent {
	return &TransformationSubmittedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTransformationSubmitted, AggregateTypeTransformation, t.ID, t.EntityID),
		TransformationID: t.ID,
		VolumeETBE:       t.VolumeETBE,
		VolumeEthanol:    t.VolumeEthanol,
	}
}

// EventType returns the event type name
func (e *TransformationSubmittedEvent) EventType() string {
	return EventTypeTransformationSubmitted
}

// TransformationCancelledEvent is raised when a transformation is cancelled
// and its source stocks restored
type TransformationCancelledEvent struct {
	shared.BaseDomainEvent
	TransformationID uuid.UUID `json:"transformation_id"`
}

// NewTransformationCancelledEvent creates a new TransformationCancelledEvent
func NewTransformationCancelledEvent(t *Transformation) *TransformationCancelledEvent {
	return &TransformationCancelledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTransformationCancelled, AggregateTypeTransformation, t.ID, t.EntityID),
		TransformationID: t.ID,
	}
}

// EventType returns the event type name
func (e *TransformationCancelledEvent) EventType() string {
	return EventTypeTransformationCancelled
}
