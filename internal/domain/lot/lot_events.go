package lot

import (
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeLot = "Lot"

// Event type constants
const (
	EventTypeLotCreated             = "LotCreated"
	EventTypeLotSent                = "LotSent"
	EventTypeLotAccepted            = "LotAccepted"
	EventTypeLotRejected            = "LotRejected"
	EventTypeLotAcceptanceCancelled = "LotAcceptanceCancelled"
	EventTypeLotFixRequested        = "LotFixRequested"
	EventTypeLotFixConfirmed        = "LotFixConfirmed"
	EventTypeLotFixApproved         = "LotFixApproved"
	EventTypeLotDeleted             = "LotDeleted"
	EventTypeLotFrozen              = "LotFrozen"
	EventTypeLotUnfrozen            = "LotUnfrozen"
)

// LotCreatedEvent is raised when a new draft lot is created
type LotCreatedEvent struct {
	shared.BaseDomainEvent
	LotID  uuid.UUID          `json:"lot_id"`
	Period valueobject.Period `json:"period"`
}

// NewLotCreatedEvent creates a new LotCreatedEvent
func NewLotCreatedEvent(l *Lot) *LotCreatedEvent {
	return &LotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotCreated, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
		Period:          l.Period,
	}
}

// EventType returns the event type name
func (e *LotCreatedEvent) EventType() string {
	return EventTypeLotCreated
}

// LotSentEvent is raised when a draft lot is sent to its client
type LotSentEvent struct {
	shared.BaseDomainEvent
	LotID  uuid.UUID          `json:"lot_id"`
	Period valueobject.Period `json:"period"`
	Client Party              `json:"client"`
}

// NewLotSentEvent creates a new LotSentEvent
func NewLotSentEvent(l *Lot) *LotSentEvent {
	return &LotSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotSent, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
		Period:          l.Period,
		Client:          l.Client,
	}
}

// EventType returns the event type name
func (e *LotSentEvent) EventType() string {
	return EventTypeLotSent
}

// LotAcceptedEvent is raised when a pending lot is accepted.
// When the chosen mode derives a stock, the stock context subscribes to this
// event to create the custody position.
type LotAcceptedEvent struct {
	shared.BaseDomainEvent
	LotID        uuid.UUID                  `json:"lot_id"`
	DeliveryType DeliveryType               `json:"delivery_type"`
	Quantity     valueobject.QuantityVector `json:"quantity"`
}

// NewLotAcceptedEvent creates a new LotAcceptedEvent
func NewLotAcceptedEvent(l *Lot, mode DeliveryType) *LotAcceptedEvent {
	return &LotAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotAccepted, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
		DeliveryType:    mode,
		Quantity:        l.Quantity,
	}
}

// EventType returns the event type name
func (e *LotAcceptedEvent) EventType() string {
	return EventTypeLotAccepted
}

// LotRejectedEvent is raised when a pending lot is rejected
type LotRejectedEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotRejectedEvent creates a new LotRejectedEvent
func NewLotRejectedEvent(l *Lot) *LotRejectedEvent {
	return &LotRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotRejected, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotRejectedEvent) EventType() string {
	return EventTypeLotRejected
}

// LotAcceptanceCancelledEvent is raised when an acceptance or rejection is
// cancelled and the lot returns to Pending
type LotAcceptanceCancelledEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotAcceptanceCancelledEvent creates a new LotAcceptanceCancelledEvent
func NewLotAcceptanceCancelledEvent(l *Lot) *LotAcceptanceCancelledEvent {
	return &LotAcceptanceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotAcceptanceCancelled, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotAcceptanceCancelledEvent) EventType() string {
	return EventTypeLotAcceptanceCancelled
}

// LotFixRequestedEvent is raised when either party opens a correction
type LotFixRequestedEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotFixRequestedEvent creates a new LotFixRequestedEvent
func NewLotFixRequestedEvent(l *Lot) *LotFixRequestedEvent {
	return &LotFixRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotFixRequested, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotFixRequestedEvent) EventType() string {
	return EventTypeLotFixRequested
}

// LotFixConfirmedEvent is raised when the correction author marks the lot fixed
type LotFixConfirmedEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotFixConfirmedEvent creates a new LotFixConfirmedEvent
func NewLotFixConfirmedEvent(l *Lot) *LotFixConfirmedEvent {
	return &LotFixConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotFixConfirmed, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotFixConfirmedEvent) EventType() string {
	return EventTypeLotFixConfirmed
}

// LotFixApprovedEvent is raised when the counterparty approves the fix
type LotFixApprovedEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotFixApprovedEvent creates a new LotFixApprovedEvent
func NewLotFixApprovedEvent(l *Lot) *LotFixApprovedEvent {
	return &LotFixApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotFixApproved, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotFixApprovedEvent) EventType() string {
	return EventTypeLotFixApproved
}

// LotDeletedEvent is raised when a lot is irreversibly deleted
type LotDeletedEvent struct {
	shared.BaseDomainEvent
	LotID uuid.UUID `json:"lot_id"`
}

// NewLotDeletedEvent creates a new LotDeletedEvent
func NewLotDeletedEvent(l *Lot) *LotDeletedEvent {
	return &LotDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotDeleted, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
	}
}

// EventType returns the event type name
func (e *LotDeletedEvent) EventType() string {
	return EventTypeLotDeleted
}

// LotFrozenEvent is raised when a declaration freezes the lot
type LotFrozenEvent struct {
	shared.BaseDomainEvent
	LotID  uuid.UUID          `json:"lot_id"`
	Period valueobject.Period `json:"period"`
}

// NewLotFrozenEvent creates a new LotFrozenEvent
func NewLotFrozenEvent(l *Lot) *LotFrozenEvent {
	return &LotFrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotFrozen, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
		Period:          l.Period,
	}
}

// EventType returns the event type name
func (e *LotFrozenEvent) EventType() string {
	return EventTypeLotFrozen
}

// LotUnfrozenEvent is raised when a declaration invalidation un-freezes the lot
type LotUnfrozenEvent struct {
	shared.BaseDomainEvent
	LotID  uuid.UUID          `json:"lot_id"`
	Period valueobject.Period `json:"period"`
}

// NewLotUnfrozenEvent creates a new LotUnfrozenEvent
func NewLotUnfrozenEvent(l *Lot) *LotUnfrozenEvent {
	return &LotUnfrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotUnfrozen, AggregateTypeLot, l.ID, l.EntityID),
		LotID:           l.ID,
		Period:          l.Period,
	}
}

// EventType returns the event type name
func (e *LotUnfrozenEvent) EventType() string {
	return EventTypeLotUnfrozen
}
