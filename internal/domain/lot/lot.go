package lot

import (
	"fmt"
	"time"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Comment is one entry of the correction/rejection trail of a lot
type Comment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LotID          uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorEntityID uuid.UUID `gorm:"type:uuid;not null"`
	Message        string    `gorm:"not null"`
	CreatedAt      time.Time
}

// Lot represents a regulated volume record moving between two parties.
// It is the aggregate root of the transaction-record lifecycle: created as a
// Draft by its owning entity, sent to a client, accepted or rejected, possibly
// corrected, and finally frozen when its declaration period closes.
type Lot struct {
	shared.OwnedAggregateRoot

	CarbureID string             `gorm:"size:64;index"`
	Year      int                `gorm:"not null;index"`
	Period    valueobject.Period `gorm:"not null;index"`

	BiofuelCode     string `gorm:"size:32;not null"`
	FeedstockCode   string `gorm:"size:32;not null"`
	CountryOfOrigin string `gorm:"size:8"`

	Quantity valueobject.QuantityVector `gorm:"embedded"`
	GHG      GHG                        `gorm:"embedded"`

	Producer Party `gorm:"embedded;embeddedPrefix:producer_"`
	Supplier Party `gorm:"embedded;embeddedPrefix:supplier_"`
	Client   Party `gorm:"embedded;embeddedPrefix:client_"`

	ProductionSite Site `gorm:"embedded;embeddedPrefix:production_site_"`
	DeliverySite   Site `gorm:"embedded;embeddedPrefix:delivery_site_"`

	Status           Status           `gorm:"size:16;not null;index"`
	CorrectionStatus CorrectionStatus `gorm:"size:16;not null;index"`

	// Delivery is set by acceptance and reset when acceptance is cancelled,
	// so it reads Unknown for every status that never carried one. A frozen
	// lot keeps the mode it was accepted under.
	Delivery DeliveryType `gorm:"column:delivery_type;size:16;not null"`

	ParentLotID            *uuid.UUID `gorm:"type:uuid;index"`
	ParentStockID          *uuid.UUID `gorm:"type:uuid;index"`
	ParentTransformationID *uuid.UUID `gorm:"type:uuid;index"`

	Comments []Comment `gorm:"foreignKey:LotID"`
}

// NewLot creates a new lot in Draft status for its owning entity
func NewLot(
	entityID uuid.UUID,
	carbureID string,
	period valueobject.Period,
	biofuelCode, feedstockCode, countryOfOrigin string,
	quantity valueobject.QuantityVector,
	ghg GHG,
) (*Lot, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Owning entity cannot be empty")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
	}
	if biofuelCode == "" {
		return nil, shared.NewDomainError("INVALID_BIOFUEL", "Biofuel code cannot be empty")
	}
	if feedstockCode == "" {
		return nil, shared.NewDomainError("INVALID_FEEDSTOCK", "Feedstock code cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Volume, weight and energy content must all be positive")
	}

	l := &Lot{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(entityID),
		CarbureID:          carbureID,
		Year:               period.Year(),
		Period:             period,
		BiofuelCode:        biofuelCode,
		FeedstockCode:      feedstockCode,
		CountryOfOrigin:    countryOfOrigin,
		Quantity:           quantity,
		GHG:                ghg,
		Status:             StatusDraft,
		CorrectionStatus:   CorrectionNoProblem,
		Delivery:           DeliveryUnknown,
		Comments:           make([]Comment, 0),
	}

	l.AddDomainEvent(NewLotCreatedEvent(l))

	return l, nil
}

// SetParties sets the three counterpart roles, validating each form
func (l *Lot) SetParties(producer, supplier, client Party) error {
	for _, p := range []Party{producer, supplier, client} {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	l.Producer = producer
	l.Supplier = supplier
	l.Client = client
	l.Touch()
	return nil
}

// SetSites sets the production and delivery sites, validating each form
func (l *Lot) SetSites(production, delivery Site) error {
	if err := production.Validate(); err != nil {
		return err
	}
	if err := delivery.Validate(); err != nil {
		return err
	}
	l.ProductionSite = production
	l.DeliverySite = delivery
	l.Touch()
	return nil
}

// Send transitions the lot from Draft to Pending. The sender must attest both
// durability-criteria compliance and data validity; the transition is refused
// unless both attestations are given.
func (l *Lot) Send(durabilityAttested, dataAttested bool) error {
	if l.Status != StatusDraft {
		return shared.ErrWrongStatus
	}
	if !durabilityAttested || !dataAttested {
		return shared.NewDomainError("ATTESTATIONS_REQUIRED", "Both durability and data-validity attestations are required before sending")
	}

	l.Status = StatusPending
	l.Touch()

	l.AddDomainEvent(NewLotSentEvent(l))

	return nil
}

// Accept transitions the lot from Pending to Accepted under the given
// acceptance mode, which becomes the lot's delivery type
func (l *Lot) Accept(mode DeliveryType) error {
	if l.Status != StatusPending {
		return shared.ErrWrongStatus
	}
	if !mode.IsAcceptanceMode() {
		return shared.NewDomainError("INVALID_DELIVERY_TYPE", fmt.Sprintf("%s is not a valid acceptance mode", mode))
	}

	l.Status = StatusAccepted
	l.Delivery = mode
	l.Touch()

	l.AddDomainEvent(NewLotAcceptedEvent(l, mode))

	return nil
}

// Reject transitions the lot from Pending to Rejected with a mandatory comment
func (l *Lot) Reject(authorEntityID uuid.UUID, comment string) error {
	if l.Status != StatusPending {
		return shared.ErrWrongStatus
	}
	if comment == "" {
		return shared.ErrMissingComment
	}

	l.Status = StatusRejected
	l.appendComment(authorEntityID, comment)
	l.Touch()

	l.AddDomainEvent(NewLotRejectedEvent(l))

	return nil
}

// CancelAcceptance returns an Accepted or Rejected lot to Pending and clears
// the delivery type. The caller must first ensure the lot has no children;
// the aggregate itself only guards the status.
func (l *Lot) CancelAcceptance() error {
	if l.Status != StatusAccepted && l.Status != StatusRejected {
		return shared.ErrWrongStatus
	}

	l.Status = StatusPending
	l.Delivery = DeliveryUnknown
	l.Touch()

	l.AddDomainEvent(NewLotAcceptanceCancelledEvent(l))

	return nil
}

// RequestFix opens a correction on the lot with a mandatory comment.
// The lifecycle status does not change.
func (l *Lot) RequestFix(authorEntityID uuid.UUID, comment string) error {
	if l.Status.IsTerminal() {
		return shared.ErrWrongStatus
	}
	if l.CorrectionStatus != CorrectionNoProblem {
		return shared.NewDomainError("CORRECTION_IN_PROGRESS", "A correction is already open on this lot")
	}
	if comment == "" {
		return shared.ErrMissingComment
	}

	l.CorrectionStatus = CorrectionInCorrection
	l.appendComment(authorEntityID, comment)
	l.Touch()

	l.AddDomainEvent(NewLotFixRequestedEvent(l))

	return nil
}

// ConfirmFix marks an open correction as fixed, with a mandatory comment from
// the correction author
func (l *Lot) ConfirmFix(authorEntityID uuid.UUID, comment string) error {
	if l.CorrectionStatus != CorrectionInCorrection {
		return shared.NewDomainError("NO_CORRECTION", "No correction is open on this lot")
	}
	if comment == "" {
		return shared.ErrMissingComment
	}

	l.CorrectionStatus = CorrectionFixed
	l.appendComment(authorEntityID, comment)
	l.Touch()

	l.AddDomainEvent(NewLotFixConfirmedEvent(l))

	return nil
}

// ApproveFix closes a fixed correction; the counterparty approves the fix
func (l *Lot) ApproveFix() error {
	if l.CorrectionStatus != CorrectionFixed {
		return shared.NewDomainError("NOT_FIXED", "The correction has not been marked as fixed")
	}

	l.CorrectionStatus = CorrectionNoProblem
	l.Touch()

	l.AddDomainEvent(NewLotFixApprovedEvent(l))

	return nil
}

// MarkDeleted irreversibly deletes the lot. Refused once the lot is Frozen.
func (l *Lot) MarkDeleted() error {
	if l.Status.IsTerminal() {
		if l.Status == StatusFrozen {
			return shared.ErrFrozenLot
		}
		return shared.ErrWrongStatus
	}

	l.Status = StatusDeleted
	l.Touch()

	l.AddDomainEvent(NewLotDeletedEvent(l))

	return nil
}

// Freeze marks the lot as part of a declared period. Only Pending and
// Accepted lots freeze; the transition is irreversible except through an
// administrative declaration invalidation.
func (l *Lot) Freeze() error {
	if l.Status != StatusPending && l.Status != StatusAccepted {
		return shared.ErrWrongStatus
	}

	l.Status = StatusFrozen
	l.Touch()

	l.AddDomainEvent(NewLotFrozenEvent(l))

	return nil
}

// Unfreeze reverts a frozen lot to Accepted. It only runs on behalf of an
// externally-authorized declaration invalidation; the aggregate does not
// decide authorization.
func (l *Lot) Unfreeze() error {
	if l.Status != StatusFrozen {
		return shared.ErrWrongStatus
	}

	l.Status = StatusAccepted
	l.Touch()

	l.AddDomainEvent(NewLotUnfrozenEvent(l))

	return nil
}

// Duplicate returns an independent Draft copy of the lot. The source is never
// mutated; the copy starts a fresh lifecycle with no parents, no comments and
// no external reference.
func (l *Lot) Duplicate() *Lot {
	dup := &Lot{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(l.EntityID),
		Year:               l.Year,
		Period:             l.Period,
		BiofuelCode:        l.BiofuelCode,
		FeedstockCode:      l.FeedstockCode,
		CountryOfOrigin:    l.CountryOfOrigin,
		Quantity:           l.Quantity,
		GHG:                l.GHG,
		Producer:           l.Producer,
		Supplier:           l.Supplier,
		Client:             l.Client,
		ProductionSite:     l.ProductionSite,
		DeliverySite:       l.DeliverySite,
		Status:             StatusDraft,
		CorrectionStatus:   CorrectionNoProblem,
		Delivery:           DeliveryUnknown,
		Comments:           make([]Comment, 0),
	}

	dup.AddDomainEvent(NewLotCreatedEvent(dup))

	return dup
}

// DeliveryType returns the delivery type as it must be read: meaningful only
// once the lot has been accepted (and kept through freezing), Unknown for
// every earlier status
func (l *Lot) DeliveryType() DeliveryType {
	if l.Status == StatusAccepted || l.Status == StatusFrozen {
		return l.Delivery
	}
	return DeliveryUnknown
}

// IsDraft returns true if the lot is in Draft status
func (l *Lot) IsDraft() bool {
	return l.Status == StatusDraft
}

// IsPending returns true if the lot awaits a client decision
func (l *Lot) IsPending() bool {
	return l.Status == StatusPending
}

// IsAccepted returns true if the lot has been accepted
func (l *Lot) IsAccepted() bool {
	return l.Status == StatusAccepted
}

// IsChildOfStock returns true for lots carved out of a stock position
func (l *Lot) IsChildOfStock() bool {
	return l.ParentStockID != nil
}

func (l *Lot) appendComment(authorEntityID uuid.UUID, message string) {
	l.Comments = append(l.Comments, Comment{
		ID:             uuid.New(),
		LotID:          l.ID,
		AuthorEntityID: authorEntityID,
		Message:        message,
		CreatedAt:      time.Now(),
	})
}
