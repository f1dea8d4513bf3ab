package stock

import (
	"context"
	"fmt"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// LotAcceptanceCancelledHandler removes the derived custody position when an
// acceptance is cancelled, mirroring LotAcceptedHandler. The lot service only
// lets the cancel through while every derived position is untouched; a
// position that has been drawn from in the meantime is left alone and logged.
type LotAcceptanceCancelledHandler struct {
	stockRepo stock.Repository
	logger    *zap.Logger
}

// NewLotAcceptanceCancelledHandler creates a new handler for acceptance
// cancellation events
func NewLotAcceptanceCancelledHandler(stockRepo stock.Repository, logger *zap.Logger) *LotAcceptanceCancelledHandler {
	return &LotAcceptanceCancelledHandler{
		stockRepo: stockRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LotAcceptanceCancelledHandler) EventTypes() []string {
	return []string{lot.EventTypeLotAcceptanceCancelled}
}

// Handle deletes the untouched positions derived from the cancelled lot.
// Re-deliveries are idempotent: a lot with no remaining positions is a no-op.
func (h *LotAcceptanceCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*lot.LotAcceptanceCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", lot.EventTypeLotAcceptanceCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			lot.EventTypeLotAcceptanceCancelled, event.EventType())
	}

	positions, err := h.stockRepo.FindByParentLot(ctx, cancelled.LotID)
	if err != nil {
		return fmt.Errorf("failed to load derived stocks: %w", err)
	}

	for i := range positions {
		position := &positions[i]
		if !position.IsUntouched() {
			h.logger.Warn("derived stock already drawn from, keeping it",
				zap.String("lot_id", cancelled.LotID.String()),
				zap.String("stock_id", position.ID.String()),
			)
			continue
		}
		if err := h.stockRepo.Delete(ctx, position.ID); err != nil {
			return fmt.Errorf("failed to delete derived stock: %w", err)
		}
		h.logger.Info("removed derived stock after acceptance cancel",
			zap.String("lot_id", cancelled.LotID.String()),
			zap.String("stock_id", position.ID.String()),
		)
	}
	return nil
}
