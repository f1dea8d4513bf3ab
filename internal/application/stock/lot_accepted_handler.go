package stock

import (
	"context"
	"fmt"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// LotAcceptedHandler derives a custody position whenever a lot is accepted
// under a stock-deriving delivery mode (stock, trading, processing)
type LotAcceptedHandler struct {
	lotRepo   lot.Repository
	stockRepo stock.Repository
	logger    *zap.Logger
}

// NewLotAcceptedHandler creates a new handler for lot accepted events
func NewLotAcceptedHandler(lotRepo lot.Repository, stockRepo stock.Repository, logger *zap.Logger) *LotAcceptedHandler {
	return &LotAcceptedHandler{
		lotRepo:   lotRepo,
		stockRepo: stockRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LotAcceptedHandler) EventTypes() []string {
	return []string{lot.EventTypeLotAccepted}
}

// Handle derives the stock for a stock-deriving acceptance. Re-deliveries of
// the same event are idempotent: an existing position for the lot is kept.
func (h *LotAcceptedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	accepted, ok := event.(*lot.LotAcceptedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", lot.EventTypeLotAccepted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			lot.EventTypeLotAccepted, event.EventType())
	}

	if !accepted.DeliveryType.DerivesStock() {
		return nil
	}

	existing, err := h.stockRepo.FindByParentLot(ctx, accepted.LotID)
	if err == nil && len(existing) > 0 {
		h.logger.Warn("stock already derived for lot, skipping",
			zap.String("lot_id", accepted.LotID.String()))
		return nil
	}

	l, err := h.lotRepo.FindByID(ctx, accepted.LotID)
	if err != nil {
		return fmt.Errorf("failed to load accepted lot: %w", err)
	}

	s, err := stock.NewStockFromLot(l)
	if err != nil {
		return err
	}
	if err := h.stockRepo.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save derived stock: %w", err)
	}

	h.logger.Info("derived stock from accepted lot",
		zap.String("lot_id", accepted.LotID.String()),
		zap.String("stock_id", s.ID.String()),
		zap.String("delivery_type", accepted.DeliveryType.String()),
	)
	return nil
}
