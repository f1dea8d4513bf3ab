package stock

import (
	"context"
	"testing"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLotAcceptanceCancelledHandler_RemovesUntouchedStock(t *testing.T) {
	env := createTestEnv(t)
	position := env.addPosition(t, 1000)
	parent, err := env.lots.FindByID(context.Background(), position.ParentLotID)
	require.NoError(t, err)

	handler := NewLotAcceptanceCancelledHandler(env.stocks, zap.NewNop())
	err = handler.Handle(context.Background(), lot.NewLotAcceptanceCancelledEvent(parent))

	require.NoError(t, err)
	_, err = env.stocks.FindByID(context.Background(), position.ID)
	require.Error(t, err, "the untouched position is gone")
}

func TestLotAcceptanceCancelledHandler_KeepsDrawnFromStock(t *testing.T) {
	env := createTestEnv(t)
	position := env.addPosition(t, 1000)
	parent, err := env.lots.FindByID(context.Background(), position.ParentLotID)
	require.NoError(t, err)

	_, _, err = env.service.Split(context.Background(), env.entityID, SplitStockRequest{
		StockID: position.ID,
		Volume:  decimal.NewFromInt(100),
		Period:  202404,
	})
	require.NoError(t, err)

	handler := NewLotAcceptanceCancelledHandler(env.stocks, zap.NewNop())
	err = handler.Handle(context.Background(), lot.NewLotAcceptanceCancelledEvent(parent))

	require.NoError(t, err)
	kept, err := env.stocks.FindByID(context.Background(), position.ID)
	require.NoError(t, err, "a consumed position survives the cancel event")
	assert.False(t, kept.IsUntouched())
}

func TestLotAcceptanceCancelledHandler_NoDerivedStockIsNoOp(t *testing.T) {
	env := createTestEnv(t)
	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromInt(500),
		decimal.NewFromInt(395),
		decimal.NewFromInt(10500),
	)
	l, err := lot.NewLot(env.entityID, "FR202403SEED0002", valueobject.MustNewPeriod(2024, 3),
		"ETH", "COLZA", "FR", qty, lot.GHG{EEC: decimal.NewFromFloat(20.5)})
	require.NoError(t, err)

	handler := NewLotAcceptanceCancelledHandler(env.stocks, zap.NewNop())
	err = handler.Handle(context.Background(), lot.NewLotAcceptanceCancelledEvent(l))

	require.NoError(t, err)
}

func TestLotAcceptanceCancelledHandler_RejectsForeignEvent(t *testing.T) {
	env := createTestEnv(t)
	position := env.addPosition(t, 1000)

	handler := NewLotAcceptanceCancelledHandler(env.stocks, zap.NewNop())
	err := handler.Handle(context.Background(), stock.NewStockFlushedEvent(position))

	require.Error(t, err)
}
