package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/dispute"
	"github.com/soko/backend/internal/domain/shared"
)

func newTestDispute(t *testing.T, shopID uuid.UUID) *dispute.Dispute {
	t.Helper()

	d, err := dispute.NewDispute(uuid.New(), uuid.New(), shopID, "Package arrived damaged and incomplete")
	require.NoError(t, err)
	return d
}

func TestDisputeRepository_SaveAndFindOpenByOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)

	d := newTestDispute(t, uuid.New())
	require.NoError(t, repo.Save(context.Background(), d))

	open, err := repo.FindOpenByOrder(context.Background(), d.OrderID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, d.ID, open.ID)

	// Resolving the dispute clears the open lookup
	require.NoError(t, d.ResolveReject("Seller provided proof of delivery", time.Now()))
	require.NoError(t, repo.Update(context.Background(), d))

	open, err = repo.FindOpenByOrder(context.Background(), d.OrderID)
	require.NoError(t, err)
	assert.Nil(t, open)

	resolved, err := repo.FindByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, dispute.StatusRejected, resolved.Status)
	assert.Equal(t, "Seller provided proof of delivery", resolved.Resolution)
}

func TestDisputeRepository_FindByBuyerAndShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	shopID := uuid.New()

	d := newTestDispute(t, shopID)
	require.NoError(t, repo.Save(context.Background(), d))
	require.NoError(t, repo.Save(context.Background(), newTestDispute(t, shopID)))
	require.NoError(t, repo.Save(context.Background(), newTestDispute(t, uuid.New())))

	byShop, err := repo.FindByShop(context.Background(), shopID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), byShop.Total)

	byBuyer, err := repo.FindByBuyer(context.Background(), d.BuyerID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), byBuyer.Total)
	require.Len(t, byBuyer.Items, 1)
	assert.Equal(t, d.ID, byBuyer.Items[0].ID)
}

func TestDisputeRepository_StatsByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)
	shopID := uuid.New()

	open := newTestDispute(t, shopID)
	require.NoError(t, repo.Save(context.Background(), open))

	auto := newTestDispute(t, shopID)
	require.NoError(t, auto.AutoResolve("Order not shipped within 7 days", time.Now()))
	require.NoError(t, repo.Save(context.Background(), auto))

	manual := newTestDispute(t, shopID)
	require.NoError(t, manual.ResolveRefund("Refunded after review", time.Now()))
	require.NoError(t, repo.Save(context.Background(), manual))

	rejected := newTestDispute(t, shopID)
	require.NoError(t, rejected.ResolveReject("No grounds", time.Now()))
	require.NoError(t, repo.Save(context.Background(), rejected))

	stats, err := repo.StatsByShop(context.Background(), shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalDisputes)
	assert.Equal(t, int64(1), stats.OpenDisputes)
	assert.Equal(t, int64(2), stats.RefundedDisputes)
}

func TestDisputeRepository_StatsByShopEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewDisputeRepository(db)

	stats, err := repo.StatsByShop(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, dispute.Stats{}, stats)
}
