package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/shared"
)

func TestEscrowRepository_SaveAndFindByOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewEscrowRepository(db)
	orderID, shopID := uuid.New(), uuid.New()

	tx := newHeldEscrow(t, db, orderID, shopID, 2500, 7)

	found, err := repo.FindByOrder(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tx.ID, found.ID)
	assert.Equal(t, escrow.StatusHeld, found.Status)
	assert.True(t, tx.Amount.Equals(found.Amount))

	missing, err := repo.FindByOrder(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEscrowRepository_ReleaseHeld(t *testing.T) {
	db := newTestDB(t)
	repo := NewEscrowRepository(db)
	orderID := uuid.New()
	newHeldEscrow(t, db, orderID, uuid.New(), 1000, 7)

	now := time.Now()
	released, err := repo.ReleaseHeld(context.Background(), orderID, now)
	require.NoError(t, err)
	assert.Equal(t, escrow.StatusReleased, released.Status)
	require.NotNil(t, released.ReleasedAt)

	// A second release finds no held row
	_, err = repo.ReleaseHeld(context.Background(), orderID, now)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Neither does a refund racing behind it
	_, err = repo.RefundHeld(context.Background(), orderID, now)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEscrowRepository_RefundHeld(t *testing.T) {
	db := newTestDB(t)
	repo := NewEscrowRepository(db)
	orderID := uuid.New()
	newHeldEscrow(t, db, orderID, uuid.New(), 1000, 7)

	refunded, err := repo.RefundHeld(context.Background(), orderID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, escrow.StatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)

	_, err = repo.ReleaseHeld(context.Background(), orderID, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEscrowRepository_SumReleasedByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewEscrowRepository(db)
	shopID := uuid.New()

	first := uuid.New()
	newHeldEscrow(t, db, first, shopID, 1000, 0)
	_, err := repo.ReleaseHeld(context.Background(), first, time.Now())
	require.NoError(t, err)

	second := uuid.New()
	newHeldEscrow(t, db, second, shopID, 500, 0)
	_, err = repo.ReleaseHeld(context.Background(), second, time.Now())
	require.NoError(t, err)

	// Still held, must not count
	newHeldEscrow(t, db, uuid.New(), shopID, 9999, 0)

	sum, err := repo.SumReleasedByShop(context.Background(), shopID)
	require.NoError(t, err)
	assert.InDelta(t, 1500, sum, 0.001)
}

func TestEscrowRepository_FindByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewEscrowRepository(db)
	shopID := uuid.New()

	newHeldEscrow(t, db, uuid.New(), shopID, 100, 7)
	newHeldEscrow(t, db, uuid.New(), shopID, 200, 7)
	newHeldEscrow(t, db, uuid.New(), uuid.New(), 300, 7)

	page, err := repo.FindByShop(context.Background(), shopID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
}
