package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shop"
)

func TestShopRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewShopRepository(db)
	s := newTestShop(t, db)

	found, err := repo.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.Name, found.Name)
	assert.Equal(t, shop.StatusActive, found.Status)

	byOwner, err := repo.FindByOwner(context.Background(), s.OwnerID)
	require.NoError(t, err)
	require.NotNil(t, byOwner)
	assert.Equal(t, s.ID, byOwner.ID)
}

func TestShopRepository_FindMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewShopRepository(db)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)

	byOwner, err := repo.FindByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, byOwner)
}

func TestShopRepository_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewShopRepository(db)
	s := newTestShop(t, db)

	require.NoError(t, repo.UpdateStatus(context.Background(), s.ID, shop.StatusFrozen))

	found, err := repo.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.StatusFrozen, found.Status)
}

func TestShopRepository_UpdateStatusMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewShopRepository(db)

	err := repo.UpdateStatus(context.Background(), uuid.New(), shop.StatusSuspended)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTrustScoreRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrustScoreRepository(db)
	shopID := uuid.New()

	missing, err := repo.FindByShop(context.Background(), shopID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := shop.NewTrustScoreRecord(shopID, shop.TrustMetrics{
		ShopAgeDays:     30,
		TotalOrders:     40,
		CompletedOrders: 35,
	}, time.Now())
	require.NoError(t, repo.Upsert(context.Background(), record))

	found, err := repo.FindByShop(context.Background(), shopID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.Score, found.Score)
	assert.Equal(t, 40, found.TotalOrders)

	// Recomputation overwrites in place
	record.Score = 91
	record.TotalOrders = 50
	require.NoError(t, repo.Upsert(context.Background(), record))

	found, err = repo.FindByShop(context.Background(), shopID)
	require.NoError(t, err)
	assert.Equal(t, 91, found.Score)
	assert.Equal(t, 50, found.TotalOrders)

	var count int64
	require.NoError(t, db.Table("trust_scores").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestViolationRepository_AppendAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewViolationRepository(db)
	shopID := uuid.New()

	for range 3 {
		v, err := shop.NewViolation(shopID, shop.ViolationContactSharing, shop.SeverityMedium, shop.ViolationDetails{"order_id": uuid.NewString()})
		require.NoError(t, err)
		require.NoError(t, repo.Append(context.Background(), v))
	}

	count, err := repo.CountByTypeSince(context.Background(), shopID, shop.ViolationContactSharing, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountByTypeSince(context.Background(), shopID, shop.ViolationContactSharing, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	listed, err := repo.FindByShop(context.Background(), shopID, 2)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Equal(t, shop.ViolationContactSharing, listed[0].Type)
}
