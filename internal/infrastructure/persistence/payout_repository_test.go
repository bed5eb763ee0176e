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
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

func newTestPayout(t *testing.T, shopID uuid.UUID, amounts ...float64) *escrow.Payout {
	t.Helper()

	txs := make([]escrow.Transaction, 0, len(amounts))
	for _, amount := range amounts {
		tx, err := escrow.NewTransaction(uuid.New(), shopID, valueobject.NewMoneyFromFloat(amount), 7, time.Now())
		require.NoError(t, err)
		txs = append(txs, *tx)
	}

	p, err := escrow.NewPayout(shopID, txs)
	require.NoError(t, err)
	return p
}

func TestPayoutRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewPayoutRepository(db)
	shopID := uuid.New()

	p := newTestPayout(t, shopID, 1000, 500)
	require.NoError(t, repo.Save(context.Background(), p))

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, escrow.PayoutPending, found.Status)
	assert.Len(t, found.TransactionIDs, 2)
	assert.True(t, found.TransactionIDs.Contains(p.TransactionIDs[0]))
	assert.True(t, valueobject.NewMoneyFromFloat(1500).Equals(found.Amount))
}

func TestPayoutRepository_UpdateProcessed(t *testing.T) {
	db := newTestDB(t)
	repo := NewPayoutRepository(db)

	p := newTestPayout(t, uuid.New(), 1000)
	require.NoError(t, repo.Save(context.Background(), p))

	require.NoError(t, p.MarkProcessed(time.Now()))
	require.NoError(t, repo.Update(context.Background(), p))

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, escrow.PayoutProcessed, found.Status)
	assert.NotNil(t, found.ProcessedAt)
}

func TestPayoutRepository_FindPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewPayoutRepository(db)

	pending := newTestPayout(t, uuid.New(), 100)
	require.NoError(t, repo.Save(context.Background(), pending))

	processed := newTestPayout(t, uuid.New(), 200)
	require.NoError(t, processed.MarkProcessed(time.Now()))
	require.NoError(t, repo.Save(context.Background(), processed))

	found, err := repo.FindPending(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pending.ID, found[0].ID)
}

func TestPayoutRepository_FindByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewPayoutRepository(db)
	shopID := uuid.New()

	require.NoError(t, repo.Save(context.Background(), newTestPayout(t, shopID, 100)))
	require.NoError(t, repo.Save(context.Background(), newTestPayout(t, shopID, 200)))
	require.NoError(t, repo.Save(context.Background(), newTestPayout(t, uuid.New(), 300)))

	page, err := repo.FindByShop(context.Background(), shopID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
}
