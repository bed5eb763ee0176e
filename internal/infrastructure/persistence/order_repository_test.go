package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared"
)

func TestOrderRepository_CheckoutPersistsEverything(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 10)

	buyerID := uuid.New()
	o := newTestOrder(t, s.ID, &buyerID, p, 3)

	payload, err := json.Marshal(map[string]string{"order_id": o.ID.String()})
	require.NoError(t, err)
	entry := shared.NewOutboxEntry("escrow.create", o.ID, payload)

	require.NoError(t, repo.Checkout(context.Background(), o, entry))

	found, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 3, found.Items[0].Quantity)
	assert.True(t, found.TotalAmount.Equals(o.TotalAmount))

	product, err := NewProductRepository(db).FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Stock)

	var outboxCount int64
	require.NoError(t, db.Table("outbox_entries").Where("aggregate_id = ?", o.ID).Count(&outboxCount).Error)
	assert.Equal(t, int64(1), outboxCount)
}

func TestOrderRepository_CheckoutRollsBackOnInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 2)

	o := newTestOrder(t, s.ID, nil, p, 5)
	entry := shared.NewOutboxEntry("escrow.create", o.ID, []byte(`{}`))

	err := repo.Checkout(context.Background(), o, entry)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	found, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	product, err := NewProductRepository(db).FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.Stock)

	var outboxCount int64
	require.NoError(t, db.Table("outbox_entries").Count(&outboxCount).Error)
	assert.Equal(t, int64(0), outboxCount)
}

func TestOrderRepository_SavePersistsStatusChanges(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 10)

	o := newTestOrder(t, s.ID, nil, p, 1)
	require.NoError(t, repo.Checkout(context.Background(), o, nil))

	require.NoError(t, o.MarkPaid(time.Now()))
	require.NoError(t, o.Ship(time.Now()))
	require.NoError(t, repo.Save(context.Background(), o))

	found, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, found.Status)
	assert.NotNil(t, found.ShippedAt)
	// Items survive status saves untouched
	require.Len(t, found.Items, 1)
}

func TestOrderRepository_FindByShopPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 100)

	for range 5 {
		o := newTestOrder(t, s.ID, nil, p, 1)
		require.NoError(t, repo.Checkout(context.Background(), o, nil))
	}

	page, err := repo.FindByShop(context.Background(), s.ID, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalPages)
}

func TestOrderRepository_FindByBuyer(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 100)

	buyerID := uuid.New()
	mine := newTestOrder(t, s.ID, &buyerID, p, 1)
	require.NoError(t, repo.Checkout(context.Background(), mine, nil))
	guest := newTestOrder(t, s.ID, nil, p, 1)
	require.NoError(t, repo.Checkout(context.Background(), guest, nil))

	page, err := repo.FindByBuyer(context.Background(), buyerID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)
}

func TestOrderRepository_CountNonCancelledByShop(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	s := newTestShop(t, db)
	p := newTestProduct(t, db, s.ID, 100)

	kept := newTestOrder(t, s.ID, nil, p, 1)
	require.NoError(t, repo.Checkout(context.Background(), kept, nil))

	cancelled := newTestOrder(t, s.ID, nil, p, 1)
	require.NoError(t, repo.Checkout(context.Background(), cancelled, nil))
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, repo.Save(context.Background(), cancelled))

	count, err := repo.CountNonCancelledByShop(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
