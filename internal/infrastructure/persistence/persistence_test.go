package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// newTestDB opens a per-test in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newTestShop(t *testing.T, db *gorm.DB) *shop.Shop {
	t.Helper()

	s, err := shop.NewShop(uuid.New(), "Mama Njeri Electronics", "Phones and accessories")
	require.NoError(t, err)
	require.NoError(t, NewShopRepository(db).Save(context.Background(), s))
	return s
}

func newTestProduct(t *testing.T, db *gorm.DB, shopID uuid.UUID, stock int) *shop.Product {
	t.Helper()

	p, err := shop.NewProduct(shopID, "Solar Lantern", "Rechargeable lantern", "home", valueobject.NewMoneyFromFloat(1250), stock)
	require.NoError(t, err)
	require.NoError(t, NewProductRepository(db).Save(context.Background(), p))
	return p
}

func newTestOrder(t *testing.T, shopID uuid.UUID, buyerID *uuid.UUID, p *shop.Product, qty int) *order.Order {
	t.Helper()

	o, err := order.NewOrder(shopID, buyerID, []order.Item{{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	}})
	require.NoError(t, err)
	return o
}

func newHeldEscrow(t *testing.T, db *gorm.DB, orderID, shopID uuid.UUID, amount float64, delayDays int) *escrow.Transaction {
	t.Helper()

	tx, err := escrow.NewTransaction(orderID, shopID, valueobject.NewMoneyFromFloat(amount), delayDays, time.Now())
	require.NoError(t, err)
	require.NoError(t, NewEscrowRepository(db).Save(context.Background(), tx))
	return tx
}
