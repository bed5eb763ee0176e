package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for orders
type OrderModel struct {
	AggregateModel
	ShopID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	BuyerID        *uuid.UUID        `gorm:"type:uuid;index"`
	TotalAmount    valueobject.Money `gorm:"type:decimal(20,2);not null"`
	Status         string            `gorm:"type:varchar(20);not null;index"`
	EscrowReleased bool              `gorm:"not null;default:false"`
	PaidAt         *time.Time
	ShippedAt      *time.Time
	CompletedAt    *time.Time
	Items          []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.Item, 0, len(m.Items))
	for _, im := range m.Items {
		items = append(items, im.ToDomain())
	}
	o := &order.Order{
		ShopID:         m.ShopID,
		BuyerID:        m.BuyerID,
		Items:          items,
		TotalAmount:    m.TotalAmount,
		Status:         order.Status(m.Status),
		EscrowReleased: m.EscrowReleased,
		PaidAt:         m.PaidAt,
		ShippedAt:      m.ShippedAt,
		CompletedAt:    m.CompletedAt,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ShopID = o.ShopID
	m.BuyerID = o.BuyerID
	m.TotalAmount = o.TotalAmount
	m.Status = string(o.Status)
	m.EscrowReleased = o.EscrowReleased
	m.PaidAt = o.PaidAt
	m.ShippedAt = o.ShippedAt
	m.CompletedAt = o.CompletedAt

	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		var im OrderItemModel
		im.FromDomain(o.ID, it)
		m.Items = append(m.Items, im)
	}
}

// OrderItemModel is the persistence model for order line items. Unit prices
// are snapshots taken at checkout.
type OrderItemModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name      string            `gorm:"type:varchar(200);not null"`
	UnitPrice valueobject.Money `gorm:"type:decimal(20,2);not null"`
	Quantity  int               `gorm:"not null"`
	CreatedAt time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:        m.ID,
		ProductID: m.ProductID,
		Name:      m.Name,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
	}
}

// FromDomain populates the persistence model from a domain Item
func (m *OrderItemModel) FromDomain(orderID uuid.UUID, it order.Item) {
	m.ID = it.ID
	m.OrderID = orderID
	m.ProductID = it.ProductID
	m.Name = it.Name
	m.UnitPrice = it.UnitPrice
	m.Quantity = it.Quantity
}
