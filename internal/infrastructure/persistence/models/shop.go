package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// ShopModel is the persistence model for shops
type ShopModel struct {
	AggregateModel
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop
func (m *ShopModel) ToDomain() *shop.Shop {
	s := &shop.Shop{
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Status:      shop.Status(m.Status),
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Shop
func (m *ShopModel) FromDomain(s *shop.Shop) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.OwnerID = s.OwnerID
	m.Name = s.Name
	m.Description = s.Description
	m.Status = string(s.Status)
}

// ProductModel is the persistence model for product listings
type ProductModel struct {
	AggregateModel
	ShopID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name        string            `gorm:"type:varchar(200);not null"`
	Description string            `gorm:"type:text"`
	Category    string            `gorm:"type:varchar(100);index"`
	Price       valueobject.Money `gorm:"type:decimal(20,2);not null"`
	Stock       int               `gorm:"not null;default:0"`
	Status      string            `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *shop.Product {
	p := &shop.Product{
		ShopID:      m.ShopID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Stock:       m.Stock,
		Status:      shop.ProductStatus(m.Status),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *shop.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ShopID = p.ShopID
	m.Name = p.Name
	m.Description = p.Description
	m.Category = p.Category
	m.Price = p.Price
	m.Stock = p.Stock
	m.Status = string(p.Status)
}

// TrustScoreModel is the persistence model for cached trust scores,
// one row per shop.
type TrustScoreModel struct {
	ShopID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Score               int       `gorm:"not null"`
	TotalOrders         int       `gorm:"not null;default:0"`
	CompletedOrders     int       `gorm:"not null;default:0"`
	DisputeCount        int       `gorm:"not null;default:0"`
	RefundCount         int       `gorm:"not null;default:0"`
	AvgFulfillmentHours float64   `gorm:"not null;default:0"`
	LastCalculatedAt    time.Time `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TrustScoreModel) TableName() string {
	return "trust_scores"
}

// ToDomain converts the persistence model to a domain TrustScoreRecord
func (m *TrustScoreModel) ToDomain() *shop.TrustScoreRecord {
	return &shop.TrustScoreRecord{
		ShopID:              m.ShopID,
		Score:               m.Score,
		TotalOrders:         m.TotalOrders,
		CompletedOrders:     m.CompletedOrders,
		DisputeCount:        m.DisputeCount,
		RefundCount:         m.RefundCount,
		AvgFulfillmentHours: m.AvgFulfillmentHours,
		LastCalculatedAt:    m.LastCalculatedAt,
	}
}

// FromDomain populates the persistence model from a domain TrustScoreRecord
func (m *TrustScoreModel) FromDomain(r *shop.TrustScoreRecord) {
	m.ShopID = r.ShopID
	m.Score = r.Score
	m.TotalOrders = r.TotalOrders
	m.CompletedOrders = r.CompletedOrders
	m.DisputeCount = r.DisputeCount
	m.RefundCount = r.RefundCount
	m.AvgFulfillmentHours = r.AvgFulfillmentHours
	m.LastCalculatedAt = r.LastCalculatedAt
}

// ViolationModel is the persistence model for the append-only violation log
type ViolationModel struct {
	BaseModel
	ShopID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_violations_shop_type,priority:1"`
	Type        string                `gorm:"type:varchar(50);not null;index:idx_violations_shop_type,priority:2"`
	Severity    string                `gorm:"type:varchar(10);not null"`
	Details     shop.ViolationDetails `gorm:"type:jsonb"`
	ActionTaken string                `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (ViolationModel) TableName() string {
	return "violations"
}

// ToDomain converts the persistence model to a domain Violation
func (m *ViolationModel) ToDomain() *shop.Violation {
	return &shop.Violation{
		BaseEntity:  m.BaseModel.ToDomain(),
		ShopID:      m.ShopID,
		Type:        shop.ViolationType(m.Type),
		Severity:    shop.Severity(m.Severity),
		Details:     m.Details,
		ActionTaken: m.ActionTaken,
	}
}

// FromDomain populates the persistence model from a domain Violation
func (m *ViolationModel) FromDomain(v *shop.Violation) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ShopID = v.ShopID
	m.Type = string(v.Type)
	m.Severity = string(v.Severity)
	m.Details = v.Details
	m.ActionTaken = v.ActionTaken
}

// ReviewModel is the persistence model for buyer reviews. Reviews feed the
// trust score's rating signal; review management itself lives outside this
// service, so there is no domain aggregate behind this table.
type ReviewModel struct {
	BaseModel
	ShopID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID uuid.UUID `gorm:"type:uuid;not null"`
	Rating  int       `gorm:"not null"`
	Comment string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}
