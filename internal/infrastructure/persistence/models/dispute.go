package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/dispute"
)

// DisputeModel is the persistence model for disputes. A partial unique index
// on open disputes would be the stronger guard, but the repository enforces
// the one-open-dispute-per-order rule before insert.
type DisputeModel struct {
	AggregateModel
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ShopID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason     string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:varchar(20);not null;index"`
	Resolution string    `gorm:"type:text"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (DisputeModel) TableName() string {
	return "disputes"
}

// ToDomain converts the persistence model to a domain Dispute
func (m *DisputeModel) ToDomain() *dispute.Dispute {
	d := &dispute.Dispute{
		OrderID:    m.OrderID,
		BuyerID:    m.BuyerID,
		ShopID:     m.ShopID,
		Reason:     m.Reason,
		Status:     dispute.Status(m.Status),
		Resolution: m.Resolution,
		ResolvedAt: m.ResolvedAt,
	}
	m.PopulateAggregateRoot(&d.BaseAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain Dispute
func (m *DisputeModel) FromDomain(d *dispute.Dispute) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.OrderID = d.OrderID
	m.BuyerID = d.BuyerID
	m.ShopID = d.ShopID
	m.Reason = d.Reason
	m.Status = string(d.Status)
	m.Resolution = d.Resolution
	m.ResolvedAt = d.ResolvedAt
}
