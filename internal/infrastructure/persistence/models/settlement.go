package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// EscrowTransactionModel is the persistence model for escrow transactions.
// Status transitions out of held go through conditional updates in the
// repository, never plain saves.
type EscrowTransactionModel struct {
	AggregateModel
	OrderID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	ShopID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount           valueobject.Money `gorm:"type:decimal(20,2);not null"`
	Status           string            `gorm:"type:varchar(20);not null;index:idx_escrow_status_eligible,priority:1"`
	HeldAt           time.Time         `gorm:"not null"`
	ReleasedAt       *time.Time
	RefundedAt       *time.Time
	PayoutEligibleAt time.Time `gorm:"not null;index:idx_escrow_status_eligible,priority:2"`
}

// TableName returns the table name for GORM
func (EscrowTransactionModel) TableName() string {
	return "escrow_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *EscrowTransactionModel) ToDomain() *escrow.Transaction {
	t := &escrow.Transaction{
		OrderID:          m.OrderID,
		ShopID:           m.ShopID,
		Amount:           m.Amount,
		Status:           escrow.Status(m.Status),
		HeldAt:           m.HeldAt,
		ReleasedAt:       m.ReleasedAt,
		RefundedAt:       m.RefundedAt,
		PayoutEligibleAt: m.PayoutEligibleAt,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Transaction
func (m *EscrowTransactionModel) FromDomain(t *escrow.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.OrderID = t.OrderID
	m.ShopID = t.ShopID
	m.Amount = t.Amount
	m.Status = string(t.Status)
	m.HeldAt = t.HeldAt
	m.ReleasedAt = t.ReleasedAt
	m.RefundedAt = t.RefundedAt
	m.PayoutEligibleAt = t.PayoutEligibleAt
}

// PayoutModel is the persistence model for payout batches. TransactionIDs is a
// JSONB array queried with containment to keep payout runs idempotent.
type PayoutModel struct {
	AggregateModel
	ShopID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount         valueobject.Money       `gorm:"type:decimal(20,2);not null"`
	TransactionIDs escrow.TransactionIDSet `gorm:"type:jsonb;not null"`
	Status         string                  `gorm:"type:varchar(20);not null;index"`
	ProcessedAt    *time.Time
}

// TableName returns the table name for GORM
func (PayoutModel) TableName() string {
	return "payouts"
}

// ToDomain converts the persistence model to a domain Payout
func (m *PayoutModel) ToDomain() *escrow.Payout {
	p := &escrow.Payout{
		ShopID:         m.ShopID,
		Amount:         m.Amount,
		TransactionIDs: m.TransactionIDs,
		Status:         escrow.PayoutStatus(m.Status),
		ProcessedAt:    m.ProcessedAt,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payout
func (m *PayoutModel) FromDomain(p *escrow.Payout) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ShopID = p.ShopID
	m.Amount = p.Amount
	m.TransactionIDs = p.TransactionIDs
	m.Status = string(p.Status)
	m.ProcessedAt = p.ProcessedAt
}
