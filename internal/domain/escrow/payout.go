package escrow

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// PayoutStatus represents the state of a payout batch
type PayoutStatus string

const (
	// PayoutPending means the batch was recorded but not yet disbursed
	PayoutPending PayoutStatus = "pending"
	// PayoutProcessed means the disbursement completed
	PayoutProcessed PayoutStatus = "processed"
)

// IsValid checks if the status is a valid PayoutStatus
func (s PayoutStatus) IsValid() bool {
	return s == PayoutPending || s == PayoutProcessed
}

// String returns the string representation of PayoutStatus
func (s PayoutStatus) String() string {
	return string(s)
}

// TransactionIDSet is the set of escrow transaction IDs bundled into a payout,
// stored as a JSONB array. Membership across all payouts is what makes the
// batching run idempotent.
type TransactionIDSet []uuid.UUID

// Contains reports whether the set includes the given transaction
func (s TransactionIDSet) Contains(id uuid.UUID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for JSONB storage
func (s TransactionIDSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *TransactionIDSet) Scan(value any) error {
	if value == nil {
		*s = TransactionIDSet{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TransactionIDSet", value)
	}
	return json.Unmarshal(b, s)
}

// Payout is one shop's batch of eligible escrow transactions produced by a
// payout run. The amount is the sum of the bundled transactions at creation
// time.
type Payout struct {
	shared.BaseAggregateRoot

	ShopID         uuid.UUID         `json:"shop_id"`
	Amount         valueobject.Money `json:"amount"`
	TransactionIDs TransactionIDSet  `json:"transaction_ids"`
	Status         PayoutStatus      `json:"status"`
	ProcessedAt    *time.Time        `json:"processed_at,omitempty"`
}

// NewPayout bundles eligible transactions into a pending payout for one shop
func NewPayout(shopID uuid.UUID, transactions []Transaction) (*Payout, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop ID cannot be empty")
	}
	if len(transactions) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payout must contain at least one transaction")
	}

	total := valueobject.Zero()
	ids := make(TransactionIDSet, 0, len(transactions))
	for _, tx := range transactions {
		if tx.ShopID != shopID {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Payout cannot mix transactions from different shops")
		}
		var err error
		total, err = total.Add(tx.Amount)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Payout transactions must share one currency")
		}
		ids = append(ids, tx.ID)
	}

	p := &Payout{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopID:            shopID,
		Amount:            total,
		TransactionIDs:    ids,
		Status:            PayoutPending,
	}
	p.AddDomainEvent(NewPayoutCreatedEvent(p))
	return p, nil
}

// MarkProcessed records the disbursement as completed
func (p *Payout) MarkProcessed(now time.Time) error {
	if p.Status != PayoutPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot process payout in %s status", p.Status)
	}
	p.Status = PayoutProcessed
	p.ProcessedAt = &now
	return nil
}
