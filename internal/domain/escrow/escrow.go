package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// Status represents the state of held escrow funds
type Status string

const (
	// StatusHeld means the buyer's money is held pending order completion
	StatusHeld Status = "held"
	// StatusReleased means the funds were credited to the seller's balance
	StatusReleased Status = "released"
	// StatusRefunded means the funds were returned to the buyer
	StatusRefunded Status = "refunded"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusHeld, StatusReleased, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the escrow reached a final state
func (s Status) IsTerminal() bool {
	return s == StatusReleased || s == StatusRefunded
}

// Transaction holds a buyer's payment for one order until release or refund.
// Held is the only state transitions are allowed from; released and refunded
// are terminal and mutually exclusive. Concurrent release and refund of the
// same transaction is resolved at the persistence layer with a conditional
// update, never in memory.
type Transaction struct {
	shared.BaseAggregateRoot

	OrderID          uuid.UUID         `json:"order_id"`
	ShopID           uuid.UUID         `json:"shop_id"`
	Amount           valueobject.Money `json:"amount"`
	Status           Status            `json:"status"`
	HeldAt           time.Time         `json:"held_at"`
	ReleasedAt       *time.Time        `json:"released_at,omitempty"`
	RefundedAt       *time.Time        `json:"refunded_at,omitempty"`
	PayoutEligibleAt time.Time         `json:"payout_eligible_at"`
}

// NewTransaction holds funds for an order. delayDays comes from the shop's
// trust tier at hold time and is not revised later.
func NewTransaction(orderID, shopID uuid.UUID, amount valueobject.Money, delayDays int, now time.Time) (*Transaction, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Escrow amount must be positive")
	}
	if delayDays < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payout delay cannot be negative")
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		ShopID:            shopID,
		Amount:            amount,
		Status:            StatusHeld,
		HeldAt:            now,
		PayoutEligibleAt:  now.AddDate(0, 0, delayDays),
	}
	t.AddDomainEvent(NewFundsHeldEvent(t))
	return t, nil
}

// Release credits the funds to the seller. Only held funds can be released.
func (t *Transaction) Release(now time.Time) error {
	if t.Status != StatusHeld {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot release escrow in %s status", t.Status)
	}
	t.Status = StatusReleased
	t.ReleasedAt = &now
	t.AddDomainEvent(NewFundsReleasedEvent(t))
	return nil
}

// Refund returns the funds to the buyer. Only held funds can be refunded.
func (t *Transaction) Refund(now time.Time) error {
	if t.Status != StatusHeld {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot refund escrow in %s status", t.Status)
	}
	t.Status = StatusRefunded
	t.RefundedAt = &now
	t.AddDomainEvent(NewFundsRefundedEvent(t))
	return nil
}

// IsPayoutEligible reports whether released funds have cleared the delay
func (t *Transaction) IsPayoutEligible(now time.Time) bool {
	return t.Status == StatusReleased && !t.PayoutEligibleAt.After(now)
}
