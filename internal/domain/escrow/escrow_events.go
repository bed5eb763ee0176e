package escrow

import (
	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// FundsHeldEvent is raised when a buyer's payment enters escrow
type FundsHeldEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID         `json:"order_id"`
	ShopID  uuid.UUID         `json:"shop_id"`
	Amount  valueobject.Money `json:"amount"`
}

// EventType returns the event type name
func (e *FundsHeldEvent) EventType() string {
	return "EscrowFundsHeld"
}

// NewFundsHeldEvent creates a new FundsHeldEvent
func NewFundsHeldEvent(t *Transaction) *FundsHeldEvent {
	return &FundsHeldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EscrowFundsHeld", "EscrowTransaction", t.ID),
		OrderID:         t.OrderID,
		ShopID:          t.ShopID,
		Amount:          t.Amount,
	}
}

// FundsReleasedEvent is raised when escrow funds are credited to the seller
type FundsReleasedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID         `json:"order_id"`
	ShopID  uuid.UUID         `json:"shop_id"`
	Amount  valueobject.Money `json:"amount"`
}

// EventType returns the event type name
func (e *FundsReleasedEvent) EventType() string {
	return "EscrowFundsReleased"
}

// NewFundsReleasedEvent creates a new FundsReleasedEvent
func NewFundsReleasedEvent(t *Transaction) *FundsReleasedEvent {
	return &FundsReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EscrowFundsReleased", "EscrowTransaction", t.ID),
		OrderID:         t.OrderID,
		ShopID:          t.ShopID,
		Amount:          t.Amount,
	}
}

// FundsRefundedEvent is raised when escrow funds are returned to the buyer
type FundsRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID         `json:"order_id"`
	ShopID  uuid.UUID         `json:"shop_id"`
	Amount  valueobject.Money `json:"amount"`
}

// EventType returns the event type name
func (e *FundsRefundedEvent) EventType() string {
	return "EscrowFundsRefunded"
}

// NewFundsRefundedEvent creates a new FundsRefundedEvent
func NewFundsRefundedEvent(t *Transaction) *FundsRefundedEvent {
	return &FundsRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EscrowFundsRefunded", "EscrowTransaction", t.ID),
		OrderID:         t.OrderID,
		ShopID:          t.ShopID,
		Amount:          t.Amount,
	}
}

// PayoutCreatedEvent is raised when a payout batch is recorded for a shop
type PayoutCreatedEvent struct {
	shared.BaseDomainEvent
	ShopID           uuid.UUID         `json:"shop_id"`
	Amount           valueobject.Money `json:"amount"`
	TransactionCount int               `json:"transaction_count"`
}

// EventType returns the event type name
func (e *PayoutCreatedEvent) EventType() string {
	return "PayoutCreated"
}

// NewPayoutCreatedEvent creates a new PayoutCreatedEvent
func NewPayoutCreatedEvent(p *Payout) *PayoutCreatedEvent {
	return &PayoutCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PayoutCreated", "Payout", p.ID),
		ShopID:           p.ShopID,
		Amount:           p.Amount,
		TransactionCount: len(p.TransactionIDs),
	}
}
