package dispute

import (
	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// DisputeOpenedEvent is raised when a buyer opens a dispute
type DisputeOpenedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
	ShopID  uuid.UUID `json:"shop_id"`
}

// EventType returns the event type name
func (e *DisputeOpenedEvent) EventType() string {
	return "DisputeOpened"
}

// NewDisputeOpenedEvent creates a new DisputeOpenedEvent
func NewDisputeOpenedEvent(d *Dispute) *DisputeOpenedEvent {
	return &DisputeOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DisputeOpened", "Dispute", d.ID),
		OrderID:         d.OrderID,
		BuyerID:         d.BuyerID,
		ShopID:          d.ShopID,
	}
}

// DisputeResolvedEvent is raised when a dispute reaches a final state
type DisputeResolvedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	ShopID     uuid.UUID `json:"shop_id"`
	Status     Status    `json:"status"`
	Resolution string    `json:"resolution"`
}

// EventType returns the event type name
func (e *DisputeResolvedEvent) EventType() string {
	return "DisputeResolved"
}

// NewDisputeResolvedEvent creates a new DisputeResolvedEvent
func NewDisputeResolvedEvent(d *Dispute) *DisputeResolvedEvent {
	return &DisputeResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DisputeResolved", "Dispute", d.ID),
		OrderID:         d.OrderID,
		ShopID:          d.ShopID,
		Status:          d.Status,
		Resolution:      d.Resolution,
	}
}
