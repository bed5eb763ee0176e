package shop

import (
	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// ShopFrozenEvent is raised when a shop's payouts are frozen
type ShopFrozenEvent struct {
	shared.BaseDomainEvent
	OwnerID uuid.UUID `json:"owner_id"`
	Reason  string    `json:"reason"`
}

// EventType returns the event type name
func (e *ShopFrozenEvent) EventType() string {
	return "ShopFrozen"
}

// NewShopFrozenEvent creates a new ShopFrozenEvent
func NewShopFrozenEvent(s *Shop, reason string) *ShopFrozenEvent {
	return &ShopFrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ShopFrozen", "Shop", s.ID),
		OwnerID:         s.OwnerID,
		Reason:          reason,
	}
}

// ShopSuspendedEvent is raised when a shop is suspended for violations
type ShopSuspendedEvent struct {
	shared.BaseDomainEvent
	OwnerID uuid.UUID `json:"owner_id"`
	Reason  string    `json:"reason"`
}

// EventType returns the event type name
func (e *ShopSuspendedEvent) EventType() string {
	return "ShopSuspended"
}

// NewShopSuspendedEvent creates a new ShopSuspendedEvent
func NewShopSuspendedEvent(s *Shop, reason string) *ShopSuspendedEvent {
	return &ShopSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ShopSuspended", "Shop", s.ID),
		OwnerID:         s.OwnerID,
		Reason:          reason,
	}
}
