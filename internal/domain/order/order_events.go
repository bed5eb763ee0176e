package order

import (
	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// OrderCreatedEvent is raised when a checkout produces a new order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	ShopID      uuid.UUID         `json:"shop_id"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return "OrderCreated"
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("OrderCreated", "Order", o.ID),
		ShopID:          o.ShopID,
		TotalAmount:     o.TotalAmount,
	}
}

// OrderPaidEvent is raised when payment clears for an order
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	ShopID      uuid.UUID         `json:"shop_id"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// EventType returns the event type name
func (e *OrderPaidEvent) EventType() string {
	return "OrderPaid"
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("OrderPaid", "Order", o.ID),
		ShopID:          o.ShopID,
		TotalAmount:     o.TotalAmount,
	}
}

// OrderShippedEvent is raised when the seller ships an order
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	ShopID uuid.UUID `json:"shop_id"`
}

// EventType returns the event type name
func (e *OrderShippedEvent) EventType() string {
	return "OrderShipped"
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("OrderShipped", "Order", o.ID),
		ShopID:          o.ShopID,
	}
}

// OrderCompletedEvent is raised when the buyer confirms receipt
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	ShopID uuid.UUID `json:"shop_id"`
}

// EventType returns the event type name
func (e *OrderCompletedEvent) EventType() string {
	return "OrderCompleted"
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("OrderCompleted", "Order", o.ID),
		ShopID:          o.ShopID,
	}
}
