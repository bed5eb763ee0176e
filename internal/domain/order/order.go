package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusDisputed  Status = "disputed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted,
		StatusDisputed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed from s
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// HasShipped reports whether the order progressed past the paid state
func (s Status) HasShipped() bool {
	switch s {
	case StatusShipped, StatusCompleted:
		return true
	}
	return false
}

// Item is a line item captured at checkout. Price is a snapshot; later
// product edits never change past orders.
type Item struct {
	ID        uuid.UUID         `json:"id"`
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	UnitPrice valueobject.Money `json:"unit_price"`
	Quantity  int               `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (i Item) Subtotal() valueobject.Money {
	return i.UnitPrice.MultiplyByInt(int64(i.Quantity))
}

// Order is the purchase aggregate root. BuyerID is nil for guest checkouts.
type Order struct {
	shared.BaseAggregateRoot

	ShopID      uuid.UUID         `json:"shop_id"`
	BuyerID     *uuid.UUID        `json:"buyer_id,omitempty"`
	Items       []Item            `json:"items"`
	TotalAmount valueobject.Money `json:"total_amount"`
	Status      Status            `json:"status"`
	EscrowReleased bool           `json:"escrow_released"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	ShippedAt   *time.Time        `json:"shipped_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewOrder creates a pending order from checkout line items. The total is
// computed from the item snapshots, never trusted from the caller.
func NewOrder(shopID uuid.UUID, buyerID *uuid.UUID, items []Item) (*Order, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order must contain at least one item")
	}

	total := valueobject.Zero()
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item price cannot be negative")
		}
		var err error
		total, err = total.Add(item.Subtotal())
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Order items must share one currency")
		}
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopID:            shopID,
		BuyerID:           buyerID,
		Items:             items,
		TotalAmount:       total,
		Status:            StatusPending,
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// MarkPaid moves a pending order to paid
func (o *Order) MarkPaid(now time.Time) error {
	if o.Status != StatusPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot pay order in %s status", o.Status)
	}
	o.Status = StatusPaid
	o.PaidAt = &now
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// Ship moves a paid order to shipped and stamps the fulfillment time used by
// trust scoring.
func (o *Order) Ship(now time.Time) error {
	if o.Status != StatusPaid {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot ship order in %s status", o.Status)
	}
	o.Status = StatusShipped
	o.ShippedAt = &now
	o.AddDomainEvent(NewOrderShippedEvent(o))
	return nil
}

// Complete moves a shipped order to completed. Completion makes the escrow
// funds releasable.
func (o *Order) Complete(now time.Time) error {
	if o.Status != StatusShipped {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot complete order in %s status", o.Status)
	}
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// MarkDisputed flags the order while a dispute is open against it
func (o *Order) MarkDisputed() error {
	if o.Status.IsTerminal() || o.Status == StatusPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot dispute order in %s status", o.Status)
	}
	if o.Status == StatusDisputed {
		return nil
	}
	o.Status = StatusDisputed
	return nil
}

// MarkRefunded is terminal; the order's escrow was returned to the buyer
func (o *Order) MarkRefunded() error {
	if o.Status.IsTerminal() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot refund order in %s status", o.Status)
	}
	o.Status = StatusRefunded
	return nil
}

// Cancel is terminal and only allowed before payment
func (o *Order) Cancel() error {
	if o.Status != StatusPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot cancel order in %s status", o.Status)
	}
	o.Status = StatusCancelled
	return nil
}

// MarkEscrowReleased records that the order's escrow funds went to the seller
func (o *Order) MarkEscrowReleased() {
	o.EscrowReleased = true
}

// FulfillmentHours returns the paid-to-shipped duration in hours, or false
// when the order never progressed through both states.
func (o *Order) FulfillmentHours() (float64, bool) {
	if o.PaidAt == nil || o.ShippedAt == nil {
		return 0, false
	}
	return o.ShippedAt.Sub(*o.PaidAt).Hours(), true
}

// BelongsToBuyer reports whether the given account placed this order. Guest
// orders belong to nobody.
func (o *Order) BelongsToBuyer(buyerID uuid.UUID) bool {
	return o.BuyerID != nil && *o.BuyerID == buyerID
}
