package dispute

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a dispute
type Status string

const (
	// StatusOpen means the dispute awaits resolution
	StatusOpen Status = "open"
	// StatusAutoResolved is reserved for automated closures that do not
	// refund; the current rules all refund and resolve to StatusRefunded
	StatusAutoResolved Status = "auto_resolved"
	// StatusRefunded means the buyer got their money back
	StatusRefunded Status = "refunded"
	// StatusRejected means a manual review sided with the seller
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusAutoResolved, StatusRefunded, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsResolved reports whether the dispute reached a final state
func (s Status) IsResolved() bool {
	return s != StatusOpen
}

// EndsInRefund reports whether the resolution returned money to the buyer
func (s Status) EndsInRefund() bool {
	return s == StatusRefunded
}

const minReasonLength = 10

// Dispute is a buyer's complaint against an order. At most one open dispute
// exists per order; resolution is final and never reopened.
type Dispute struct {
	shared.BaseAggregateRoot

	OrderID    uuid.UUID  `json:"order_id"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	ShopID     uuid.UUID  `json:"shop_id"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewDispute opens a dispute. The reason is trimmed and must carry enough
// substance for the fraud keyword scan to mean anything.
func NewDispute(orderID, buyerID, shopID uuid.UUID, reason string) (*Dispute, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Buyer ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < minReasonLength {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Dispute reason must be at least 10 characters")
	}

	d := &Dispute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		BuyerID:           buyerID,
		ShopID:            shopID,
		Reason:            reason,
		Status:            StatusOpen,
	}
	d.AddDomainEvent(NewDisputeOpenedEvent(d))
	return d, nil
}

// AutoResolve closes the dispute in the buyer's favor with the rule's
// message. Every automated rule refunds, so the dispute lands in the same
// refunded state a manual refund produces.
func (d *Dispute) AutoResolve(resolution string, now time.Time) error {
	if d.Status != StatusOpen {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot resolve dispute in %s status", d.Status)
	}
	d.Status = StatusRefunded
	d.Resolution = resolution
	d.ResolvedAt = &now
	d.AddDomainEvent(NewDisputeResolvedEvent(d))
	return nil
}

// ResolveRefund closes the dispute in the buyer's favor after manual review
func (d *Dispute) ResolveRefund(resolution string, now time.Time) error {
	if d.Status != StatusOpen {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot resolve dispute in %s status", d.Status)
	}
	d.Status = StatusRefunded
	d.Resolution = resolution
	d.ResolvedAt = &now
	d.AddDomainEvent(NewDisputeResolvedEvent(d))
	return nil
}

// ResolveReject closes the dispute in the seller's favor after manual review
func (d *Dispute) ResolveReject(resolution string, now time.Time) error {
	if d.Status != StatusOpen {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot resolve dispute in %s status", d.Status)
	}
	d.Status = StatusRejected
	d.Resolution = resolution
	d.ResolvedAt = &now
	d.AddDomainEvent(NewDisputeResolvedEvent(d))
	return nil
}
