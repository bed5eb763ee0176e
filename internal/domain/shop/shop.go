package shop

import (
	"strings"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// Status represents the operational status of a shop
type Status string

const (
	// StatusActive indicates the shop can list, sell and receive payouts
	StatusActive Status = "active"
	// StatusFrozen indicates payouts are blocked due to dispute activity
	StatusFrozen Status = "frozen"
	// StatusSuspended indicates the shop was suspended for policy violations
	StatusSuspended Status = "suspended"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFrozen, StatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Shop represents a seller's shop aggregate root. Status only ever moves away
// from active; freezing and suspension are one-directional and no component
// reverses them automatically.
type Shop struct {
	shared.BaseAggregateRoot

	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
}

// NewShop creates a new active shop
func NewShop(ownerID uuid.UUID, name, description string) (*Shop, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Owner ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop name cannot exceed 200 characters")
	}

	s := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Name:              name,
		Description:       description,
		Status:            StatusActive,
	}
	return s, nil
}

// IsActive returns true if the shop can sell and receive payouts
func (s *Shop) IsActive() bool {
	return s.Status == StatusActive
}

// Freeze blocks payouts for the shop. Freezing an already frozen or suspended
// shop is a no-op so repeated threshold checks stay idempotent.
func (s *Shop) Freeze(reason string) {
	if s.Status != StatusActive {
		return
	}
	s.Status = StatusFrozen
	s.AddDomainEvent(NewShopFrozenEvent(s, reason))
}

// Suspend removes the shop from the marketplace. Suspension wins over a
// freeze; suspending an already suspended shop is a no-op.
func (s *Shop) Suspend(reason string) {
	if s.Status == StatusSuspended {
		return
	}
	s.Status = StatusSuspended
	s.AddDomainEvent(NewShopSuspendedEvent(s, reason))
}
