package shop

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// ViolationType identifies the policy a shop violated
type ViolationType string

const (
	// ViolationContactSharing indicates contact details embedded in listing text
	ViolationContactSharing ViolationType = "contact_sharing"
	// ViolationHighDisputeRate indicates the shop crossed a dispute threshold
	ViolationHighDisputeRate ViolationType = "high_dispute_rate"
	// ViolationListingAbuse indicates throttle or category gate circumvention
	ViolationListingAbuse ViolationType = "listing_abuse"
)

// String returns the string representation of ViolationType
func (t ViolationType) String() string {
	return string(t)
}

// Severity grades how serious a violation is
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ViolationDetails is the structured payload recorded with a violation
type ViolationDetails map[string]any

// Value implements driver.Valuer for JSONB storage
func (d ViolationDetails) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB retrieval
func (d *ViolationDetails) Scan(value any) error {
	if value == nil {
		*d = ViolationDetails{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ViolationDetails", value)
	}
	return json.Unmarshal(b, d)
}

// Violation is an append-only audit record of a shop policy violation.
// Violations are never mutated or deleted.
type Violation struct {
	shared.BaseEntity

	ShopID      uuid.UUID        `json:"shop_id"`
	Type        ViolationType    `json:"type"`
	Severity    Severity         `json:"severity"`
	Details     ViolationDetails `json:"details"`
	ActionTaken string           `json:"action_taken"`
}

// NewViolation creates a violation record with the derived action label
func NewViolation(shopID uuid.UUID, vtype ViolationType, severity Severity, details ViolationDetails) (*Violation, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop ID cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid violation severity")
	}
	return &Violation{
		BaseEntity:  shared.NewBaseEntity(),
		ShopID:      shopID,
		Type:        vtype,
		Severity:    severity,
		Details:     details,
		ActionTaken: ActionForViolation(vtype, severity),
	}, nil
}

// ActionForViolation derives the action label recorded alongside a violation
func ActionForViolation(vtype ViolationType, severity Severity) string {
	if severity == SeverityHigh {
		return "shop_suspended"
	}
	switch vtype {
	case ViolationContactSharing:
		return "product_rejected"
	case ViolationHighDisputeRate:
		return "payout_frozen"
	}
	return "warning_issued"
}

// RequiresImmediateSuspension returns true when a single violation of this
// severity suspends the shop regardless of history.
func (v *Violation) RequiresImmediateSuspension() bool {
	return v.Severity == SeverityHigh
}

// EscalationWindow is how far back repeated violations of the same type are
// counted toward suspension.
const EscalationWindow = 30 * 24 * time.Hour

// EscalationThreshold is the number of same-type violations inside the window
// that forces suspension.
const EscalationThreshold = 3
