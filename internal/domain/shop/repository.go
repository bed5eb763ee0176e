package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for shop persistence
type Repository interface {
	// FindByID finds a shop by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)

	// FindByOwner finds the shop owned by the given account
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Shop, error)

	// Save creates or updates a shop
	Save(ctx context.Context, s *Shop) error

	// UpdateStatus sets the shop status. Status changes are one-directional;
	// callers only move shops away from active.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// TrustScoreRepository defines the interface for cached trust score records
type TrustScoreRepository interface {
	// FindByShop returns the cached record, or nil when never computed
	FindByShop(ctx context.Context, shopID uuid.UUID) (*TrustScoreRecord, error)

	// Upsert inserts or replaces the record for its shop. A shop has at most
	// one record; recomputation overwrites in place.
	Upsert(ctx context.Context, record *TrustScoreRecord) error
}

// ViolationRepository defines the interface for the append-only violation log
type ViolationRepository interface {
	// Append persists a new violation. Violations are never updated or deleted.
	Append(ctx context.Context, v *Violation) error

	// CountByTypeSince counts violations of the given type for a shop
	// recorded after the given time.
	CountByTypeSince(ctx context.Context, shopID uuid.UUID, vtype ViolationType, since time.Time) (int64, error)

	// FindByShop lists violations for a shop, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, limit int) ([]Violation, error)
}

// TrustMetricsSource aggregates the raw inputs to a trust score computation
// from order, dispute and review history. Implementations read source tables
// directly so recomputation never drifts from reality.
type TrustMetricsSource interface {
	// GatherMetrics collects the trust metrics for a shop as of now
	GatherMetrics(ctx context.Context, shopID uuid.UUID) (TrustMetrics, error)

	// CountListingsSince counts products the shop listed after the given time
	CountListingsSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error)
}
