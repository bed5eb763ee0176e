package shop

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the moderation state of a listing
type ProductStatus string

const (
	// ProductActive means the listing is visible and purchasable
	ProductActive ProductStatus = "active"
	// ProductRejected means moderation blocked the listing
	ProductRejected ProductStatus = "rejected"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	return s == ProductActive || s == ProductRejected
}

// Product is a shop's listing. Price here is the live price; orders snapshot
// it into their line items at checkout.
type Product struct {
	shared.BaseAggregateRoot

	ShopID      uuid.UUID         `json:"shop_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Price       valueobject.Money `json:"price"`
	Stock       int               `json:"stock"`
	Status      ProductStatus     `json:"status"`
}

// NewProduct creates an active product listing
func NewProduct(shopID uuid.UUID, name, description, category string, price valueobject.Money, stock int) (*Product, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shop ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopID:            shopID,
		Name:              name,
		Description:       description,
		Category:          strings.TrimSpace(category),
		Price:             price,
		Stock:             stock,
		Status:            ProductActive,
	}, nil
}

// ListingText is the text surface the contact-sharing scan runs over
func (p *Product) ListingText() string {
	return p.Name + " " + p.Description
}

// Reject blocks the listing after a moderation failure
func (p *Product) Reject() {
	p.Status = ProductRejected
}

// DecrementStock reserves quantity for a checkout
func (p *Product) DecrementStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.NewDomainErrorf("INSUFFICIENT_STOCK", "Insufficient stock for %s: %d available", p.Name, p.Stock)
	}
	p.Stock -= quantity
	return nil
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// FindByShop lists a shop's products, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[Product], error)

	// CountCreatedSince counts listings the shop created after the given time
	CountCreatedSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error)

	// DecrementStock conditionally reduces stock, failing with
	// shared.ErrInsufficientStock when fewer than quantity remain. Runs as a
	// single conditional update so concurrent checkouts cannot oversell.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}
