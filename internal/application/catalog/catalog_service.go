package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// RestrictionChecker runs the listing policy checks backed by trust data
type RestrictionChecker interface {
	ScanListingText(text string) shop.ContactCheck
	CheckNewSellerThrottle(ctx context.Context, sh *shop.Shop) (shop.ListingDecision, error)
	CheckHighRiskCategory(sh *shop.Shop, category string) bool
}

// ViolationRecorder appends a violation and applies escalation
type ViolationRecorder interface {
	RecordViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error
}

// Service provides application-level shop and product operations
type Service struct {
	shopRepo     shop.Repository
	productRepo  shop.ProductRepository
	restrictions RestrictionChecker
	violations   ViolationRecorder
}

// NewService creates a new catalog Service
func NewService(
	shopRepo shop.Repository,
	productRepo shop.ProductRepository,
	restrictions RestrictionChecker,
	violations ViolationRecorder,
) *Service {
	return &Service{
		shopRepo:     shopRepo,
		productRepo:  productRepo,
		restrictions: restrictions,
		violations:   violations,
	}
}

// CreateShopRequest is the input to CreateShop
type CreateShopRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProductRequest is the input to CreateProduct
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	ShopID      uuid.UUID         `json:"shop_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Price       valueobject.Money `json:"price"`
	Stock       int               `json:"stock"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CreateShop opens a shop for the given owner. One shop per account.
func (s *Service) CreateShop(ctx context.Context, ownerID uuid.UUID, req CreateShopRequest) (*ShopResponse, error) {
	existing, err := s.shopRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("CONFLICT", "Account already owns a shop")
	}

	sh, err := shop.NewShop(ownerID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.shopRepo.Save(ctx, sh); err != nil {
		return nil, err
	}
	return toShopResponse(sh), nil
}

// GetShop returns a shop by ID
func (s *Service) GetShop(ctx context.Context, shopID uuid.UUID) (*ShopResponse, error) {
	sh, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}
	return toShopResponse(sh), nil
}

// CreateProduct lists a product for the owner's shop after running the
// moderation pipeline: contact-sharing scan, then the new-seller throttle,
// then the high-risk category gate. A contact match rejects the listing and
// records a violation; the product is never persisted.
func (s *Service) CreateProduct(ctx context.Context, ownerID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	sh, err := s.shopRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}
	if !sh.IsActive() {
		return nil, shared.NewDomainError("FORBIDDEN", "Shop is not allowed to list products")
	}

	check := s.restrictions.ScanListingText(req.Name + " " + req.Description)
	if check.HasContact {
		if err := s.violations.RecordViolation(ctx, sh.ID, shop.ViolationContactSharing, shop.SeverityMedium, shop.ViolationDetails{
			"matches": check.Matches,
			"product": req.Name,
		}); err != nil {
			return nil, err
		}
		return nil, shared.NewDomainError("BAD_REQUEST", "Product listing contains contact information")
	}

	decision, err := s.restrictions.CheckNewSellerThrottle(ctx, sh)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, shared.NewDomainError("BAD_REQUEST", decision.Reason)
	}

	if !s.restrictions.CheckHighRiskCategory(sh, req.Category) {
		return nil, shared.NewDomainError("BAD_REQUEST", "New sellers cannot list in this category yet")
	}

	p, err := shop.NewProduct(sh.ID, req.Name, req.Description, req.Category, valueobject.NewMoneyFromFloat(req.Price), req.Stock)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetProduct returns a product by ID
func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return toProductResponse(p), nil
}

// ListShopProducts lists a shop's products
func (s *Service) ListShopProducts(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]ProductResponse, int64, error) {
	page, err := s.productRepo.FindByShop(ctx, shopID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, *toProductResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

func toShopResponse(sh *shop.Shop) *ShopResponse {
	return &ShopResponse{
		ID:          sh.ID,
		OwnerID:     sh.OwnerID,
		Name:        sh.Name,
		Description: sh.Description,
		Status:      sh.Status.String(),
		CreatedAt:   sh.CreatedAt,
	}
}

func toProductResponse(p *shop.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		ShopID:      p.ShopID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}
