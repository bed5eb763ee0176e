package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// EscrowCreateKind is the outbox work kind checkout records for escrow holds
const EscrowCreateKind = "escrow.create"

// EscrowCreatePayload is the payload of an escrow.create outbox entry
type EscrowCreatePayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Amount  string    `json:"amount"`
}

// EscrowReleaser moves an order's held escrow funds to the seller
type EscrowReleaser interface {
	ReleaseEscrow(ctx context.Context, orderID uuid.UUID) error
}

// Service provides application-level order operations
type Service struct {
	orderRepo   order.Repository
	productRepo shop.ProductRepository
	shopRepo    shop.Repository
	releaser    EscrowReleaser
}

// NewService creates a new order Service
func NewService(
	orderRepo order.Repository,
	productRepo shop.ProductRepository,
	shopRepo shop.Repository,
	releaser EscrowReleaser,
) *Service {
	return &Service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shopRepo:    shopRepo,
		releaser:    releaser,
	}
}

// CheckoutItem is one requested line item at checkout
type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest is the input to Checkout. BuyerID is nil for guests.
type CheckoutRequest struct {
	BuyerID *uuid.UUID
	Items   []CheckoutItem
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	ShopID         uuid.UUID           `json:"shop_id"`
	BuyerID        *uuid.UUID          `json:"buyer_id,omitempty"`
	Items          []ItemResponse      `json:"items"`
	TotalAmount    valueobject.Money   `json:"total_amount"`
	Status         string              `json:"status"`
	EscrowReleased bool                `json:"escrow_released"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ItemResponse represents an order line item in API responses
type ItemResponse struct {
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	UnitPrice valueobject.Money `json:"unit_price"`
	Quantity  int               `json:"quantity"`
}

// Checkout places an order. Prices are snapshotted from the live products,
// stock is decremented, and an escrow.create outbox entry is written, all in
// one transaction. Payment capture is simulated, so the order is persisted
// already paid. Escrow creation itself happens after commit via the outbox
// processor and never rolls the order back.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Checkout requires at least one item")
	}

	var shopID uuid.UUID
	items := make([]order.Item, 0, len(req.Items))
	for _, reqItem := range req.Items {
		p, err := s.productRepo.FindByID(ctx, reqItem.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.Status != shop.ProductActive {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		if shopID == uuid.Nil {
			shopID = p.ShopID
		} else if shopID != p.ShopID {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "All items must belong to one shop")
		}
		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  reqItem.Quantity,
		})
	}

	sh, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}
	if !sh.IsActive() {
		return nil, shared.NewDomainError("BAD_REQUEST", "This shop is not accepting orders")
	}

	o, err := order.NewOrder(shopID, req.BuyerID, items)
	if err != nil {
		return nil, err
	}
	if err := o.MarkPaid(time.Now()); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(EscrowCreatePayload{
		OrderID: o.ID,
		Amount:  o.TotalAmount.Amount().String(),
	})
	if err != nil {
		return nil, err
	}
	entry := shared.NewOutboxEntry(EscrowCreateKind, o.ID, payload)

	if err := s.orderRepo.Checkout(ctx, o, entry); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// ShipOrder marks a paid order shipped. Only the shop owner may ship.
func (s *Service) ShipOrder(ctx context.Context, orderID, actorID uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	sh, err := s.shopRepo.FindByID(ctx, o.ShopID)
	if err != nil {
		return nil, err
	}
	if sh == nil || sh.OwnerID != actorID {
		return nil, shared.NewDomainError("FORBIDDEN", "Not the owner of this shop")
	}

	if err := o.Ship(time.Now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// CompleteOrder confirms receipt and releases the order's escrow. Only the
// buyer may complete; guest orders are completed by operators out of band.
func (s *Service) CompleteOrder(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsToBuyer(buyerID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer can complete this order")
	}

	if err := o.Complete(time.Now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	if err := s.releaser.ReleaseEscrow(ctx, o.ID); err != nil {
		return nil, err
	}
	o.MarkEscrowReleased()
	return toOrderResponse(o), nil
}

// CancelOrder cancels a pending order
func (s *Service) CancelOrder(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsToBuyer(buyerID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer can cancel this order")
	}

	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// GetOrder returns an order by ID
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// ListShopOrders lists a shop's orders
func (s *Service) ListShopOrders(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	page, err := s.orderRepo.FindByShop(ctx, shopID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toOrderResponses(page.Items), page.Total, nil
}

// ListBuyerOrders lists a buyer's orders
func (s *Service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	page, err := s.orderRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toOrderResponses(page.Items), page.Total, nil
}

func (s *Service) findOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	return o, nil
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return &OrderResponse{
		ID:             o.ID,
		ShopID:         o.ShopID,
		BuyerID:        o.BuyerID,
		Items:          items,
		TotalAmount:    o.TotalAmount,
		Status:         o.Status.String(),
		EscrowReleased: o.EscrowReleased,
		PaidAt:         o.PaidAt,
		ShippedAt:      o.ShippedAt,
		CompletedAt:    o.CompletedAt,
		CreatedAt:      o.CreatedAt,
	}
}

func toOrderResponses(items []order.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *toOrderResponse(&items[i]))
	}
	return responses
}
