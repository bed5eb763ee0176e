package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/soko/backend/internal/application/order"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
	authRequired gin.HandlerFunc
	authOptional gin.HandlerFunc
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service, authRequired, authOptional gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authRequired: authRequired,
		authOptional: authOptional,
	}
}

// RegisterRoutes registers order endpoints. Checkout accepts guests, so it
// uses optional auth; lifecycle transitions require an authenticated actor.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.authOptional, h.Checkout)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/ship", h.authRequired, h.ShipOrder)
		orders.POST("/:id/complete", h.authRequired, h.CompleteOrder)
		orders.POST("/:id/cancel", h.authRequired, h.CancelOrder)
	}

	rg.GET("/shops/:id/orders", h.authRequired, h.ListShopOrders)
	rg.GET("/my/orders", h.authRequired, h.ListMyOrders)
}

// CheckoutRequest is the wire shape of a checkout call
type CheckoutRequest struct {
	Items []orderapp.CheckoutItem `json:"items" binding:"required,min=1,dive"`
}

// Checkout places an order. The buyer is taken from the JWT when present;
// otherwise the order is placed as a guest.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.Checkout(c.Request.Context(), orderapp.CheckoutRequest{
		BuyerID: optionalUserID(c),
		Items:   req.Items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetOrder returns an order by ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ShipOrder marks a paid order as shipped. Only the shop owner may ship.
func (h *OrderHandler) ShipOrder(c *gin.Context) {
	h.transition(c, h.orderService.ShipOrder)
}

// CompleteOrder confirms delivery and releases escrow. Only the buyer may confirm.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	h.transition(c, h.orderService.CompleteOrder)
}

// CancelOrder cancels an unshipped order and refunds its escrow
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.orderService.CancelOrder)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID, actorID uuid.UUID) (*orderapp.OrderResponse, error)) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := fn(c.Request.Context(), orderID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListShopOrders returns a shop's orders, paginated
func (h *OrderHandler) ListShopOrders(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.orderService.ListShopOrders(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListMyOrders returns the authenticated buyer's orders, paginated
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.orderService.ListBuyerOrders(c.Request.Context(), buyerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
