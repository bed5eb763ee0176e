package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	disputeapp "github.com/soko/backend/internal/application/dispute"
)

// DisputeHandler handles dispute endpoints
type DisputeHandler struct {
	BaseHandler
	disputeService *disputeapp.Service
	authRequired   gin.HandlerFunc
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(disputeService *disputeapp.Service, authRequired gin.HandlerFunc) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
		authRequired:   authRequired,
	}
}

// RegisterRoutes registers dispute endpoints
func (h *DisputeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	disputes := rg.Group("/disputes")
	{
		disputes.POST("", h.authRequired, h.CreateDispute)
		disputes.GET("/:id", h.GetDispute)
	}

	rg.GET("/my/disputes", h.authRequired, h.ListMyDisputes)
	rg.GET("/shops/:id/disputes", h.authRequired, h.ListShopDisputes)
	rg.GET("/shops/:id/disputes/stats", h.ShopDisputeStats)
}

// CreateDisputeRequest is the wire shape of a dispute filing
type CreateDisputeRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Reason  string    `json:"reason" binding:"required,min=10"`
}

// CreateDispute opens a dispute for an order. Auto-resolution rules run
// immediately, so the response may already be resolved.
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.disputeService.CreateDispute(c.Request.Context(), req.OrderID, buyerID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetDispute returns a dispute by ID
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	resp, err := h.disputeService.GetDispute(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMyDisputes returns the authenticated buyer's disputes, paginated
func (h *DisputeHandler) ListMyDisputes(c *gin.Context) {
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

	items, total, err := h.disputeService.ListBuyerDisputes(c.Request.Context(), buyerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListShopDisputes returns a shop's disputes. Restricted to the shop owner.
func (h *DisputeHandler) ListShopDisputes(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.disputeService.ListShopDisputes(c.Request.Context(), shopID, actorID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ShopDisputeStats returns aggregate dispute counts for a shop
func (h *DisputeHandler) ShopDisputeStats(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	resp, err := h.disputeService.ShopDisputeStats(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
