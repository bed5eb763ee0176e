package handler

import (
	"github.com/gin-gonic/gin"

	escrowapp "github.com/soko/backend/internal/application/escrow"
)

// SettlementHandler handles escrow and payout endpoints
type SettlementHandler struct {
	BaseHandler
	escrowService *escrowapp.Service
	payoutService *escrowapp.PayoutService
	authRequired  gin.HandlerFunc
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(
	escrowService *escrowapp.Service,
	payoutService *escrowapp.PayoutService,
	authRequired gin.HandlerFunc,
) *SettlementHandler {
	return &SettlementHandler{
		escrowService: escrowService,
		payoutService: payoutService,
		authRequired:  authRequired,
	}
}

// RegisterRoutes registers settlement endpoints
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:id/escrow", h.authRequired, h.GetOrderEscrow)

	shops := rg.Group("/shops/:id")
	shops.Use(h.authRequired)
	{
		shops.GET("/earnings", h.Earnings)
		shops.GET("/payout-schedule", h.PayoutSchedule)
		shops.GET("/payouts", h.ListPayouts)
	}

	payouts := rg.Group("/payouts")
	payouts.Use(h.authRequired)
	{
		payouts.POST("/run", h.RunPayouts)
		payouts.GET("/pending", h.PendingPayouts)
		payouts.POST("/:id/processed", h.MarkPayoutProcessed)
	}
}

// GetOrderEscrow returns the escrow transaction backing an order
func (h *SettlementHandler) GetOrderEscrow(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.escrowService.GetEscrowByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Earnings summarizes a shop's released, paid-out and pending funds
func (h *SettlementHandler) Earnings(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	resp, err := h.payoutService.Earnings(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PayoutSchedule returns upcoming payout-eligibility buckets for a shop
func (h *SettlementHandler) PayoutSchedule(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	entries, err := h.payoutService.PayoutSchedule(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// ListPayouts returns a shop's payout batches, paginated
func (h *SettlementHandler) ListPayouts(c *gin.Context) {
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

	items, total, err := h.payoutService.ListPayouts(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// RunPayouts triggers a payout batching run outside the weekly schedule
func (h *SettlementHandler) RunPayouts(c *gin.Context) {
	resp, err := h.payoutService.ProcessScheduledPayouts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PendingPayouts lists payout batches awaiting disbursement
func (h *SettlementHandler) PendingPayouts(c *gin.Context) {
	items, err := h.payoutService.PendingPayouts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// MarkPayoutProcessed records that a pending payout batch has been disbursed
func (h *SettlementHandler) MarkPayoutProcessed(c *gin.Context) {
	payoutID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payout ID")
		return
	}

	resp, err := h.payoutService.MarkPayoutProcessed(c.Request.Context(), payoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
