package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	trustapp "github.com/soko/backend/internal/application/trust"
	"github.com/soko/backend/internal/domain/shop"
)

// TrustHandler handles trust score and violation endpoints
type TrustHandler struct {
	BaseHandler
	trustService *trustapp.Service
	authRequired gin.HandlerFunc
}

// NewTrustHandler creates a new TrustHandler
func NewTrustHandler(trustService *trustapp.Service, authRequired gin.HandlerFunc) *TrustHandler {
	return &TrustHandler{
		trustService: trustService,
		authRequired: authRequired,
	}
}

// RegisterRoutes registers trust endpoints. The badge is public; score
// recalculation and the violation log require authentication.
func (h *TrustHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shops := rg.Group("/shops/:id")
	{
		shops.GET("/trust-badge", h.GetTrustBadge)
		shops.POST("/trust-score/recalculate", h.authRequired, h.RecalculateTrustScore)
		shops.GET("/violations", h.authRequired, h.ListViolations)
		shops.POST("/violations", h.authRequired, h.RecordViolation)
	}
}

// GetTrustBadge returns the public trust badge for a shop
func (h *TrustHandler) GetTrustBadge(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	resp, err := h.trustService.GetTrustBadge(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecalculateTrustScore recomputes a shop's trust score from source data
func (h *TrustHandler) RecalculateTrustScore(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	resp, err := h.trustService.CalculateTrustScore(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListViolations returns a shop's recorded violations, newest first
func (h *TrustHandler) ListViolations(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	items, err := h.trustService.ListViolations(c.Request.Context(), shopID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// RecordViolationRequest is the wire shape of a manual violation report
type RecordViolationRequest struct {
	Type     string         `json:"type" binding:"required,oneof=contact_sharing high_dispute_rate listing_abuse"`
	Severity string         `json:"severity" binding:"required,oneof=low medium high"`
	Details  map[string]any `json:"details"`
}

// RecordViolation appends a violation against a shop and applies escalation
func (h *TrustHandler) RecordViolation(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var req RecordViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.trustService.RecordViolation(
		c.Request.Context(),
		shopID,
		shop.ViolationType(req.Type),
		shop.Severity(req.Severity),
		shop.ViolationDetails(req.Details),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
