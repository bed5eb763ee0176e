package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/soko/backend/internal/application/catalog"
)

// CatalogHandler handles shop and product endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
	authRequired   gin.HandlerFunc
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.Service, authRequired gin.HandlerFunc) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		authRequired:   authRequired,
	}
}

// RegisterRoutes registers catalog endpoints
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shops := rg.Group("/shops")
	{
		shops.POST("", h.authRequired, h.CreateShop)
		shops.GET("/:id", h.GetShop)
		shops.GET("/:id/products", h.ListShopProducts)
	}

	products := rg.Group("/products")
	{
		products.POST("", h.authRequired, h.CreateProduct)
		products.GET("/:id", h.GetProduct)
	}
}

// CreateShop opens a shop for the authenticated account
func (h *CatalogHandler) CreateShop(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req catalogapp.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.catalogService.CreateShop(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetShop returns a shop by ID
func (h *CatalogHandler) GetShop(c *gin.Context) {
	shopID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	resp, err := h.catalogService.GetShop(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateProduct lists a product in the authenticated owner's shop
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.catalogService.CreateProduct(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetProduct returns a product by ID
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	resp, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListShopProducts returns a shop's products, paginated
func (h *CatalogHandler) ListShopProducts(c *gin.Context) {
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

	items, total, err := h.catalogService.ListShopProducts(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
