package handler

import (
	appcatalog "github.com/feria/backend/internal/application/catalog"
	"github.com/feria/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles product catalog HTTP requests
type CatalogHandler struct {
	BaseHandler
	loader *appcatalog.Loader
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(loader *appcatalog.Loader) *CatalogHandler {
	return &CatalogHandler{
		loader: loader,
	}
}

// ProductResponse represents a catalog product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

func toProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.Amount(),
		Currency:  string(p.Price.Currency()),
		Stock:     p.Stock,
		Available: p.Available,
	}
}

// ListProducts godoc
// @Summary      List seller products
// @Description  Load the seller's full catalog, following upstream pagination
// @Tags         catalog
// @Produce      json
// @Param        seller_id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{seller_id}/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("seller_id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	products, err := h.loader.LoadAll(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}

	h.Success(c, out)
}

// RefreshProducts godoc
// @Summary      Refresh seller products
// @Description  Drop the cached catalog and reload it from the upstream API
// @Tags         catalog
// @Produce      json
// @Param        seller_id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{seller_id}/products/refresh [post]
func (h *CatalogHandler) RefreshProducts(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("seller_id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	h.loader.Invalidate(sellerID)

	products, err := h.loader.LoadAll(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}

	h.Success(c, out)
}
