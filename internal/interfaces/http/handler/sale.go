package handler

import (
	"github.com/feria/backend/internal/application/fair"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	BaseHandler
	saleService *fair.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *fair.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Submit godoc
// @Summary      Submit sale
// @Description  Record one sale from the fair's current cart
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body SubmitSaleRequest false "Payment details for card sales"
// @Success      201 {object} dto.Response{data=SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/sales [post]
func (h *SaleHandler) Submit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req SubmitSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	sale, err := h.saleService.Submit(c.Request.Context(), tenantID, fairID, fair.SubmitInput{
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSaleResponse(sale))
}

// List godoc
// @Summary      List sales
// @Description  List the sales recorded under a fair
// @Tags         sales
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), tenantID, fairID, fair.ListSalesInput{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sales := make([]SaleResponse, len(result.Items))
	for i := range result.Items {
		sales[i] = toSaleResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, sales, result.Total, result.Page, result.PageSize)
}
