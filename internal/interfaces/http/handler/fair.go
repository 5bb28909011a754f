package handler

import (
	"github.com/feria/backend/internal/application/fair"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FairHandler handles fair-related HTTP requests
type FairHandler struct {
	BaseHandler
	fairService *fair.FairService
}

// NewFairHandler creates a new fair handler
func NewFairHandler(fairService *fair.FairService) *FairHandler {
	return &FairHandler{
		fairService: fairService,
	}
}

// Create godoc
// @Summary      Create fair
// @Description  Create a new fair for the tenant
// @Tags         fairs
// @Accept       json
// @Produce      json
// @Param        request body CreateFairRequest true "Fair details"
// @Success      201 {object} dto.Response{data=FairResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs [post]
func (h *FairHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateFairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	f, err := h.fairService.CreateFair(c.Request.Context(), tenantID, fair.CreateFairInput{
		Name:     req.Name,
		Location: req.Location,
		SellerID: req.SellerID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toFairResponse(f))
}

// List godoc
// @Summary      List fairs
// @Description  List the tenant's fairs with pagination and filtering
// @Tags         fairs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search in name and location"
// @Param        status query string false "Filter by status" Enums(open, closed)
// @Success      200 {object} dto.Response{data=[]FairResponse}
// @Security     BearerAuth
// @Router       /fairs [get]
func (h *FairHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListFairsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.fairService.ListFairs(c.Request.Context(), tenantID, fair.ListFairsInput{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Status:   req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	fairs := make([]FairResponse, len(result.Items))
	for i := range result.Items {
		fairs[i] = toFairResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, fairs, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @Summary      Get fair
// @Description  Get one fair by ID
// @Tags         fairs
// @Produce      json
// @Param        id path string true "Fair ID"
// @Success      200 {object} dto.Response{data=FairResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id} [get]
func (h *FairHandler) Get(c *gin.Context) {
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

	f, err := h.fairService.GetFair(c.Request.Context(), tenantID, fairID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toFairResponse(f))
}

// Close godoc
// @Summary      Close fair
// @Description  Close a fair so no further sales can be recorded under it
// @Tags         fairs
// @Produce      json
// @Param        id path string true "Fair ID"
// @Success      200 {object} dto.Response{data=FairResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/close [post]
func (h *FairHandler) Close(c *gin.Context) {
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

	f, err := h.fairService.CloseFair(c.Request.Context(), tenantID, fairID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toFairResponse(f))
}

// Summary godoc
// @Summary      Fair sales summary
// @Description  Sale count, units sold and revenue per payment method for one fair
// @Tags         fairs
// @Produce      json
// @Param        id path string true "Fair ID"
// @Success      200 {object} dto.Response{data=FairSummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/summary [get]
func (h *FairHandler) Summary(c *gin.Context) {
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

	summary, err := h.fairService.FairSummary(c.Request.Context(), tenantID, fairID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toFairSummaryResponse(summary))
}
