package handler

import (
	appcart "github.com/feria/backend/internal/application/cart"
	domaincart "github.com/feria/backend/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler handles cart-related HTTP requests. Every route is scoped
// to one fair; the cart is shared by all operators of that fair.
type CartHandler struct {
	BaseHandler
	cartService *appcart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *appcart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// Get godoc
// @Summary      Get cart
// @Description  Get the current cart state for a fair, initializing it if absent
// @Tags         cart
// @Produce      json
// @Param        id path string true "Fair ID"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	state, err := h.cartService.Get(c.Request.Context(), fairID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}

// SetQuantity godoc
// @Summary      Set product quantity
// @Description  Set the selected quantity for one product in the fair's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body SetQuantityRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart/items [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.cartService.SetQuantity(c.Request.Context(), fairID, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}

// Increment godoc
// @Summary      Increment product quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body AdjustQuantityRequest true "Product"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart/items/increment [post]
func (h *CartHandler) Increment(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.cartService.Increment(c.Request.Context(), fairID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}

// Decrement godoc
// @Summary      Decrement product quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body AdjustQuantityRequest true "Product"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart/items/decrement [post]
func (h *CartHandler) Decrement(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.cartService.Decrement(c.Request.Context(), fairID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}

// SetPaymentMethod godoc
// @Summary      Set payment method
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body SetPaymentMethodRequest true "Payment method"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart/payment-method [put]
func (h *CartHandler) SetPaymentMethod(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req SetPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.cartService.SetPaymentMethod(c.Request.Context(), fairID, domaincart.PaymentMethod(req.PaymentMethod))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}

// SetCustomer godoc
// @Summary      Set customer metadata
// @Description  Set the optional customer name and contact on the fair's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Fair ID"
// @Param        request body SetCustomerRequest true "Customer metadata"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart/customer [put]
func (h *CartHandler) SetCustomer(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	var req SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var state *domaincart.State
	if req.Name != nil {
		state, err = h.cartService.SetCustomerName(ctx, fairID, *req.Name)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Contact != nil {
		state, err = h.cartService.SetCustomerContact(ctx, fairID, *req.Contact)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if state == nil {
		state, err = h.cartService.Get(ctx, fairID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	h.Success(c, toCartResponse(fairID, state))
}

// Clear godoc
// @Summary      Clear cart
// @Description  Reset quantities, payment method and customer metadata
// @Tags         cart
// @Produce      json
// @Param        id path string true "Fair ID"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fairs/{id}/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	fairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fair ID")
		return
	}

	state, err := h.cartService.Clear(c.Request.Context(), fairID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(fairID, state))
}
