package handler

import (
	"net/http"

	"messpos/internal/dto"
	"messpos/internal/middleware"
	"messpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves the working order of the calling terminal
// (X-Terminal-ID, or the user id when the header is absent).
type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

// Get godoc
// @Summary Current cart of the terminal
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param X-Terminal-ID header string false "Terminal id"
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Add a menu item to the cart
// @Description  Plain items merge into an existing plain line; customized items always get a new line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddCartItemRequest true "Item and customization selection"
// @Success      200 {object} dto.CartResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), middleware.GetTerminalID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeQuantity godoc
// @Summary Change the quantity of a cart line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lineId path string true "Line id"
// @Param body body dto.ChangeQuantityRequest true "Quantity delta"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cart/items/{lineId} [patch]
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	var req dto.ChangeQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeQuantity(c.Request.Context(), middleware.GetTerminalID(c), c.Param("lineId"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveLine godoc
// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param lineId path string true "Line id"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cart/items/{lineId} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	resp, err := h.svc.RemoveLine(c.Request.Context(), middleware.GetTerminalID(c), c.Param("lineId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetDetails godoc
// @Summary Set session, order type and customer
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CartDetailsRequest true "Order header"
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart/details [put]
func (h *CartHandler) SetDetails(c *gin.Context) {
	var req dto.CartDetailsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetDetails(c.Request.Context(), middleware.GetTerminalID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clear godoc
// @Summary Empty the cart and drop its pending bill number
// @Tags cart
// @Security BearerAuth
// @Success 204
// @Router /v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetTerminalID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout godoc
// @Summary      Reserve a bill number for the cart
// @Description  Issues the next number of the day once per cart; repeated calls return the same number. A degraded number means the counter was unavailable.
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CheckoutResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	resp, err := h.svc.Checkout(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Complete the order
// @Description  Settles payment, stores the order and clears the cart. Receipt and notifications are produced asynchronously.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CompleteOrderRequest true "Payment"
// @Success      201 {object} dto.OrderResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/cart/complete [post]
func (h *CartHandler) Complete(c *gin.Context) {
	var req dto.CompleteOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var userID *uuid.UUID
	if claims := middleware.GetClaims(c); claims != nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			userID = &id
		}
	}
	resp, err := h.svc.Complete(c.Request.Context(), middleware.GetTerminalID(c), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
