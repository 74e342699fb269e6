package handler

import (
	"fmt"
	"net/http"

	"messpos/internal/dto"
	"messpos/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// List godoc
// @Summary      List orders
// @Description  Newest first, paginated. Without a period every order matches.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        period      query string false "today | week | month | year | custom | all"
// @Param        start       query string false "YYYY-MM-DD (custom)"
// @Param        end         query string false "YYYY-MM-DD (custom)"
// @Param        session     query string false "morning | afternoon | night"
// @Param        terminal_id query string false "Terminal id"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Page size (default 50, max 200)"
// @Success      200 {object} dto.OrderListResponse
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var f dto.OrderFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get an order by bill number
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param billNo path string true "Bill number"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/orders/{billNo} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByBillNo(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadReceipt godoc
// @Summary Download the PDF receipt of an order
// @Tags orders
// @Produce application/pdf
// @Security BearerAuth
// @Param billNo path string true "Bill number"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/orders/{billNo}/receipt [get]
func (h *OrdersHandler) DownloadReceipt(c *gin.Context) {
	billNo := c.Param("billNo")
	path, err := h.svc.ReceiptPath(c.Request.Context(), billNo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("receipt_%s.pdf", billNo))
}
