package handler

import (
	"net/http"
	"strconv"

	"messpos/internal/apierror"
	"messpos/internal/dto"
	"messpos/internal/service"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct{ svc service.MenuService }

func NewMenuHandler(svc service.MenuService) *MenuHandler { return &MenuHandler{svc: svc} }

// List godoc
// @Summary      List menu items
// @Description  Active items only. With a session, items served in it whose name, category or description starts with q; without one, items containing q anywhere.
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        session  query string false "morning | afternoon | night"
// @Param        q        query string false "Search text"
// @Param        category query string false "Category name"
// @Success      200 {array} dto.MenuItemResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/menu [get]
func (h *MenuHandler) List(c *gin.Context) {
	var q dto.MenuQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a menu item
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path int true "Menu item id"
// @Success 200 {object} dto.MenuItemResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/menu/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Import godoc
// @Summary      Bulk import the menu
// @Description  Upserts every item by id in one batch and invalidates the menu cache.
// @Tags         menu
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ImportMenuRequest true "Menu items"
// @Success      200 {object} dto.ImportMenuResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/menu/import [post]
func (h *MenuHandler) Import(c *gin.Context) {
	var req dto.ImportMenuRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Import(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetActive godoc
// @Summary Show or hide a menu item
// @Tags menu
// @Accept json
// @Security BearerAuth
// @Param id path int true "Menu item id"
// @Param body body dto.SetActiveRequest true "Visibility"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/menu/{id}/active [patch]
func (h *MenuHandler) SetActive(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), id, req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return 0, false
	}
	return id, true
}
