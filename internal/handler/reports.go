package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"messpos/internal/dto"
	"messpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Summary godoc
// @Summary Dashboard stats for today, this week, month and year
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SummaryResponse
// @Router /v1/reports/summary [get]
func (h *ReportsHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary      Filtered sales report
// @Description  Stats, order rows, item sales and revenue trend for a period and optional session.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        period  query string false "today | week | month | year | custom (default today)"
// @Param        start   query string false "YYYY-MM-DD (custom)"
// @Param        end     query string false "YYYY-MM-DD (custom)"
// @Param        session query string false "morning | afternoon | night"
// @Success      200 {object} dto.ReportResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reports [get]
func (h *ReportsHandler) Report(c *gin.Context) {
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCSV godoc
// @Summary Download the filtered orders as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param period  query string false "today | week | month | year | custom"
// @Param start   query string false "YYYY-MM-DD (custom)"
// @Param end     query string false "YYYY-MM-DD (custom)"
// @Param session query string false "morning | afternoon | night"
// @Success 200 {file} binary
// @Failure 400 {object} apierror.APIError
// @Router /v1/reports/export.csv [get]
func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), q, &buf); err != nil {
		respondError(c, err)
		return
	}
	period := q.Period
	if period == "" {
		period = "today"
	}
	name := fmt.Sprintf("sales_report_%s_%s.csv", period, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
