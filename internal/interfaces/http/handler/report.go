package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/scentshop/backend/internal/application/report"
)

// ReportHandler handles admin revenue reporting endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RevenueSummary handles GET /api/v1/admin/reports/revenue
func (h *ReportHandler) RevenueSummary(c *gin.Context) {
	var req reportapp.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "start_date and end_date are required (YYYY-MM-DD)")
		return
	}

	summary, err := h.reportService.GetRevenueSummary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RevenueChart handles GET /api/v1/admin/reports/revenue/chart
func (h *ReportHandler) RevenueChart(c *gin.Context) {
	var req reportapp.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "start_date and end_date are required (YYYY-MM-DD)")
		return
	}

	points, err := h.reportService.GetRevenueChart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// OrderStats handles GET /api/v1/admin/reports/orders
func (h *ReportHandler) OrderStats(c *gin.Context) {
	var req reportapp.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "start_date and end_date are required (YYYY-MM-DD)")
		return
	}

	stats, err := h.reportService.GetOrderStats(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
