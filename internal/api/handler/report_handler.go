package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 统计报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Monthly 月度预约统计
// GET /api/v1/reports/monthly?year=2025&month=3
func (h *ReportHandler) Monthly(c *gin.Context) {
	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	report, err := h.reportSvc.Monthly(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// ExportMonthly 导出月度统计 Excel
// GET /api/v1/reports/monthly/export?year=2025&month=3
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	buf, filename, err := h.reportSvc.ExportMonthly(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Dashboard 首页概览
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportSvc.Dashboard(c.Request.Context())
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, dashboard)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 16001, "统计周期无效")
	case errors.Is(err, service.ErrExportGenerate):
		response.Error(c, http.StatusInternalServerError, 16002, "生成报表文件失败")
	default:
		response.InternalError(c)
	}
}
