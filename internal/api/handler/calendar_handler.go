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

// CalendarHandler 兽医日历 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Get 兽医日历（时段与预约合并视图）
// GET /api/v1/veterinarians/:id/calendar?from=2025-03-01&to=2025-03-31
func (h *CalendarHandler) Get(c *gin.Context) {
	vetID, req, ok := h.bind(c)
	if !ok {
		return
	}

	cal, err := h.calendarSvc.VetCalendar(c.Request.Context(), vetID, req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, cal)
}

// ExportICS 导出 iCalendar 订阅文件
// GET /api/v1/veterinarians/:id/calendar.ics
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	vetID, req, ok := h.bind(c)
	if !ok {
		return
	}

	data, filename, err := h.calendarSvc.ExportICS(c.Request.Context(), vetID, req)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *CalendarHandler) bind(c *gin.Context) (int64, *dto.CalendarRequest, bool) {
	vetID, ok := parseIDParam(c, "id")
	if !ok {
		return 0, nil, false
	}
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return 0, nil, false
	}
	return vetID, &req, true
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVeterinarianNotFound):
		response.NotFound(c, 12001, "兽医不存在")
	default:
		response.InternalError(c)
	}
}
