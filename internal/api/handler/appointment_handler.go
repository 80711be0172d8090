package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// AppointmentHandler 预约模块 HTTP 处理器
type AppointmentHandler struct {
	appointmentSvc service.AppointmentService
}

// NewAppointmentHandler 创建 AppointmentHandler
func NewAppointmentHandler(appointmentSvc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc}
}

// Book 预约时段
// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	appt, err := h.appointmentSvc.Book(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.Created(c, appt)
}

// Reschedule 改约：可更换时段、兽医、动物与原因
// PUT /api/v1/appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	appt, err := h.appointmentSvc.Reschedule(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, appt)
}

// Cancel 取消预约并释放时段
// POST /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.appointmentSvc.Cancel)
}

// Complete 完成预约
// POST /api/v1/appointments/:id/complete
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.appointmentSvc.Complete)
}

// Delete 删除预约
// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.appointmentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// Get 预约详情
// GET /api/v1/appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, appt)
}

// List 预约列表
// GET /api/v1/appointments
func (h *AppointmentHandler) List(c *gin.Context) {
	var req dto.AppointmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, total, err := h.appointmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// ── 内部辅助方法 ──

func (h *AppointmentHandler) transition(c *gin.Context, fn func(ctx context.Context, id, callerID int64) (*dto.AppointmentResponse, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	appt, err := fn(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, appt)
}

func (h *AppointmentHandler) handleAppointmentError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(c, 14001, "预约不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 14002, "排班时段不存在")
	case errors.Is(err, service.ErrScheduleNotAvailable):
		response.Conflict(c, 14003, err.Error())
	case errors.Is(err, service.ErrVeterinarianMismatch):
		response.Conflict(c, 14004, err.Error())
	case errors.Is(err, service.ErrOutsideClinicHours):
		response.Conflict(c, 14005, err.Error())
	case errors.Is(err, service.ErrAppointmentImmutable):
		response.Conflict(c, 14006, "已取消或已完成的预约不可修改")
	case errors.Is(err, service.ErrAppointmentHasVisits):
		response.Conflict(c, 14007, "预约已有就诊记录，无法删除")
	default:
		response.InternalError(c)
	}
}
