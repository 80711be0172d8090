package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// VisitHistoryHandler 就诊记录 HTTP 处理器
type VisitHistoryHandler struct {
	visitSvc service.VisitHistoryService
}

// NewVisitHistoryHandler 创建 VisitHistoryHandler
func NewVisitHistoryHandler(visitSvc service.VisitHistoryService) *VisitHistoryHandler {
	return &VisitHistoryHandler{visitSvc: visitSvc}
}

// List 就诊记录列表
// GET /api/v1/visit-histories
func (h *VisitHistoryHandler) List(c *gin.Context) {
	var req dto.VisitHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, total, err := h.visitSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Summaries 就诊摘要，按就诊日期倒序
// GET /api/v1/visit-histories/summaries
func (h *VisitHistoryHandler) Summaries(c *gin.Context) {
	var req dto.VisitHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, err := h.visitSvc.ListSummaries(c.Request.Context(), &req)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 就诊记录详情
// GET /api/v1/visit-histories/:id
func (h *VisitHistoryHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, visit)
}

// Create 录入就诊记录
// POST /api/v1/visit-histories
func (h *VisitHistoryHandler) Create(c *gin.Context) {
	var req dto.VisitHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	visit, err := h.visitSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.Created(c, visit)
}

// Update 更新就诊记录
// PUT /api/v1/visit-histories/:id
func (h *VisitHistoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVisitHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	visit, err := h.visitSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, visit)
}

// Delete 删除就诊记录
// DELETE /api/v1/visit-histories/:id
func (h *VisitHistoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.visitSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *VisitHistoryHandler) handleVisitError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVisitHistoryNotFound):
		response.NotFound(c, 15001, "就诊记录不存在")
	default:
		response.InternalError(c)
	}
}
