package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// OwnerHandler 宠物主人模块 HTTP 处理器
type OwnerHandler struct {
	ownerSvc service.OwnerService
}

// NewOwnerHandler 创建 OwnerHandler
func NewOwnerHandler(ownerSvc service.OwnerService) *OwnerHandler {
	return &OwnerHandler{ownerSvc: ownerSvc}
}

// List 宠物主人列表，支持 q 按姓名检索
// GET /api/v1/owners
func (h *OwnerHandler) List(c *gin.Context) {
	var req dto.OwnerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, total, err := h.ownerSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleOwnerError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 宠物主人详情（含名下动物）
// GET /api/v1/owners/:id
func (h *OwnerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	owner, err := h.ownerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleOwnerError(c, err)
		return
	}

	response.OK(c, owner)
}

// Create 创建宠物主人
// POST /api/v1/owners
func (h *OwnerHandler) Create(c *gin.Context) {
	var req dto.OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	owner, err := h.ownerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOwnerError(c, err)
		return
	}

	response.Created(c, owner)
}

// Update 更新宠物主人
// PUT /api/v1/owners/:id
func (h *OwnerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	owner, err := h.ownerSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleOwnerError(c, err)
		return
	}

	response.OK(c, owner)
}

// Delete 删除宠物主人
// DELETE /api/v1/owners/:id
func (h *OwnerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ownerSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleOwnerError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *OwnerHandler) handleOwnerError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrOwnerNotFound):
		response.NotFound(c, 12101, "宠物主人不存在")
	case errors.Is(err, service.ErrOwnerHasAnimals):
		response.Conflict(c, 12102, "宠物主人名下仍有动物，无法删除")
	default:
		response.InternalError(c)
	}
}
