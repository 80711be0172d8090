package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// VeterinarianHandler 兽医模块 HTTP 处理器
type VeterinarianHandler struct {
	vetSvc service.VeterinarianService
}

// NewVeterinarianHandler 创建 VeterinarianHandler
func NewVeterinarianHandler(vetSvc service.VeterinarianService) *VeterinarianHandler {
	return &VeterinarianHandler{vetSvc: vetSvc}
}

// List 兽医列表
// GET /api/v1/veterinarians
func (h *VeterinarianHandler) List(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, total, err := h.vetSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleVeterinarianError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 兽医详情
// GET /api/v1/veterinarians/:id
func (h *VeterinarianHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	vet, err := h.vetSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleVeterinarianError(c, err)
		return
	}

	response.OK(c, vet)
}

// Create 创建兽医
// POST /api/v1/veterinarians
func (h *VeterinarianHandler) Create(c *gin.Context) {
	var req dto.VeterinarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vet, err := h.vetSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleVeterinarianError(c, err)
		return
	}

	response.Created(c, vet)
}

// Update 更新兽医
// PUT /api/v1/veterinarians/:id
func (h *VeterinarianHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVeterinarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vet, err := h.vetSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleVeterinarianError(c, err)
		return
	}

	response.OK(c, vet)
}

// Delete 删除兽医
// DELETE /api/v1/veterinarians/:id
func (h *VeterinarianHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.vetSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleVeterinarianError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *VeterinarianHandler) handleVeterinarianError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVeterinarianNotFound):
		response.NotFound(c, 12001, "兽医不存在")
	case errors.Is(err, service.ErrVeterinarianInUse):
		response.Conflict(c, 12002, "兽医仍有排班时段，无法删除")
	default:
		response.InternalError(c)
	}
}
