package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// AnimalHandler 动物模块 HTTP 处理器
type AnimalHandler struct {
	animalSvc service.AnimalService
}

// NewAnimalHandler 创建 AnimalHandler
func NewAnimalHandler(animalSvc service.AnimalService) *AnimalHandler {
	return &AnimalHandler{animalSvc: animalSvc}
}

// List 动物列表，支持 owner_id 过滤
// GET /api/v1/animals
func (h *AnimalHandler) List(c *gin.Context) {
	var req dto.AnimalListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	list, total, err := h.animalSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAnimalError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get 动物详情
// GET /api/v1/animals/:id
func (h *AnimalHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	animal, err := h.animalSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAnimalError(c, err)
		return
	}

	response.OK(c, animal)
}

// Create 创建动物
// POST /api/v1/animals
func (h *AnimalHandler) Create(c *gin.Context) {
	var req dto.AnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	animal, err := h.animalSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAnimalError(c, err)
		return
	}

	response.Created(c, animal)
}

// Update 更新动物
// PUT /api/v1/animals/:id
func (h *AnimalHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	animal, err := h.animalSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAnimalError(c, err)
		return
	}

	response.OK(c, animal)
}

// Delete 删除动物
// DELETE /api/v1/animals/:id
func (h *AnimalHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.animalSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAnimalError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AnimalHandler) handleAnimalError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAnimalNotFound):
		response.NotFound(c, 12201, "动物不存在")
	case errors.Is(err, service.ErrAnimalInUse):
		response.Conflict(c, 12202, "动物仍有预约记录，无法删除")
	default:
		response.InternalError(c)
	}
}
