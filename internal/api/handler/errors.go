package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/internal/service"
	"animal-care-clinic/pkg/response"
)

// 通用错误码
const (
	codeBindFailed       = 10001
	codeValidationFailed = 10003
	codeConcurrency      = 10004
)

// handleCommonError 处理字段校验失败与并发修改冲突，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	if ve, ok := service.AsValidationError(err); ok {
		fields := make([]response.FieldError, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			fields = append(fields, response.FieldError{Field: f.Field, Message: f.Message})
		}
		response.ValidationFailed(c, codeValidationFailed, fields)
		return true
	}
	if errors.Is(err, service.ErrConcurrencyConflict) {
		response.Conflict(c, codeConcurrency, "记录已被其他用户修改，请刷新后重试")
		return true
	}
	return false
}

func bindFailed(c *gin.Context) {
	response.BadRequest(c, codeBindFailed, "参数校验失败")
}
