package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/pkg/response"
)

// Gin 上下文键，由 JWT 中间件写入
const (
	CtxUserID         = "user_id"
	CtxRole           = "role"
	CtxVeterinarianID = "veterinarian_id"
	CtxTokenJTI       = "token_jti"
	CtxTokenExp       = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// tokenInfo 当前 Access Token 的 jti 与过期时间，缺失时返回零值
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// parseIDParam 解析路径参数 :name 为正整数 ID，失败时写入 400
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "ID 无效")
		return 0, false
	}
	return id, true
}
