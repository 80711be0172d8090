package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders 安全 HTTP 头中间件
// 接口只返回 JSON 与下载文件（报表 xlsx、日历 ics），CSP 禁止加载任何资源
// 响应含宠物主人联系方式与就诊记录，禁止任何中间缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")

		if isHTTPS(c) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		c.Next()
	}
}

// isHTTPS 直连 TLS 或反向代理声明的 https
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
