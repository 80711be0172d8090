package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"animal-care-clinic/config"
	"animal-care-clinic/internal/api/handler"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/policy"
	"animal-care-clinic/pkg/jwt"
	"animal-care-clinic/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	revoked map[string]bool
	err     error
}

func (s *stubChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-for-middleware",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := gin.New()
	r.GET("/p", JWTAuth(newTestManager(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "GET", "/p", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
}

func TestJWTAuth_RejectsRefreshToken(t *testing.T) {
	mgr := newTestManager()
	token, err := mgr.GenerateRefreshToken(jwt.Subject{UserID: 1, Role: model.RoleAdmin}, false)
	if err != nil {
		t.Fatalf("GenerateRefreshToken 应成功: %v", err)
	}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "GET", "/p", token); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token 应被拒绝，实际=%d", w.Code)
	}
}

func TestJWTAuth_InjectsClaims(t *testing.T) {
	mgr := newTestManager()
	token, err := mgr.GenerateAccessToken(jwt.Subject{UserID: 42, Role: model.RoleVeterinarian, VeterinarianID: 7})
	if err != nil {
		t.Fatalf("GenerateAccessToken 应成功: %v", err)
	}

	var gotUser, gotVet int64
	var gotRole, gotJTI string
	r := gin.New()
	r.GET("/p", JWTAuth(mgr, &stubChecker{}), func(c *gin.Context) {
		gotUser = c.GetInt64(handler.CtxUserID)
		gotVet = c.GetInt64(handler.CtxVeterinarianID)
		gotRole = c.GetString(handler.CtxRole)
		gotJTI = c.GetString(handler.CtxTokenJTI)
		c.Status(http.StatusOK)
	})

	w := serve(r, "GET", "/p", token)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if gotUser != 42 || gotVet != 7 || gotRole != model.RoleVeterinarian || gotJTI == "" {
		t.Errorf("上下文注入错误: user=%d vet=%d role=%s jti=%q", gotUser, gotVet, gotRole, gotJTI)
	}
}

func TestJWTAuth_Blacklisted(t *testing.T) {
	mgr := newTestManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 1, Role: model.RoleAdmin})
	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 应成功: %v", err)
	}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, &stubChecker{revoked: map[string]bool{claims.ID: true}}), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "GET", "/p", token); w.Code != http.StatusUnauthorized {
		t.Errorf("已登出 token 应被拒绝，实际=%d", w.Code)
	}
}

func TestJWTAuth_BlacklistErrorDegrades(t *testing.T) {
	mgr := newTestManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 1, Role: model.RoleAdmin})

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, &stubChecker{err: errors.New("redis down")}), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "GET", "/p", token); w.Code != http.StatusOK {
		t.Errorf("黑名单不可用时应放行，实际=%d", w.Code)
	}
}

// ── Authorize ──

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		op         policy.Operation
		wantStatus int
	}{
		{"AdminReport", model.RoleAdmin, policy.ReportRead, http.StatusOK},
		{"SecretaryReport", model.RoleSecretary, policy.ReportRead, http.StatusForbidden},
		{"SecretaryBook", model.RoleSecretary, policy.AppointmentWrite, http.StatusOK},
		{"VetBook", model.RoleVeterinarian, policy.AppointmentWrite, http.StatusForbidden},
		{"VetVisitWrite", model.RoleVeterinarian, policy.VisitWrite, http.StatusOK},
		{"NoRole", "", policy.OwnerRead, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", func(c *gin.Context) {
				if tt.role != "" {
					c.Set(handler.CtxRole, tt.role)
				}
				c.Next()
			}, Authorize(tt.op), func(c *gin.Context) { c.Status(http.StatusOK) })

			if w := serve(r, "GET", "/p", ""); w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际=%d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ── RateLimit ──

func TestRateLimit_LocalFallback(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, "POST", "/login", ""); w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求应放行，实际=%d", i+1, w.Code)
		}
	}
	if w := serve(r, "POST", "/login", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("超出限额应返回 429，实际=%d", w.Code)
	}
}

// ── BodyLimit ──

func TestBodyLimit_RejectsDeclaredOversize(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/p", strings.NewReader("0123456789abcdef"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}

// ── RequestID ──

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequestID(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "GET", "/p", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("应生成 X-Request-ID")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("应透传 X-Request-ID，实际=%q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("X-Request-ID", "bad id\nforged=1")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "bad id\nforged=1" || got == "" {
		t.Errorf("非法 X-Request-ID 应被替换，实际=%q", got)
	}
}

// ── CORS ──

func TestCORS_AllowedOriginPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("期望 204，实际=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin 错误: %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("应暴露 Content-Disposition")
	}
}

func TestCORS_UnknownOriginPreflightRejected(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://evil.test")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("未知来源不应设置 Allow-Origin: %q", got)
	}
}

// ── Metrics ──

func TestMetrics_RecordsRoute(t *testing.T) {
	collector := metrics.NewCollector("test_mw")
	r := gin.New()
	r.Use(Metrics(collector))
	r.GET("/owners/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	serve(r, "GET", "/owners/5", "")
	w := serve(r, "GET", "/metrics", "")

	body := w.Body.String()
	if !strings.Contains(body, `test_mw_http_requests_total{method="GET",path="/owners/:id",status="200"} 1`) {
		t.Errorf("指标中缺少路由模板计数:\n%s", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/owners/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/owners/1", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("期望 Cache-Control=no-store，实际=%q", got)
	}
	if got := w.Header().Get("Content-Security-Policy"); !strings.HasPrefix(got, "default-src 'none'") {
		t.Errorf("CSP 不符合预期: %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("明文 http 不应返回 HSTS")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/owners/1", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != hstsValue {
		t.Errorf("https 代理后期望返回 HSTS，实际=%q", got)
	}
}
