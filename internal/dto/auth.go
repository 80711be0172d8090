package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username   string `json:"username"    binding:"required,max=50"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserAccountRequest 创建登录账号（cmd/useradd 使用）
type CreateUserAccountRequest struct {
	Username       string `json:"username"        validate:"required,min=3,max=50"`
	Password       string `json:"password"        validate:"required,min=8,max=72"`
	Role           string `json:"role"            validate:"required,oneof=admin secretary veterinarian"`
	VeterinarianID *int64 `json:"veterinarian_id" validate:"required_if=Role veterinarian"`
}
