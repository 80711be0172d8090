package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 账号信息响应（脱敏）
type UserResponse struct {
	ID             int64                 `json:"id"`
	Username       string                `json:"username"`
	Role           string                `json:"role"`
	VeterinarianID *int64                `json:"veterinarian_id,omitempty"`
	Veterinarian   *VeterinarianResponse `json:"veterinarian,omitempty"`
}
