package dto

// ── 兽医模块 DTO ──

// VeterinarianRequest 创建兽医请求
type VeterinarianRequest struct {
	FirstName   string `json:"first_name"   validate:"required,min=2,max=50"`
	LastName    string `json:"last_name"    validate:"required,min=2,max=50"`
	Speciality  string `json:"speciality"   validate:"required,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Email       string `json:"email"        validate:"required,email,max=100"`
}

// UpdateVeterinarianRequest 更新兽医请求，Version 为读取时的版本号
type UpdateVeterinarianRequest struct {
	VeterinarianRequest
	Version int `json:"version" validate:"required,min=1"`
}

// VeterinarianResponse 兽医信息响应
type VeterinarianResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Speciality  string `json:"speciality"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
