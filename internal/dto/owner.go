package dto

// ── 宠物主人模块 DTO ──

// OwnerRequest 创建宠物主人请求
type OwnerRequest struct {
	FirstName   string `json:"first_name"   validate:"required,min=2,max=50"`
	LastName    string `json:"last_name"    validate:"required,min=2,max=50"`
	Address     string `json:"address"      validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Email       string `json:"email"        validate:"required,email,max=100"`
}

// UpdateOwnerRequest 更新宠物主人请求
type UpdateOwnerRequest struct {
	OwnerRequest
	Version int `json:"version" validate:"required,min=1"`
}

// OwnerListRequest 宠物主人列表查询
type OwnerListRequest struct {
	PageRequest
	Query string `form:"q"`
}

// OwnerResponse 宠物主人信息响应
type OwnerResponse struct {
	ID          int64            `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	FullName    string           `json:"full_name"`
	Address     string           `json:"address"`
	PhoneNumber string           `json:"phone_number"`
	Email       string           `json:"email"`
	Animals     []AnimalResponse `json:"animals,omitempty"`
	Version     int              `json:"version"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}
