package dto

// ── 动物模块 DTO ──

// AnimalRequest 创建动物请求
type AnimalRequest struct {
	OwnerID        int64   `json:"owner_id"        validate:"required,min=1"`
	Name           string  `json:"name"            validate:"required,min=2,max=50"`
	Species        string  `json:"species"         validate:"required,min=2,max=30"`
	Age            *int    `json:"age"             validate:"omitempty,min=0,max=40"`
	Gender         string  `json:"gender"          validate:"required,oneof=M F"`
	MedicalHistory *string `json:"medical_history" validate:"omitempty,max=200"`
}

// UpdateAnimalRequest 更新动物请求
type UpdateAnimalRequest struct {
	AnimalRequest
	Version int `json:"version" validate:"required,min=1"`
}

// AnimalListRequest 动物列表查询
type AnimalListRequest struct {
	PageRequest
	OwnerID *int64 `form:"owner_id"`
}

// AnimalResponse 动物信息响应
type AnimalResponse struct {
	ID             int64   `json:"id"`
	OwnerID        int64   `json:"owner_id"`
	OwnerName      string  `json:"owner_name,omitempty"`
	Name           string  `json:"name"`
	Species        string  `json:"species"`
	Age            *int    `json:"age,omitempty"`
	Gender         string  `json:"gender"`
	MedicalHistory *string `json:"medical_history,omitempty"`
	Version        int     `json:"version"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
