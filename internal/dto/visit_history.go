package dto

// ── 就诊记录模块 DTO ──

// VisitHistoryRequest 创建就诊记录请求
type VisitHistoryRequest struct {
	AppointmentID  int64   `json:"appointment_id"  validate:"required,min=1"`
	AnimalID       int64   `json:"animal_id"       validate:"required,min=1"`
	VeterinarianID int64   `json:"veterinarian_id" validate:"required,min=1"`
	VisitDate      string  `json:"visit_date"      validate:"required,datetime=2006-01-02"`
	Diagnosis      string  `json:"diagnosis"       validate:"required,min=5,max=255"`
	Treatment      string  `json:"treatment"       validate:"required,min=5,max=255"`
	Prescription   *string `json:"prescription"    validate:"omitempty,max=255"`
}

// UpdateVisitHistoryRequest 更新就诊记录请求
type UpdateVisitHistoryRequest struct {
	VisitHistoryRequest
	Version int `json:"version" validate:"required,min=1"`
}

// VisitHistoryListRequest 就诊记录列表查询
type VisitHistoryListRequest struct {
	PageRequest
	AnimalID       *int64 `form:"animal_id"`
	OwnerID        *int64 `form:"owner_id"`
	VeterinarianID *int64 `form:"veterinarian_id"`
}

// VisitHistoryResponse 就诊记录响应
type VisitHistoryResponse struct {
	ID             int64   `json:"id"`
	AppointmentID  int64   `json:"appointment_id"`
	AnimalID       int64   `json:"animal_id"`
	AnimalName     string  `json:"animal_name,omitempty"`
	VeterinarianID int64   `json:"veterinarian_id"`
	Veterinarian   string  `json:"veterinarian,omitempty"`
	VisitDate      string  `json:"visit_date"`
	Diagnosis      string  `json:"diagnosis"`
	Treatment      string  `json:"treatment"`
	Prescription   *string `json:"prescription,omitempty"`
	Version        int     `json:"version"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// VisitSummaryResponse 就诊摘要（vw_visit_summary）
type VisitSummaryResponse struct {
	VisitID        int64   `json:"visit_id"`
	VisitDate      string  `json:"visit_date"`
	AnimalID       int64   `json:"animal_id"`
	AnimalName     string  `json:"animal_name"`
	OwnerID        int64   `json:"owner_id"`
	OwnerName      string  `json:"owner_name"`
	VeterinarianID int64   `json:"veterinarian_id"`
	VetName        string  `json:"vet_name"`
	Diagnosis      string  `json:"diagnosis"`
	Treatment      string  `json:"treatment"`
	Prescription   *string `json:"prescription,omitempty"`
}
