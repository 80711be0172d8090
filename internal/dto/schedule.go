package dto

// ── 排班时段模块 DTO ──

// CreateScheduleRequest 创建时段请求；Status 为空时默认 Available
type CreateScheduleRequest struct {
	VeterinarianID int64  `json:"veterinarian_id" validate:"required,min=1"`
	Date           string `json:"date"            validate:"required,datetime=2006-01-02"` // "2025-03-03"
	TimeSlot       string `json:"time_slot"       validate:"required"`                     // "09:30"
	Status         string `json:"status"          validate:"omitempty,oneof=Available Unavailable"`
}

// UpdateScheduleRequest 更新时段请求
type UpdateScheduleRequest struct {
	CreateScheduleRequest
	Version int `json:"version" validate:"required,min=1"`
}

// ScheduleListRequest 时段列表查询
type ScheduleListRequest struct {
	PageRequest
	VeterinarianID *int64 `form:"veterinarian_id"`
	From           string `form:"from"` // 含
	To             string `form:"to"`   // 含
	Status         string `form:"status"`
}

// AvailableSlotsRequest 可预约时段查询；IncludeScheduleID 用于编辑预约时带上当前时段
type AvailableSlotsRequest struct {
	VeterinarianID    int64  `form:"veterinarian_id"     binding:"required"`
	Date              string `form:"date"                binding:"required"`
	IncludeScheduleID *int64 `form:"include_schedule_id"`
}

// ScheduleResponse 时段信息响应
type ScheduleResponse struct {
	ID             int64  `json:"id"`
	VeterinarianID int64  `json:"veterinarian_id"`
	Veterinarian   string `json:"veterinarian,omitempty"`
	Date           string `json:"date"`
	TimeSlot       string `json:"time_slot"`
	Status         string `json:"status"`
	Version        int    `json:"version"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
