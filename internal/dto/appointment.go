package dto

// ── 预约模块 DTO ──

// BookAppointmentRequest 预约请求
type BookAppointmentRequest struct {
	ScheduleID     int64  `json:"schedule_id"     validate:"required,min=1"`
	VeterinarianID int64  `json:"veterinarian_id" validate:"required,min=1"`
	AnimalID       int64  `json:"animal_id"       validate:"required,min=1"`
	Reason         string `json:"reason"          validate:"required,min=3,max=200"`
}

// RescheduleAppointmentRequest 改约/编辑预约请求；ScheduleID 不变时仅更新动物与事由
type RescheduleAppointmentRequest struct {
	BookAppointmentRequest
	Version int `json:"version" validate:"omitempty,min=1"`
}

// AppointmentListRequest 预约列表查询
type AppointmentListRequest struct {
	PageRequest
	VeterinarianID *int64 `form:"veterinarian_id"`
	AnimalID       *int64 `form:"animal_id"`
	Status         string `form:"status"`
	From           string `form:"from"`
	To             string `form:"to"`
}

// AppointmentResponse 预约信息响应
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	ScheduleID      int64  `json:"schedule_id"`
	VeterinarianID  int64  `json:"veterinarian_id,omitempty"`
	Veterinarian    string `json:"veterinarian,omitempty"`
	AnimalID        int64  `json:"animal_id"`
	AnimalName      string `json:"animal_name,omitempty"`
	OwnerName       string `json:"owner_name,omitempty"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	ScheduleStatus  string `json:"schedule_status,omitempty"`
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
