package dto

// ── 报表模块 DTO ──

// MonthlyReportRequest 月报查询；缺省为当月
type MonthlyReportRequest struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

// VetWorkloadItem 兽医工作量
type VetWorkloadItem struct {
	VeterinarianID   int64  `json:"veterinarian_id"`
	VeterinarianName string `json:"veterinarian_name"`
	VisitCount       int64  `json:"visit_count"`
}

// MonthlyReportResponse 月报
type MonthlyReportResponse struct {
	Year              int               `json:"year"`
	Month             int               `json:"month"`
	TotalAppointments int64             `json:"total_appointments"`
	BookedCount       int64             `json:"booked_count"`
	CancelledCount    int64             `json:"cancelled_count"`
	CompletedCount    int64             `json:"completed_count"`
	VetWorkloads      []VetWorkloadItem `json:"vet_workloads"`
}

// DashboardResponse 首页统计
type DashboardResponse struct {
	TotalAnimals       int64                 `json:"total_animals"`
	TotalOwners        int64                 `json:"total_owners"`
	TotalAppointments  int64                 `json:"total_appointments"`
	AvailableSlots     int64                 `json:"available_slots"`
	TodaysAppointments []AppointmentResponse `json:"todays_appointments"`
}
