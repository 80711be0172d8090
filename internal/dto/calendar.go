package dto

// ── 兽医日历 DTO ──

// CalendarRequest 日历查询区间（含两端），缺省为今天起 30 天
type CalendarRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// CalendarEntryResponse 日历条目（vw_vet_calendar）
type CalendarEntryResponse struct {
	ScheduleID        int64   `json:"schedule_id"`
	Date              string  `json:"date"`
	TimeSlot          string  `json:"time_slot"`
	SlotStatus        string  `json:"slot_status"`
	AppointmentID     *int64  `json:"appointment_id,omitempty"`
	AnimalID          *int64  `json:"animal_id,omitempty"`
	AnimalName        *string `json:"animal_name,omitempty"`
	Reason            *string `json:"reason,omitempty"`
	AppointmentStatus *string `json:"appointment_status,omitempty"`
}

// CalendarResponse 兽医日历
type CalendarResponse struct {
	VeterinarianID int64                   `json:"veterinarian_id"`
	Veterinarian   string                  `json:"veterinarian"`
	From           string                  `json:"from"`
	To             string                  `json:"to"`
	Entries        []CalendarEntryResponse `json:"entries"`
}
