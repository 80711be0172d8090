package model

import "time"

// VetCalendarEntry 兽医日历视图 对应 vw_vet_calendar（只读）
type VetCalendarEntry struct {
	VeterinarianID    int64     `json:"veterinarian_id"`
	Veterinarian      string    `json:"veterinarian"`
	ScheduleID        int64     `json:"schedule_id"`
	Date              time.Time `json:"date"`
	TimeSlot          string    `json:"time_slot"`
	SlotStatus        string    `json:"slot_status"`
	AppointmentID     *int64    `json:"appointment_id,omitempty"`
	AnimalID          *int64    `json:"animal_id,omitempty"`
	AnimalName        *string   `json:"animal_name,omitempty"`
	Reason            *string   `json:"reason,omitempty"`
	AppointmentStatus *string   `json:"appointment_status,omitempty"`
}

// TableName 指定视图名
func (VetCalendarEntry) TableName() string { return "vw_vet_calendar" }

// VisitSummary 就诊摘要视图 对应 vw_visit_summary（只读）
type VisitSummary struct {
	VisitID        int64     `json:"visit_id"`
	VisitDate      time.Time `json:"visit_date"`
	AnimalID       int64     `json:"animal_id"`
	AnimalName     string    `json:"animal_name"`
	OwnerID        int64     `json:"owner_id"`
	OwnerName      string    `json:"owner_name"`
	VeterinarianID int64     `json:"veterinarian_id"`
	VetName        string    `json:"vet_name"`
	Diagnosis      string    `json:"diagnosis"`
	Treatment      string    `json:"treatment"`
	Prescription   *string   `json:"prescription,omitempty"`
}

// TableName 指定视图名
func (VisitSummary) TableName() string { return "vw_visit_summary" }
