package model

import "time"

// 时段状态
const (
	ScheduleAvailable   = "Available"
	ScheduleBooked      = "Booked"
	ScheduleCompleted   = "Completed"
	ScheduleUnavailable = "Unavailable"
)

// Schedule 兽医排班时段表 对应 schedules
// (veterinarian_id, date, time_slot) 唯一
type Schedule struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"                       json:"id"`
	VeterinarianID int64     `gorm:"not null"                                       json:"veterinarian_id"`
	Date           time.Time `gorm:"type:date;not null"                             json:"date"`
	TimeSlot       string    `gorm:"type:varchar(5);not null"                       json:"time_slot"` // HH:mm
	Status         string    `gorm:"type:varchar(20);not null;default:'Available'"  json:"status"`
	VersionedModel

	// 关联
	Veterinarian *Veterinarian `gorm:"foreignKey:VeterinarianID" json:"veterinarian,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// IsAvailable 时段是否可预约
func (s *Schedule) IsAvailable() bool {
	return s.Status == ScheduleAvailable
}

// DateString 返回 yyyy-MM-dd
func (s *Schedule) DateString() string {
	return s.Date.Format(DateLayout)
}
