package model

import "time"

// 预约状态
const (
	AppointmentBooked    = "Booked"
	AppointmentCancelled = "Cancelled"
	AppointmentCompleted = "Completed"
)

// Appointment 预约表 对应 appointments
// AppointmentDate/AppointmentTime 始终从所属时段复制，不单独设置
type Appointment struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"                  json:"id"`
	ScheduleID      int64     `gorm:"not null;index"                            json:"schedule_id"`
	AnimalID        int64     `gorm:"not null;index"                            json:"animal_id"`
	AppointmentDate time.Time `gorm:"type:date;not null"                        json:"appointment_date"`
	AppointmentTime string    `gorm:"type:varchar(5);not null"                  json:"appointment_time"`
	Reason          string    `gorm:"type:varchar(200);not null"                json:"reason"`
	Status          string    `gorm:"type:varchar(20);not null;default:'Booked'" json:"status"`
	VersionedModel

	// 关联
	Schedule *Schedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	Animal   *Animal   `gorm:"foreignKey:AnimalID"   json:"animal,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }

// IsFinal 已取消或已完成的预约不可再修改
func (a *Appointment) IsFinal() bool {
	return a.Status == AppointmentCancelled || a.Status == AppointmentCompleted
}

// SyncFromSchedule 从时段复制日期与时间
func (a *Appointment) SyncFromSchedule(s *Schedule) {
	a.ScheduleID = s.ID
	a.AppointmentDate = s.Date
	a.AppointmentTime = s.TimeSlot
}
