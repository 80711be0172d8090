package model

import "time"

// VisitHistory 就诊记录表 对应 visit_histories
type VisitHistory struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"   json:"id"`
	AppointmentID  int64     `gorm:"not null;index"             json:"appointment_id"`
	AnimalID       int64     `gorm:"not null"                   json:"animal_id"`
	VeterinarianID int64     `gorm:"not null"                   json:"veterinarian_id"`
	VisitDate      time.Time `gorm:"type:date;not null"         json:"visit_date"`
	Diagnosis      string    `gorm:"type:varchar(255);not null" json:"diagnosis"`
	Treatment      string    `gorm:"type:varchar(255);not null" json:"treatment"`
	Prescription   *string   `gorm:"type:varchar(255)"          json:"prescription,omitempty"`
	VersionedModel

	// 关联
	Appointment  *Appointment  `gorm:"foreignKey:AppointmentID"  json:"appointment,omitempty"`
	Animal       *Animal       `gorm:"foreignKey:AnimalID"       json:"animal,omitempty"`
	Veterinarian *Veterinarian `gorm:"foreignKey:VeterinarianID" json:"veterinarian,omitempty"`
}

// TableName 指定表名
func (VisitHistory) TableName() string { return "visit_histories" }
