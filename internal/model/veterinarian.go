package model

import "fmt"

// Veterinarian 兽医表 对应 veterinarians
type Veterinarian struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	FirstName   string `gorm:"type:varchar(50);not null"  json:"first_name"`
	LastName    string `gorm:"type:varchar(50);not null"  json:"last_name"`
	Speciality  string `gorm:"type:varchar(50);not null"  json:"speciality"`
	PhoneNumber string `gorm:"type:varchar(20);not null"  json:"phone_number"`
	Email       string `gorm:"type:varchar(100);not null" json:"email"`
	VersionedModel
}

// TableName 指定表名
func (Veterinarian) TableName() string { return "veterinarians" }

// FullName 返回 "名 姓"
func (v *Veterinarian) FullName() string {
	return v.FirstName + " " + v.LastName
}

// DisplayName 下拉框等处展示用名称
func (v *Veterinarian) DisplayName() string {
	return fmt.Sprintf("Dr. %s %s (%s)", v.FirstName, v.LastName, v.Speciality)
}
