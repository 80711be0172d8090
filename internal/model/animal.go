package model

// Animal 动物表 对应 animals
type Animal struct {
	ID             int64   `gorm:"primaryKey;autoIncrement"  json:"id"`
	OwnerID        int64   `gorm:"not null;index"            json:"owner_id"`
	Name           string  `gorm:"type:varchar(50);not null" json:"name"`
	Species        string  `gorm:"type:varchar(30);not null" json:"species"`
	Age            *int    `gorm:"type:smallint"             json:"age,omitempty"`
	Gender         string  `gorm:"type:char(1);not null"     json:"gender"` // M | F
	MedicalHistory *string `gorm:"type:varchar(200)"         json:"medical_history,omitempty"`
	VersionedModel

	// 关联
	Owner *Owner `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Animal) TableName() string { return "animals" }
