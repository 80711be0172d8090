package model

// Owner 宠物主人表 对应 owners
type Owner struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	FirstName   string `gorm:"type:varchar(50);not null"  json:"first_name"`
	LastName    string `gorm:"type:varchar(50);not null"  json:"last_name"`
	Address     string `gorm:"type:varchar(100);not null" json:"address"`
	PhoneNumber string `gorm:"type:varchar(20);not null"  json:"phone_number"`
	Email       string `gorm:"type:varchar(100);not null" json:"email"`
	VersionedModel

	// 关联
	Animals []Animal `gorm:"foreignKey:OwnerID" json:"animals,omitempty"`
}

// TableName 指定表名
func (Owner) TableName() string { return "owners" }

// FullName 返回 "名 姓"
func (o *Owner) FullName() string {
	return o.FirstName + " " + o.LastName
}
