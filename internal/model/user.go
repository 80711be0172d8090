package model

// 账号角色
const (
	RoleAdmin        = "admin"
	RoleSecretary    = "secretary"
	RoleVeterinarian = "veterinarian"
)

// UserAccount 登录账号表 对应 user_accounts
type UserAccount struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	Username       string `gorm:"type:varchar(50);not null"  json:"username"`
	PasswordHash   string `gorm:"type:varchar(100);not null" json:"-"`
	Role           string `gorm:"type:varchar(20);not null"  json:"role"`
	VeterinarianID *int64 `json:"veterinarian_id,omitempty"` // 仅兽医账号关联
	VersionedModel

	// 关联
	Veterinarian *Veterinarian `gorm:"foreignKey:VeterinarianID" json:"veterinarian,omitempty"`
}

// TableName 指定表名
func (UserAccount) TableName() string { return "user_accounts" }

// IsValidRole 判断角色是否受支持
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSecretary, RoleVeterinarian:
		return true
	}
	return false
}
