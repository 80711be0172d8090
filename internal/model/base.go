package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的审计模型
// 更新时以 WHERE id = ? AND version = ? 检查版本，命中 0 行即视为并发冲突
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// DateLayout 日期字段的统一格式
const DateLayout = "2006-01-02"
