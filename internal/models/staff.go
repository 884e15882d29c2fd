package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff 员工账号表
type Staff struct {
	ID           uint           `gorm:"primarykey" json:"id"`                              // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`              // 登录名
	PasswordHash string         `gorm:"type:varchar(200);not null" json:"-"`               // 密码哈希
	DisplayName  string         `gorm:"type:varchar(200)" json:"display_name,omitempty"`   // 显示名
	Contact      string         `gorm:"type:varchar(200)" json:"contact,omitempty"`        // 联系方式
	Role         string         `gorm:"index;not null" json:"role"`                        // 角色
	Status       string         `gorm:"index;not null;default:'active'" json:"status"`     // 账号状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staffs"
}
