package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// barrelCodePattern 桶号格式：1-4 位大写字母 + 1-3 位数字（如 BHFP12）
var barrelCodePattern = regexp.MustCompile(`^[A-Z]{1,4}[0-9]{1,3}$`)

// IsValidBarrelCode 校验桶号格式
func IsValidBarrelCode(code string) bool {
	return barrelCodePattern.MatchString(code)
}

// Barrel 料桶表
type Barrel struct {
	ID           uint           `gorm:"primarykey" json:"id"`                             // 主键
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`                 // 桶号（人工编码）
	CustodyState string         `gorm:"index;not null" json:"custody_state"`              // 保管状态
	SlotID       *uint          `gorm:"index" json:"slot_id,omitempty"`                   // 在库时所在格位
	Condition    string         `gorm:"type:varchar(20)" json:"condition,omitempty"`      // 最近一次归还桶况
	Retired      bool           `gorm:"index;not null;default:false" json:"retired"`      // 丢失不可追回后软退役
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                          // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间

	Slot *HangerSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"` // 关联格位
}

// TableName 指定表名
func (Barrel) TableName() string {
	return "barrels"
}
