package models

import "time"

// AuditLog 命令审计日志
// 说明：每条写命令落一条记录（操作人、动作、前后状态），替代前端确认框式的口头留痕。
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	Action     string    `gorm:"type:varchar(100);index;not null" json:"action"`
	EntityType string    `gorm:"type:varchar(50);index;not null" json:"entity_type"`
	EntityID   uint      `gorm:"index;not null" json:"entity_id"`
	FromStatus string    `gorm:"type:varchar(50);not null;default:''" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(50);not null;default:''" json:"to_status"`
	DetailJSON JSON      `gorm:"type:json" json:"detail"`
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
