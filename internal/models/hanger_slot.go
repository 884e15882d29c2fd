package models

import "time"

// HangerSlot 挂架格位表：仓库固定拓扑的物理存放位
type HangerSlot struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	Block     int       `gorm:"not null;uniqueIndex:idx_slot_pos" json:"block"`          // 区块
	Row       int       `gorm:"not null;uniqueIndex:idx_slot_pos" json:"row"`            // 行
	Column    int       `gorm:"column:col;not null;uniqueIndex:idx_slot_pos" json:"col"` // 列
	Status    string    `gorm:"index;not null" json:"status"`                            // 占用状态
	Label     string    `gorm:"type:varchar(200)" json:"label,omitempty"`                // 占用内容标签
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (HangerSlot) TableName() string {
	return "hanger_slots"
}

// SlotAuditLog 格位状态变更审计日志
type SlotAuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                          // 主键
	SlotID     uint      `gorm:"index;not null" json:"slot_id"`                 // 格位ID
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`                // 操作人
	FromStatus string    `gorm:"type:varchar(20);not null" json:"from_status"`  // 变更前状态
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`    // 变更后状态
	Label      string    `gorm:"type:varchar(200)" json:"label,omitempty"`      // 变更后标签
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                       // 变更时间
}

// TableName 指定表名
func (SlotAuditLog) TableName() string {
	return "slot_audit_logs"
}
