package models

import "time"

// Notification 通知事件表：状态变更后的即发即忘信号，供外部分发器消费
type Notification struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Event       string    `gorm:"type:varchar(100);index;not null" json:"event"`
	BizType     string    `gorm:"type:varchar(50);index;not null" json:"biz_type"`
	EntityID    uint      `gorm:"index;not null" json:"entity_id"`
	PayloadJSON JSON      `gorm:"type:json" json:"payload"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
