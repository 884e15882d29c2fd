package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// TaskMetaVersion 当前任务元数据结构版本
const TaskMetaVersion = 1

// TaskMeta 配送任务元数据：显式字段 + 版本号，替代松散的 string-key map
type TaskMeta struct {
	Version       int         `json:"version"`
	BarrelCodes   StringArray `json:"barrel_codes,omitempty"`    // 本趟实际经手的桶号
	SellRequestID *uint       `json:"sell_request_id,omitempty"` // 关联出售申请
}

// Value 实现 driver.Valuer 接口
func (m TaskMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner 接口
func (m *TaskMeta) Scan(value interface{}) error {
	if value == nil {
		*m = TaskMeta{Version: TaskMetaVersion}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, m)
}

// DeliveryTask 配送任务表：一名员工一次取送的完整物流行程
type DeliveryTask struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                 // 主键
	TaskNo          string     `gorm:"uniqueIndex;not null" json:"task_no"`                  // 任务编号
	AssigneeStaffID uint       `gorm:"index;not null" json:"assignee_staff_id"`              // 执行员工
	CustomerName    string     `gorm:"type:varchar(200);not null" json:"customer_name"`      // 客户姓名快照
	CustomerContact string     `gorm:"type:varchar(200)" json:"customer_contact,omitempty"`  // 客户联系方式快照
	PickupAddress   string     `gorm:"type:varchar(500);not null" json:"pickup_address"`     // 取货地址
	DropAddress     string     `gorm:"type:varchar(500)" json:"drop_address,omitempty"`      // 送达地址
	GPSLat          *float64   `json:"gps_lat,omitempty"`                                    // 取货点纬度
	GPSLng          *float64   `json:"gps_lng,omitempty"`                                    // 取货点经度
	Status          string     `gorm:"index;not null" json:"status"`                         // 任务状态
	Meta            TaskMeta   `gorm:"type:json" json:"meta"`                                // 任务元数据
	CancelledAt     *time.Time `gorm:"index" json:"cancelled_at,omitempty"`                  // 取消时间
	DeliveredAt     *time.Time `gorm:"index" json:"delivered_at,omitempty"`                  // 送达时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (DeliveryTask) TableName() string {
	return "delivery_tasks"
}
