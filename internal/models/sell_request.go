package models

import (
	"time"

	"gorm.io/gorm"
)

// SellRequest 出售申请表：客户发起的售胶/还桶/乳胶入库流程
type SellRequest struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                        // 主键
	RequestNo        string         `gorm:"uniqueIndex;not null" json:"request_no"`                      // 申请编号
	RequestType      string         `gorm:"index;not null" json:"request_type"`                          // 申请类型
	CustomerName     string         `gorm:"type:varchar(200);not null" json:"customer_name"`             // 客户姓名
	CustomerContact  string         `gorm:"type:varchar(200)" json:"customer_contact,omitempty"`         // 客户联系方式
	BarrelCount      int            `gorm:"not null;default:0" json:"barrel_count"`                      // 申请桶数
	MeasuredQuantity Money          `gorm:"type:decimal(20,2);not null;default:0" json:"measured_quantity"` // 回收计量数量
	Status           string         `gorm:"index;not null" json:"status"`                                // 申请状态
	PickupLocation   string         `gorm:"type:varchar(500)" json:"pickup_location,omitempty"`          // 取货地点（自由文本或坐标）
	AssignedStaffID  *uint          `gorm:"index" json:"assigned_staff_id,omitempty"`                    // 指派的配送员工
	DeliveryTaskID   *uint          `gorm:"index" json:"delivery_task_id,omitempty"`                     // 关联配送任务
	RejectReason     string         `gorm:"type:varchar(500)" json:"reject_reason,omitempty"`            // 驳回原因
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	DeliveryTask *DeliveryTask `gorm:"foreignKey:DeliveryTaskID" json:"delivery_task,omitempty"` // 关联任务
}

// TableName 指定表名
func (SellRequest) TableName() string {
	return "sell_requests"
}
