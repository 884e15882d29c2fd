package repository

import "time"

// BarrelListFilter 查询料桶列表的过滤条件
type BarrelListFilter struct {
	Page         int
	PageSize     int
	Code         string
	CustodyState string
	WithRetired  bool
}

// CustodyListFilter 查询保管台账的过滤条件
type CustodyListFilter struct {
	Page        int
	PageSize    int
	BarrelID    uint
	Status      string
	HolderName  string
	OnlyOpen    bool
	DueBefore   *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SellRequestListFilter 查询出售申请列表的过滤条件
type SellRequestListFilter struct {
	Page            int
	PageSize        int
	Status          string
	RequestType     string
	RequestNo       string
	AssignedStaffID uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// DeliveryTaskListFilter 查询配送任务列表的过滤条件
type DeliveryTaskListFilter struct {
	Page            int
	PageSize        int
	Status          string
	TaskNo          string
	AssigneeStaffID uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	ActorID     uint
	Action      string
	EntityType  string
	EntityID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NotificationListFilter 查询通知事件列表的过滤条件
type NotificationListFilter struct {
	Page     int
	PageSize int
	Event    string
	BizType  string
	EntityID uint
}
