package constants

// 料桶保管状态常量
const (
	BarrelStateInWarehouse = "in_warehouse"
	BarrelStateIssued      = "issued_to_customer"
	BarrelStateInTransit   = "in_transit"
	BarrelStateLost        = "lost"
)

// 料桶归还桶况常量
const (
	BarrelConditionGood    = "good"
	BarrelConditionFair    = "fair"
	BarrelConditionDamaged = "damaged"
	BarrelConditionLost    = "lost"
)

// 保管台账记录状态常量
const (
	CustodyStatusIssued   = "issued"
	CustodyStatusOverdue  = "overdue"
	CustodyStatusReturned = "returned"
	CustodyStatusLost     = "lost"
)

// 挂架格位状态常量
const (
	SlotStatusVacant       = "vacant"
	SlotStatusOccupied     = "occupied"
	SlotStatusEmptyBarrel  = "empty_barrel"
	SlotStatusCompleteBill = "complete_bill"
)

// 挂架网格固定拓扑（2 区块 × 9 行 × 10 列 = 180 格）
const (
	GridBlocks  = 2
	GridRows    = 9
	GridColumns = 10
	GridSize    = GridBlocks * GridRows * GridColumns
)

// 出售申请状态常量
const (
	SellRequestStatusPending           = "pending"
	SellRequestStatusApproved          = "approved"
	SellRequestStatusAssigned          = "assigned"
	SellRequestStatusCollected         = "collected"
	SellRequestStatusDeliveredToLab    = "delivered_to_lab"
	SellRequestStatusTested            = "tested"
	SellRequestStatusAccountCalculated = "account_calculated"
	SellRequestStatusVerified          = "verified"
	SellRequestStatusInvoiced          = "invoiced"
	SellRequestStatusRejected          = "rejected"
)

// 出售申请类型常量
const (
	RequestTypeRawSell     = "raw_sell"
	RequestTypeEmptyReturn = "empty_return"
	RequestTypeLatexIntake = "latex_intake"
)

// 配送任务状态常量
const (
	TaskStatusPickupScheduled = "pickup_scheduled"
	TaskStatusEnroutePickup   = "enroute_pickup"
	TaskStatusPickedUp        = "picked_up"
	TaskStatusEnrouteDrop     = "enroute_drop"
	TaskStatusDelivered       = "delivered"
	TaskStatusCancelled       = "cancelled"
)

// 员工角色常量
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleDelivery = "delivery"
	RoleLab      = "lab"
)

// 员工账号状态常量
const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

// 审计动作常量
const (
	AuditActionBarrelRegister      = "barrel:register"
	AuditActionBarrelRetire        = "barrel:retire"
	AuditActionCustodyIssue        = "custody:issue"
	AuditActionCustodyReturn       = "custody:return"
	AuditActionCustodySweep        = "custody:sweep"
	AuditActionSlotSetStatus       = "slot:set_status"
	AuditActionRequestCreate       = "sell_request:create"
	AuditActionRequestApprove      = "sell_request:approve"
	AuditActionRequestReject       = "sell_request:reject"
	AuditActionRequestAssign       = "sell_request:assign"
	AuditActionRequestAdvance      = "sell_request:advance"
	AuditActionTaskCreate          = "delivery_task:create"
	AuditActionTaskAdvance         = "delivery_task:advance"
	AuditActionTaskCancel          = "delivery_task:cancel"
	AuditActionTaskRecordBarrels   = "delivery_task:record_barrels"
	AuditActionSettingUpdate       = "setting:update"
	AuditActionRequestReconcileGap = "sell_request:reconcile_gap"
)

// 审计实体类型常量
const (
	AuditEntityBarrel      = "barrel"
	AuditEntityCustody     = "custody_record"
	AuditEntitySlot        = "hanger_slot"
	AuditEntitySellRequest = "sell_request"
	AuditEntityTask        = "delivery_task"
	AuditEntitySetting     = "setting"
)

// 通知事件常量
const (
	NotificationEventTaskDelivered        = "task_delivered"
	NotificationEventTaskStatusChanged    = "task_status_changed"
	NotificationEventRequestStatusChanged = "request_status_changed"
	NotificationEventCustodyOverdue       = "custody_overdue"
)

// 通知业务类型常量
const (
	NotificationBizTypeTask        = "delivery_task"
	NotificationBizTypeSellRequest = "sell_request"
	NotificationBizTypeCustody     = "custody_record"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskCustodyOverdueSweep  = "custody:overdue_sweep"
	TaskNotificationDispatch = "notify:dispatch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "hv"
)

// 设置键常量
const (
	SettingKeyCustodyPolicy       = "custody_policy"
	SettingFieldPenaltyRatePerDay = "penalty_rate_per_day"
	SettingFieldDefaultLoanDays   = "default_loan_days"
	SettingFieldCurrency          = "currency"
)

// 币种常量
const (
	SiteCurrencyDefault = "LKR"
)
