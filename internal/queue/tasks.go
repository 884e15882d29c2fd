package queue

import (
	"encoding/json"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskCustodyOverdueSweep 保管台账逾期扫描任务
	TaskCustodyOverdueSweep = constants.TaskCustodyOverdueSweep
	// TaskNotificationDispatch 通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// CustodyOverdueSweepPayload 逾期扫描任务载荷
type CustodyOverdueSweepPayload struct {
	RequestedBy uint `json:"requested_by,omitempty"` // 0 表示周期触发
}

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	Event    string      `json:"event"`
	BizType  string      `json:"biz_type"`
	EntityID uint        `json:"entity_id"`
	Payload  models.JSON `json:"payload,omitempty"`
}

// NewCustodyOverdueSweepTask 创建逾期扫描任务
func NewCustodyOverdueSweepTask(payload CustodyOverdueSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCustodyOverdueSweep, body), nil
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}
