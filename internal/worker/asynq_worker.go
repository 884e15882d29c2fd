package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/provider"
	"github.com/hevea-next/internal/queue"
	"github.com/hevea-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCustodyOverdueSweep, c.handleCustodyOverdueSweep)
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
}

// handleCustodyOverdueSweep 执行逾期扫描；瞬时失败交给下一轮周期重试
func (c *Consumer) handleCustodyOverdueSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_custody_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CustodyOverdueSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_custody_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.CustodyService == nil {
		logger.Warnw("worker_custody_sweep_skip_service_nil")
		return nil
	}
	result, err := c.CustodyService.SweepOverdue(time.Now())
	if err != nil {
		logger.Warnw("worker_custody_sweep_failed", "error", err)
		return err
	}
	logger.Infow("worker_custody_sweep_done",
		"requested_by", payload.RequestedBy,
		"scanned", result.Scanned,
		"reclassified", result.Reclassified,
		"failed", result.Failed,
	)
	return nil
}

// handleNotificationDispatch 把通知事件落库，供外部分发器轮询消费
func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notify_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.Event == "" || payload.EntityID == 0 {
		logger.Debugw("worker_notify_dispatch_skip_invalid_payload", "event", payload.Event, "entity_id", payload.EntityID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notify_dispatch_skip_service_nil", "event", payload.Event)
		return nil
	}
	c.NotificationService.Persist(service.NotificationEmitInput{
		Event:    payload.Event,
		BizType:  payload.BizType,
		EntityID: payload.EntityID,
		Payload:  payload.Payload,
	})
	return nil
}
