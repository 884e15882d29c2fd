package service

import (
	"time"

	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/queue"
	"github.com/hevea-next/internal/repository"
)

// NotificationService 通知事件服务：状态变更提交后的即发即忘信号
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NotificationEmitInput 通知事件输入
type NotificationEmitInput struct {
	Event    string
	BizType  string
	EntityID uint
	Payload  models.JSON
}

// NotificationListInput 通知事件查询输入
type NotificationListInput struct {
	Page     int
	PageSize int
	Event    string
	BizType  string
	EntityID uint
}

// NewNotificationService 创建通知事件服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Emit 发出通知事件；任何失败只记日志，绝不回滚已提交的状态变更
func (s *NotificationService) Emit(input NotificationEmitInput) {
	if s == nil {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
			Event:    input.Event,
			BizType:  input.BizType,
			EntityID: input.EntityID,
			Payload:  input.Payload,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed",
			"event", input.Event,
			"biz_type", input.BizType,
			"entity_id", input.EntityID,
			"error", err,
		)
	}
	s.Persist(input)
}

// Persist 直接落库一条通知事件（队列关闭或入队失败时的同步兜底，也被分发 worker 调用）
func (s *NotificationService) Persist(input NotificationEmitInput) {
	if s == nil || s.repo == nil {
		return
	}
	notification := &models.Notification{
		Event:       input.Event,
		BizType:     input.BizType,
		EntityID:    input.EntityID,
		PayloadJSON: input.Payload,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(notification); err != nil {
		logger.Warnw("notification_persist_failed",
			"event", input.Event,
			"biz_type", input.BizType,
			"entity_id", input.EntityID,
			"error", err,
		)
	}
}

// List 查询通知事件
func (s *NotificationService) List(input NotificationListInput) ([]models.Notification, int64, error) {
	filter := repository.NotificationListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Event:    input.Event,
		BizType:  input.BizType,
		EntityID: input.EntityID,
	}
	return s.repo.List(filter)
}
