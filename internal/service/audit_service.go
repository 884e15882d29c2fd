package service

import (
	"time"

	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"
)

// AuditService 命令审计服务
type AuditService struct {
	repo repository.AuditLogRepository
}

// AuditEntryInput 审计记录输入
type AuditEntryInput struct {
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	FromStatus string
	ToStatus   string
	Detail     models.JSON
	RequestID  string
}

// AuditListInput 审计日志查询输入
type AuditListInput struct {
	Page        int
	PageSize    int
	ActorID     uint
	Action      string
	EntityType  string
	EntityID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 追加一条命令审计记录；失败只记日志，绝不阻断已提交的业务变更
func (s *AuditService) Record(input AuditEntryInput) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.AuditLog{
		ActorID:    input.ActorID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		FromStatus: input.FromStatus,
		ToStatus:   input.ToStatus,
		DetailJSON: input.Detail,
		RequestID:  input.RequestID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(entry); err != nil {
		logger.Warnw("audit_record_failed",
			"action", input.Action,
			"entity_type", input.EntityType,
			"entity_id", input.EntityID,
			"error", err,
		)
	}
}

// List 查询审计日志
func (s *AuditService) List(input AuditListInput) ([]models.AuditLog, int64, error) {
	filter := repository.AuditLogListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		ActorID:     input.ActorID,
		Action:      input.Action,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	}
	return s.repo.List(filter)
}
