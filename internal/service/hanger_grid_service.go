package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"
)

// HangerGridService 挂架网格服务：固定拓扑格位的占用管理
type HangerGridService struct {
	repo repository.HangerSlotRepository
}

// SlotSetStatusInput 格位状态设置输入
type SlotSetStatusInput struct {
	SlotID  uint
	Status  string
	Label   string
	ActorID uint
}

// BulkSetStatusInput 批量状态设置输入
type BulkSetStatusInput struct {
	SlotIDs []uint
	Status  string
	Label   string
	ActorID uint
}

// BulkSetStatusFailure 批量操作中单个格位的失败明细
type BulkSetStatusFailure struct {
	SlotID uint   `json:"slot_id"`
	Reason string `json:"reason"`
}

// BulkSetStatusResult 批量操作结构化结果：成功数 + 逐项失败原因
type BulkSetStatusResult struct {
	Updated  int                    `json:"updated"`
	Failures []BulkSetStatusFailure `json:"failures,omitempty"`
}

// NewHangerGridService 创建挂架网格服务
func NewHangerGridService(repo repository.HangerSlotRepository) *HangerGridService {
	return &HangerGridService{repo: repo}
}

// Seed 初始化固定网格：已有格位时为空操作，否则一次性创建 180 个空格位
func (s *HangerGridService) Seed() (int, error) {
	count, err := s.repo.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	slots := make([]models.HangerSlot, 0, constants.GridSize)
	for block := 1; block <= constants.GridBlocks; block++ {
		for row := 1; row <= constants.GridRows; row++ {
			for col := 1; col <= constants.GridColumns; col++ {
				slots = append(slots, models.HangerSlot{
					Block:  block,
					Row:    row,
					Column: col,
					Status: constants.SlotStatusVacant,
				})
			}
		}
	}
	if err := s.repo.CreateBatch(slots); err != nil {
		return 0, err
	}
	return len(slots), nil
}

// SetStatus 无条件覆盖格位状态，并同步追加一条格位审计记录
func (s *HangerGridService) SetStatus(input SlotSetStatusInput) (*models.HangerSlot, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case constants.SlotStatusVacant, constants.SlotStatusOccupied, constants.SlotStatusEmptyBarrel, constants.SlotStatusCompleteBill:
	default:
		return nil, ErrSlotStatusInvalid
	}
	slot, err := s.repo.GetByID(input.SlotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	label := strings.TrimSpace(input.Label)
	if status == constants.SlotStatusVacant {
		label = ""
	}
	if err := s.repo.UpdateStatus(slot.ID, status, label); err != nil {
		return nil, err
	}
	audit := &models.SlotAuditLog{
		SlotID:     slot.ID,
		ActorID:    input.ActorID,
		FromStatus: slot.Status,
		ToStatus:   status,
		Label:      label,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.AppendAudit(audit); err != nil {
		return nil, err
	}
	return s.repo.GetByID(slot.ID)
}

// BulkSetStatus 批量覆盖格位状态：逐个执行，单个失败不中断整批
func (s *HangerGridService) BulkSetStatus(input BulkSetStatusInput) (BulkSetStatusResult, error) {
	result := BulkSetStatusResult{}
	for _, slotID := range input.SlotIDs {
		_, err := s.SetStatus(SlotSetStatusInput{
			SlotID:  slotID,
			Status:  input.Status,
			Label:   input.Label,
			ActorID: input.ActorID,
		})
		if err != nil {
			result.Failures = append(result.Failures, BulkSetStatusFailure{
				SlotID: slotID,
				Reason: err.Error(),
			})
			continue
		}
		result.Updated++
	}
	return result, nil
}

// ListAll 按区块/行/列顺序返回整个网格
func (s *HangerGridService) ListAll() ([]models.HangerSlot, error) {
	slots, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrGridNotSeeded
	}
	return slots, nil
}

// Get 获取单个格位
func (s *HangerGridService) Get(id uint) (*models.HangerSlot, error) {
	slot, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// ListAudit 查询格位状态变更审计
func (s *HangerGridService) ListAudit(slotID uint, page, pageSize int) ([]models.SlotAuditLog, int64, error) {
	if slotID == 0 {
		return nil, 0, fmt.Errorf("slot id required")
	}
	return s.repo.ListAudit(slotID, page, pageSize)
}
