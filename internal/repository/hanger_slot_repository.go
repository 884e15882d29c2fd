package repository

import (
	"errors"

	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// HangerSlotRepository 挂架格位数据访问接口
type HangerSlotRepository interface {
	Count() (int64, error)
	CreateBatch(slots []models.HangerSlot) error
	GetByID(id uint) (*models.HangerSlot, error)
	ListAll() ([]models.HangerSlot, error)
	UpdateStatus(id uint, status, label string) error
	AppendAudit(entry *models.SlotAuditLog) error
	ListAudit(slotID uint, page, pageSize int) ([]models.SlotAuditLog, int64, error)
}

// GormHangerSlotRepository GORM 实现
type GormHangerSlotRepository struct {
	db *gorm.DB
}

// NewHangerSlotRepository 创建挂架格位仓库
func NewHangerSlotRepository(db *gorm.DB) *GormHangerSlotRepository {
	return &GormHangerSlotRepository{db: db}
}

// Count 统计格位数
func (r *GormHangerSlotRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.HangerSlot{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch 批量创建格位（仅初始播种使用）
func (r *GormHangerSlotRepository) CreateBatch(slots []models.HangerSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.Create(&slots).Error
}

// GetByID 根据 ID 获取格位
func (r *GormHangerSlotRepository) GetByID(id uint) (*models.HangerSlot, error) {
	var slot models.HangerSlot
	if err := r.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// ListAll 读取全部格位，按区块/行/列排序供网格渲染
func (r *GormHangerSlotRepository) ListAll() ([]models.HangerSlot, error) {
	var slots []models.HangerSlot
	if err := r.db.Order("block asc, row asc, col asc").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// UpdateStatus 无条件覆盖格位状态与标签
func (r *GormHangerSlotRepository) UpdateStatus(id uint, status, label string) error {
	return r.db.Model(&models.HangerSlot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": status,
			"label":  label,
		}).Error
}

// AppendAudit 追加格位变更审计
func (r *GormHangerSlotRepository) AppendAudit(entry *models.SlotAuditLog) error {
	if entry == nil {
		return nil
	}
	return r.db.Create(entry).Error
}

// ListAudit 查询格位审计日志
func (r *GormHangerSlotRepository) ListAudit(slotID uint, page, pageSize int) ([]models.SlotAuditLog, int64, error) {
	query := r.db.Model(&models.SlotAuditLog{})
	if slotID != 0 {
		query = query.Where("slot_id = ?", slotID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	logs := make([]models.SlotAuditLog, 0)
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
