package repository

import (
	"errors"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// CustodyRecordRepository 保管台账数据访问接口
type CustodyRecordRepository interface {
	Create(record *models.CustodyRecord) error
	GetByID(id uint) (*models.CustodyRecord, error)
	GetOpenByBarrelID(barrelID uint) (*models.CustodyRecord, error)
	List(filter CustodyListFilter) ([]models.CustodyRecord, int64, error)
	ListOverdueCandidates(asOf time.Time, limit int, afterID uint) ([]models.CustodyRecord, error)
	UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error)
}

// GormCustodyRecordRepository GORM 实现
type GormCustodyRecordRepository struct {
	db *gorm.DB
}

// NewCustodyRecordRepository 创建保管台账仓库
func NewCustodyRecordRepository(db *gorm.DB) *GormCustodyRecordRepository {
	return &GormCustodyRecordRepository{db: db}
}

// Create 创建台账记录
func (r *GormCustodyRecordRepository) Create(record *models.CustodyRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据 ID 获取台账记录
func (r *GormCustodyRecordRepository) GetByID(id uint) (*models.CustodyRecord, error) {
	var record models.CustodyRecord
	if err := r.db.Preload("Barrel").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetOpenByBarrelID 获取料桶当前未关闭的台账记录
func (r *GormCustodyRecordRepository) GetOpenByBarrelID(barrelID uint) (*models.CustodyRecord, error) {
	var record models.CustodyRecord
	if err := r.db.
		Where("barrel_id = ? AND returned_at IS NULL", barrelID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// List 查询台账记录列表
func (r *GormCustodyRecordRepository) List(filter CustodyListFilter) ([]models.CustodyRecord, int64, error) {
	query := r.db.Model(&models.CustodyRecord{})
	if filter.BarrelID != 0 {
		query = query.Where("barrel_id = ?", filter.BarrelID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.HolderName != "" {
		query = query.Where("holder_name LIKE ?", "%"+filter.HolderName+"%")
	}
	if filter.OnlyOpen {
		query = query.Where("returned_at IS NULL")
	}
	if filter.DueBefore != nil {
		query = query.Where("expected_return_at < ?", *filter.DueBefore)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.CustodyRecord
	if err := query.Preload("Barrel").Order("id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListOverdueCandidates 按主键游标分批读取逾期候选记录（issued 且已过约定归还时间）。
// 游标式读取保证扫描可中断重启，不依赖偏移量。
func (r *GormCustodyRecordRepository) ListOverdueCandidates(asOf time.Time, limit int, afterID uint) ([]models.CustodyRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []models.CustodyRecord
	if err := r.db.
		Where("status = ? AND returned_at IS NULL AND expected_return_at < ? AND id > ?",
			constants.CustodyStatusIssued, asOf, afterID).
		Order("id asc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatusCAS 按期望前置状态条件更新记录状态。
func (r *GormCustodyRecordRepository) UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = newStatus
	result := r.db.Model(&models.CustodyRecord{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
