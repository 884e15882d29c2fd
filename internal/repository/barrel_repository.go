package repository

import (
	"errors"
	"strings"

	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// BarrelRepository 料桶数据访问接口
type BarrelRepository interface {
	Create(barrel *models.Barrel) error
	GetByID(id uint) (*models.Barrel, error)
	GetByCode(code string) (*models.Barrel, error)
	List(filter BarrelListFilter) ([]models.Barrel, int64, error)
	ListByCodes(codes []string) ([]models.Barrel, error)
	UpdateCustodyStateCAS(id uint, expectedState, newState string, updates map[string]interface{}) (bool, error)
}

// GormBarrelRepository GORM 实现
type GormBarrelRepository struct {
	db *gorm.DB
}

// NewBarrelRepository 创建料桶仓库
func NewBarrelRepository(db *gorm.DB) *GormBarrelRepository {
	return &GormBarrelRepository{db: db}
}

// Create 登记料桶
func (r *GormBarrelRepository) Create(barrel *models.Barrel) error {
	return r.db.Create(barrel).Error
}

// GetByID 根据 ID 获取料桶
func (r *GormBarrelRepository) GetByID(id uint) (*models.Barrel, error) {
	var barrel models.Barrel
	if err := r.db.Preload("Slot").First(&barrel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &barrel, nil
}

// GetByCode 根据桶号获取料桶
func (r *GormBarrelRepository) GetByCode(code string) (*models.Barrel, error) {
	var barrel models.Barrel
	if err := r.db.Preload("Slot").Where("code = ?", strings.TrimSpace(code)).First(&barrel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &barrel, nil
}

// List 查询料桶列表
func (r *GormBarrelRepository) List(filter BarrelListFilter) ([]models.Barrel, int64, error) {
	query := r.db.Model(&models.Barrel{})
	if filter.Code != "" {
		query = query.Where("code LIKE ?", "%"+filter.Code+"%")
	}
	if filter.CustodyState != "" {
		query = query.Where("custody_state = ?", filter.CustodyState)
	}
	if !filter.WithRetired {
		query = query.Where("retired = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var barrels []models.Barrel
	if err := query.Preload("Slot").Order("code asc").Find(&barrels).Error; err != nil {
		return nil, 0, err
	}
	return barrels, total, nil
}

// ListByCodes 按桶号批量查询
func (r *GormBarrelRepository) ListByCodes(codes []string) ([]models.Barrel, error) {
	barrels := make([]models.Barrel, 0, len(codes))
	if len(codes) == 0 {
		return barrels, nil
	}
	if err := r.db.Where("code IN ?", codes).Find(&barrels).Error; err != nil {
		return nil, err
	}
	return barrels, nil
}

// UpdateCustodyStateCAS 按期望前置状态条件更新保管状态。
// 返回 false 表示存量状态与期望不符（或记录不存在），由调用方重读后判定冲突。
func (r *GormBarrelRepository) UpdateCustodyStateCAS(id uint, expectedState, newState string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["custody_state"] = newState
	result := r.db.Model(&models.Barrel{}).
		Where("id = ? AND custody_state = ?", id, expectedState).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
