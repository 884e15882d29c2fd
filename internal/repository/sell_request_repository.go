package repository

import (
	"errors"

	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// SellRequestRepository 出售申请数据访问接口
type SellRequestRepository interface {
	Create(request *models.SellRequest) error
	GetByID(id uint) (*models.SellRequest, error)
	GetByRequestNo(requestNo string) (*models.SellRequest, error)
	List(filter SellRequestListFilter) ([]models.SellRequest, int64, error)
	UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error)
}

// GormSellRequestRepository GORM 实现
type GormSellRequestRepository struct {
	db *gorm.DB
}

// NewSellRequestRepository 创建出售申请仓库
func NewSellRequestRepository(db *gorm.DB) *GormSellRequestRepository {
	return &GormSellRequestRepository{db: db}
}

// Create 创建出售申请
func (r *GormSellRequestRepository) Create(request *models.SellRequest) error {
	return r.db.Create(request).Error
}

// GetByID 根据 ID 获取出售申请
func (r *GormSellRequestRepository) GetByID(id uint) (*models.SellRequest, error) {
	var request models.SellRequest
	if err := r.db.Preload("DeliveryTask").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByRequestNo 根据申请编号获取出售申请
func (r *GormSellRequestRepository) GetByRequestNo(requestNo string) (*models.SellRequest, error) {
	var request models.SellRequest
	if err := r.db.Preload("DeliveryTask").Where("request_no = ?", requestNo).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List 查询出售申请列表
func (r *GormSellRequestRepository) List(filter SellRequestListFilter) ([]models.SellRequest, int64, error) {
	query := r.db.Model(&models.SellRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestType != "" {
		query = query.Where("request_type = ?", filter.RequestType)
	}
	if filter.RequestNo != "" {
		query = query.Where("request_no = ?", filter.RequestNo)
	}
	if filter.AssignedStaffID != 0 {
		query = query.Where("assigned_staff_id = ?", filter.AssignedStaffID)
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

	var requests []models.SellRequest
	if err := query.Preload("DeliveryTask").Order("id desc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateStatusCAS 按期望前置状态条件更新申请状态。
func (r *GormSellRequestRepository) UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = newStatus
	result := r.db.Model(&models.SellRequest{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
