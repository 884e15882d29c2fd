package repository

import (
	"errors"

	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// DeliveryTaskRepository 配送任务数据访问接口
type DeliveryTaskRepository interface {
	Create(task *models.DeliveryTask) error
	GetByID(id uint) (*models.DeliveryTask, error)
	GetByTaskNo(taskNo string) (*models.DeliveryTask, error)
	List(filter DeliveryTaskListFilter) ([]models.DeliveryTask, int64, error)
	UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error)
	UpdateMeta(id uint, meta models.TaskMeta) error
}

// GormDeliveryTaskRepository GORM 实现
type GormDeliveryTaskRepository struct {
	db *gorm.DB
}

// NewDeliveryTaskRepository 创建配送任务仓库
func NewDeliveryTaskRepository(db *gorm.DB) *GormDeliveryTaskRepository {
	return &GormDeliveryTaskRepository{db: db}
}

// Create 创建配送任务
func (r *GormDeliveryTaskRepository) Create(task *models.DeliveryTask) error {
	return r.db.Create(task).Error
}

// GetByID 根据 ID 获取配送任务
func (r *GormDeliveryTaskRepository) GetByID(id uint) (*models.DeliveryTask, error) {
	var task models.DeliveryTask
	if err := r.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// GetByTaskNo 根据任务编号获取配送任务
func (r *GormDeliveryTaskRepository) GetByTaskNo(taskNo string) (*models.DeliveryTask, error) {
	var task models.DeliveryTask
	if err := r.db.Where("task_no = ?", taskNo).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// List 查询配送任务列表
func (r *GormDeliveryTaskRepository) List(filter DeliveryTaskListFilter) ([]models.DeliveryTask, int64, error) {
	query := r.db.Model(&models.DeliveryTask{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TaskNo != "" {
		query = query.Where("task_no = ?", filter.TaskNo)
	}
	if filter.AssigneeStaffID != 0 {
		query = query.Where("assignee_staff_id = ?", filter.AssigneeStaffID)
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

	var tasks []models.DeliveryTask
	if err := query.Order("id desc").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// UpdateStatusCAS 按期望前置状态条件更新任务状态。
// 两名员工从各自的旧视图同时推进同一任务时，只有一人能命中期望状态。
func (r *GormDeliveryTaskRepository) UpdateStatusCAS(id uint, expectedStatus, newStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = newStatus
	result := r.db.Model(&models.DeliveryTask{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateMeta 覆盖任务元数据（不改状态）
func (r *GormDeliveryTaskRepository) UpdateMeta(id uint, meta models.TaskMeta) error {
	return r.db.Model(&models.DeliveryTask{}).
		Where("id = ?", id).
		Update("meta", meta).Error
}
