package repository

import (
	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知事件数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	List(filter NotificationListFilter) ([]models.Notification, int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知事件仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create 追加通知事件
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	if notification == nil {
		return nil
	}
	return r.db.Create(notification).Error
}

// List 查询通知事件列表
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{})
	if filter.Event != "" {
		query = query.Where("event = ?", filter.Event)
	}
	if filter.BizType != "" {
		query = query.Where("biz_type = ?", filter.BizType)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	items := make([]models.Notification, 0)
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
