package repository

import (
	"errors"
	"strings"

	"github.com/hevea-next/internal/models"

	"gorm.io/gorm"
)

// StaffRepository 员工数据访问接口
type StaffRepository interface {
	Create(staff *models.Staff) error
	GetByID(id uint) (*models.Staff, error)
	GetByUsername(username string) (*models.Staff, error)
	ListByRole(role string) ([]models.Staff, error)
}

// GormStaffRepository GORM 实现
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓库
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// Create 创建员工
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}

// GetByID 根据 ID 获取员工
func (r *GormStaffRepository) GetByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByUsername 根据登录名获取员工
func (r *GormStaffRepository) GetByUsername(username string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.Where("username = ?", strings.TrimSpace(username)).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// ListByRole 按角色查询员工
func (r *GormStaffRepository) ListByRole(role string) ([]models.Staff, error) {
	var staffs []models.Staff
	if err := r.db.Where("role = ?", role).Order("id asc").Find(&staffs).Error; err != nil {
		return nil, err
	}
	return staffs, nil
}
