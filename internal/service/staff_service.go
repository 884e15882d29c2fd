package service

import (
	"strings"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// StaffService 员工账号服务
type StaffService struct {
	repo repository.StaffRepository
}

// StaffCreateInput 员工创建输入
type StaffCreateInput struct {
	Username    string
	Password    string
	DisplayName string
	Contact     string
	Role        string
}

// NewStaffService 创建员工服务
func NewStaffService(repo repository.StaffRepository) *StaffService {
	return &StaffService{repo: repo}
}

// Create 创建员工账号
func (s *StaffService) Create(input StaffCreateInput) (*models.Staff, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidCredentials
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	switch role {
	case constants.RoleAdmin, constants.RoleManager, constants.RoleDelivery, constants.RoleLab:
	default:
		return nil, ErrUnauthorized
	}
	existing, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	staff := &models.Staff{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Contact:      strings.TrimSpace(input.Contact),
		Role:         role,
		Status:       constants.StaffStatusActive,
	}
	if err := s.repo.Create(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// Get 获取员工
func (s *StaffService) Get(id uint) (*models.Staff, error) {
	staff, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

// ListByRole 按角色列出员工
func (s *StaffService) ListByRole(role string) ([]models.Staff, error) {
	return s.repo.ListByRole(strings.ToLower(strings.TrimSpace(role)))
}
