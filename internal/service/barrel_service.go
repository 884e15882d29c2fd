package service

import (
	"strings"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"
)

// BarrelService 料桶登记服务
type BarrelService struct {
	repo repository.BarrelRepository
}

// BarrelRegisterInput 料桶登记输入
type BarrelRegisterInput struct {
	Code   string
	SlotID *uint
}

// BarrelListInput 料桶列表查询输入
type BarrelListInput struct {
	Page         int
	PageSize     int
	Code         string
	CustodyState string
	WithRetired  bool
}

// NewBarrelService 创建料桶服务
func NewBarrelService(repo repository.BarrelRepository) *BarrelService {
	return &BarrelService{repo: repo}
}

// Register 登记新料桶，初始在库
func (s *BarrelService) Register(input BarrelRegisterInput) (*models.Barrel, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if !models.IsValidBarrelCode(code) {
		return nil, ErrBarrelCodeInvalid
	}
	existing, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBarrelCodeExists
	}
	barrel := &models.Barrel{
		Code:         code,
		CustodyState: constants.BarrelStateInWarehouse,
		SlotID:       input.SlotID,
	}
	if err := s.repo.Create(barrel); err != nil {
		return nil, err
	}
	return barrel, nil
}

// Get 获取料桶详情
func (s *BarrelService) Get(id uint) (*models.Barrel, error) {
	barrel, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		return nil, ErrBarrelNotFound
	}
	return barrel, nil
}

// GetByCode 根据桶号获取料桶
func (s *BarrelService) GetByCode(code string) (*models.Barrel, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !models.IsValidBarrelCode(normalized) {
		return nil, ErrBarrelCodeInvalid
	}
	barrel, err := s.repo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		return nil, ErrBarrelNotFound
	}
	return barrel, nil
}

// List 查询料桶列表
func (s *BarrelService) List(input BarrelListInput) ([]models.Barrel, int64, error) {
	filter := repository.BarrelListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		Code:         strings.ToUpper(strings.TrimSpace(input.Code)),
		CustodyState: input.CustodyState,
		WithRetired:  input.WithRetired,
	}
	return s.repo.List(filter)
}

// Retire 软退役料桶（丢失且不可追回后调用）
func (s *BarrelService) Retire(id uint) (*models.Barrel, error) {
	barrel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if barrel.Retired {
		return barrel, nil
	}
	if barrel.CustodyState != constants.BarrelStateLost {
		return nil, ErrIllegalTransition
	}
	ok, err := s.repo.UpdateCustodyStateCAS(barrel.ID, barrel.CustodyState, barrel.CustodyState, map[string]interface{}{
		"retired": true,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.Get(id)
}
