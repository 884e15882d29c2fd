package service

import (
	"strings"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/shopspring/decimal"
)

const sweepBatchSize = 200

// CustodyService 保管台账服务：料桶借出、归还、逾期与罚金
type CustodyService struct {
	repo       repository.CustodyRecordRepository
	barrelRepo repository.BarrelRepository
	settingSvc *SettingService
}

// CustodyIssueInput 借出输入
type CustodyIssueInput struct {
	BarrelID         uint
	HolderName       string
	HolderContact    string
	ExpectedReturnAt *time.Time // 为空时按策略默认借期推算
	IssuedAt         *time.Time // 为空时取当前时间
	ActorID          uint
}

// CustodyReturnInput 归还输入
type CustodyReturnInput struct {
	RecordID   uint
	Condition  string
	Notes      string
	ReturnedAt *time.Time // 为空时取当前时间
	ActorID    uint
}

// CustodyListInput 台账查询输入
type CustodyListInput struct {
	Page       int
	PageSize   int
	BarrelID   uint
	Status     string
	HolderName string
	OnlyOpen   bool
}

// SweepResult 逾期扫描结果
type SweepResult struct {
	Scanned      int
	Reclassified int
	Failed       int
}

// NewCustodyService 创建保管台账服务
func NewCustodyService(repo repository.CustodyRecordRepository, barrelRepo repository.BarrelRepository, settingSvc *SettingService) *CustodyService {
	return &CustodyService{repo: repo, barrelRepo: barrelRepo, settingSvc: settingSvc}
}

// Issue 借出料桶：一桶同时至多一条未结清记录
func (s *CustodyService) Issue(input CustodyIssueInput) (*models.CustodyRecord, error) {
	holderName := strings.TrimSpace(input.HolderName)
	if holderName == "" {
		return nil, ErrCustodyHolderRequired
	}
	barrel, err := s.barrelRepo.GetByID(input.BarrelID)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		return nil, ErrBarrelNotFound
	}
	if barrel.Retired {
		return nil, ErrBarrelRetired
	}
	open, err := s.repo.GetOpenByBarrelID(barrel.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrBarrelAlreadyIssued
	}
	if barrel.CustodyState != constants.BarrelStateInWarehouse {
		return nil, ErrBarrelAlreadyIssued
	}

	policy, err := s.settingSvc.GetCustodyPolicy()
	if err != nil {
		return nil, err
	}
	issuedAt := time.Now()
	if input.IssuedAt != nil {
		issuedAt = *input.IssuedAt
	}
	expectedReturnAt := issuedAt.AddDate(0, 0, policy.DefaultLoanDays)
	if input.ExpectedReturnAt != nil {
		expectedReturnAt = *input.ExpectedReturnAt
	}

	// 先占住桶：状态 CAS 失败说明另一笔借出刚刚成交
	ok, err := s.barrelRepo.UpdateCustodyStateCAS(barrel.ID, constants.BarrelStateInWarehouse, constants.BarrelStateIssued, map[string]interface{}{
		"slot_id": nil,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBarrelAlreadyIssued
	}

	record := &models.CustodyRecord{
		BarrelID:         barrel.ID,
		HolderName:       holderName,
		HolderContact:    strings.TrimSpace(input.HolderContact),
		IssuedAt:         issuedAt,
		ExpectedReturnAt: expectedReturnAt,
		Status:           constants.CustodyStatusIssued,
		Currency:         policy.Currency,
		IssuedByID:       input.ActorID,
	}
	if err := s.repo.Create(record); err != nil {
		// 建档失败时把桶放回在库，避免占住无主状态
		if _, rollbackErr := s.barrelRepo.UpdateCustodyStateCAS(barrel.ID, constants.BarrelStateIssued, constants.BarrelStateInWarehouse, nil); rollbackErr != nil {
			logger.Errorw("custody_issue_rollback_failed", "barrel_id", barrel.ID, "error", rollbackErr)
		}
		return nil, err
	}
	return record, nil
}

// Return 归还料桶：计算逾期与罚金，时间倒挂时罚金清零并标记人工复核
func (s *CustodyService) Return(input CustodyReturnInput) (*models.CustodyRecord, error) {
	record, err := s.repo.GetByID(input.RecordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCustodyRecordNotFound
	}
	if !record.Open() {
		return nil, ErrCustodyNotOpen
	}
	condition := strings.ToLower(strings.TrimSpace(input.Condition))
	switch condition {
	case constants.BarrelConditionGood, constants.BarrelConditionFair, constants.BarrelConditionDamaged, constants.BarrelConditionLost:
	default:
		return nil, ErrIllegalTransition
	}

	returnedAt := time.Now()
	if input.ReturnedAt != nil {
		returnedAt = *input.ReturnedAt
	}

	daysOverdue := overdueDays(record.ExpectedReturnAt, returnedAt)
	needsReview := false
	if returnedAt.Before(record.IssuedAt) {
		daysOverdue = 0
		needsReview = true
	}

	policy, err := s.settingSvc.GetCustodyPolicy()
	if err != nil {
		return nil, err
	}
	penalty := decimal.Zero
	if daysOverdue > 0 {
		penalty = policy.PenaltyRatePerDay.Mul(decimal.NewFromInt(int64(daysOverdue)))
	}

	newStatus := constants.CustodyStatusReturned
	barrelState := constants.BarrelStateInWarehouse
	if condition == constants.BarrelConditionLost {
		newStatus = constants.CustodyStatusLost
		barrelState = constants.BarrelStateLost
	}

	updates := map[string]interface{}{
		"returned_at":       returnedAt,
		"days_overdue":      daysOverdue,
		"penalty_amount":    models.NewMoneyFromDecimal(penalty),
		"currency":          policy.Currency,
		"return_condition":  condition,
		"return_notes":      strings.TrimSpace(input.Notes),
		"overdue_at_return": daysOverdue > 0,
		"needs_review":      needsReview,
		"returned_by_id":    input.ActorID,
	}
	ok, err := s.repo.UpdateStatusCAS(record.ID, record.Status, newStatus, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 可能被并发归还抢先，也可能被扫描改成了 overdue；重读区分
		fresh, err := s.repo.GetByID(record.ID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			return nil, ErrCustodyRecordNotFound
		}
		if !fresh.Open() {
			return nil, ErrCustodyNotOpen
		}
		return nil, ErrConflict
	}

	// 桶可能处于 issued_to_customer 或 in_transit，从当前实际状态迁移
	barrel, err := s.barrelRepo.GetByID(record.BarrelID)
	if err != nil || barrel == nil {
		logger.Errorw("custody_return_barrel_fetch_failed", "barrel_id", record.BarrelID, "error", err)
	} else {
		barrelUpdates := map[string]interface{}{
			"condition": condition,
		}
		if _, err := s.barrelRepo.UpdateCustodyStateCAS(barrel.ID, barrel.CustodyState, barrelState, barrelUpdates); err != nil {
			logger.Errorw("custody_return_barrel_update_failed", "barrel_id", barrel.ID, "error", err)
		}
	}

	return s.repo.GetByID(record.ID)
}

// Get 获取台账记录
func (s *CustodyService) Get(id uint) (*models.CustodyRecord, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCustodyRecordNotFound
	}
	return record, nil
}

// List 查询台账记录
func (s *CustodyService) List(input CustodyListInput) ([]models.CustodyRecord, int64, error) {
	filter := repository.CustodyListFilter{
		Page:       input.Page,
		PageSize:   input.PageSize,
		BarrelID:   input.BarrelID,
		Status:     input.Status,
		HolderName: input.HolderName,
		OnlyOpen:   input.OnlyOpen,
	}
	return s.repo.List(filter)
}

// ListOverdue 查询截至某时点已逾期的未结清记录（可重入的分页读模型）
func (s *CustodyService) ListOverdue(asOf time.Time, page, pageSize int) ([]models.CustodyRecord, int64, error) {
	filter := repository.CustodyListFilter{
		Page:      page,
		PageSize:  pageSize,
		OnlyOpen:  true,
		DueBefore: &asOf,
	}
	return s.repo.List(filter)
}

// SweepOverdue 逾期扫描：把到期未还的 issued 记录改判为 overdue
// 幂等；单条失败只记日志并继续，下一轮扫描自然重试
func (s *CustodyService) SweepOverdue(asOf time.Time) (SweepResult, error) {
	var result SweepResult
	var afterID uint
	for {
		batch, err := s.repo.ListOverdueCandidates(asOf, sweepBatchSize, afterID)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			return result, nil
		}
		for _, record := range batch {
			afterID = record.ID
			result.Scanned++
			days := overdueDays(record.ExpectedReturnAt, asOf)
			if days <= 0 {
				continue
			}
			ok, err := s.repo.UpdateStatusCAS(record.ID, constants.CustodyStatusIssued, constants.CustodyStatusOverdue, map[string]interface{}{
				"days_overdue": days,
			})
			if err != nil {
				result.Failed++
				logger.Warnw("custody_sweep_record_failed", "record_id", record.ID, "error", err)
				continue
			}
			if ok {
				result.Reclassified++
			}
			// CAS 落空说明用户归还抢先了一步，无需处理
		}
		if len(batch) < sweepBatchSize {
			return result, nil
		}
	}
}

// overdueDays 计算整数逾期天数：不足一天不计
func overdueDays(expectedReturnAt, asOf time.Time) int {
	if !asOf.After(expectedReturnAt) {
		return 0
	}
	return int(asOf.Sub(expectedReturnAt) / (24 * time.Hour))
}
