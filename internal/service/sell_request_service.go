package service

import (
	"fmt"
	"strings"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/google/uuid"
)

// requestStatusSequences 按申请类型参数化的有序状态表：
// 空桶回收不经化验，跳过送检/化验/核算三步
var requestStatusSequences = map[string][]string{
	constants.RequestTypeRawSell: {
		constants.SellRequestStatusPending,
		constants.SellRequestStatusApproved,
		constants.SellRequestStatusAssigned,
		constants.SellRequestStatusCollected,
		constants.SellRequestStatusDeliveredToLab,
		constants.SellRequestStatusTested,
		constants.SellRequestStatusAccountCalculated,
		constants.SellRequestStatusVerified,
		constants.SellRequestStatusInvoiced,
	},
	constants.RequestTypeLatexIntake: {
		constants.SellRequestStatusPending,
		constants.SellRequestStatusApproved,
		constants.SellRequestStatusAssigned,
		constants.SellRequestStatusCollected,
		constants.SellRequestStatusDeliveredToLab,
		constants.SellRequestStatusTested,
		constants.SellRequestStatusAccountCalculated,
		constants.SellRequestStatusVerified,
		constants.SellRequestStatusInvoiced,
	},
	constants.RequestTypeEmptyReturn: {
		constants.SellRequestStatusPending,
		constants.SellRequestStatusApproved,
		constants.SellRequestStatusAssigned,
		constants.SellRequestStatusCollected,
		constants.SellRequestStatusVerified,
		constants.SellRequestStatusInvoiced,
	},
}

// SellRequestService 出售申请服务：审批、指派与回收流程推进
type SellRequestService struct {
	repo repository.SellRequestRepository
}

// SellRequestCreateInput 出售申请创建输入
type SellRequestCreateInput struct {
	RequestType     string
	CustomerName    string
	CustomerContact string
	BarrelCount     int
	PickupLocation  string
}

// SellRequestListInput 出售申请查询输入
type SellRequestListInput struct {
	Page            int
	PageSize        int
	Status          string
	RequestType     string
	RequestNo       string
	AssignedStaffID uint
}

// NewSellRequestService 创建出售申请服务
func NewSellRequestService(repo repository.SellRequestRepository) *SellRequestService {
	return &SellRequestService{repo: repo}
}

// Create 创建出售申请，初始待审批
func (s *SellRequestService) Create(input SellRequestCreateInput) (*models.SellRequest, error) {
	requestType := strings.ToLower(strings.TrimSpace(input.RequestType))
	if _, ok := requestStatusSequences[requestType]; !ok {
		return nil, ErrRequestInvalid
	}
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, ErrRequestInvalid
	}
	if input.BarrelCount < 0 {
		return nil, ErrRequestInvalid
	}
	request := &models.SellRequest{
		RequestNo:       generateRequestNo(),
		RequestType:     requestType,
		CustomerName:    customerName,
		CustomerContact: strings.TrimSpace(input.CustomerContact),
		BarrelCount:     input.BarrelCount,
		Status:          constants.SellRequestStatusPending,
		PickupLocation:  strings.TrimSpace(input.PickupLocation),
	}
	if err := s.repo.Create(request); err != nil {
		return nil, err
	}
	return request, nil
}

// Approve 审批通过：仅允许从待审批出发
func (s *SellRequestService) Approve(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != constants.SellRequestStatusPending {
		return nil, ErrRequestNotPending
	}
	return s.casTransition(request, constants.SellRequestStatusApproved, nil)
}

// Reject 驳回：仅待审批或已审批可驳回
func (s *SellRequestService) Reject(requestID uint, reason string, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != constants.SellRequestStatusPending && request.Status != constants.SellRequestStatusApproved {
		return nil, ErrIllegalTransition
	}
	return s.casTransition(request, constants.SellRequestStatusRejected, map[string]interface{}{
		"reject_reason": strings.TrimSpace(reason),
	})
}

// AssignDelivery 指派配送员工并关联配送任务：仅已审批可指派
func (s *SellRequestService) AssignDelivery(requestID uint, staffID uint, taskID *uint, actorID uint) (*models.SellRequest, error) {
	if staffID == 0 {
		return nil, ErrRequestInvalid
	}
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != constants.SellRequestStatusApproved {
		return nil, ErrRequestNotApproved
	}
	updates := map[string]interface{}{
		"assigned_staff_id": staffID,
	}
	if taskID != nil {
		updates["delivery_task_id"] = *taskID
	}
	return s.casTransition(request, constants.SellRequestStatusAssigned, updates)
}

// MarkCollected 回收完成并记录计量数量
func (s *SellRequestService) MarkCollected(requestID uint, measuredQuantity models.Money, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusCollected, map[string]interface{}{
		"measured_quantity": measuredQuantity,
	})
}

// MarkDeliveredToLab 送达化验室
func (s *SellRequestService) MarkDeliveredToLab(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusDeliveredToLab, nil)
}

// MarkTested 化验完成
func (s *SellRequestService) MarkTested(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusTested, nil)
}

// MarkAccountCalculated 核算完成
func (s *SellRequestService) MarkAccountCalculated(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusAccountCalculated, nil)
}

// MarkVerified 复核通过
func (s *SellRequestService) MarkVerified(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusVerified, nil)
}

// MarkInvoiced 开票完成（终态）
func (s *SellRequestService) MarkInvoiced(requestID uint, actorID uint) (*models.SellRequest, error) {
	request, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	return s.advance(request, constants.SellRequestStatusInvoiced, nil)
}

// Get 获取出售申请
func (s *SellRequestService) Get(id uint) (*models.SellRequest, error) {
	request, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	return request, nil
}

// List 查询出售申请列表
func (s *SellRequestService) List(input SellRequestListInput) ([]models.SellRequest, int64, error) {
	filter := repository.SellRequestListFilter{
		Page:            input.Page,
		PageSize:        input.PageSize,
		Status:          input.Status,
		RequestType:     input.RequestType,
		RequestNo:       input.RequestNo,
		AssignedStaffID: input.AssignedStaffID,
	}
	return s.repo.List(filter)
}

// NextStatus 返回该申请类型下某状态的直接后继，终态或未知返回空串
func (s *SellRequestService) NextStatus(requestType, current string) string {
	return nextRequestStatus(requestType, current)
}

// advance 按类型状态表做严格单步推进
func (s *SellRequestService) advance(request *models.SellRequest, targetStatus string, updates map[string]interface{}) (*models.SellRequest, error) {
	next := nextRequestStatus(request.RequestType, request.Status)
	if next == "" || next != targetStatus {
		return nil, ErrIllegalTransition
	}
	return s.casTransition(request, targetStatus, updates)
}

func (s *SellRequestService) casTransition(request *models.SellRequest, newStatus string, updates map[string]interface{}) (*models.SellRequest, error) {
	ok, err := s.repo.UpdateStatusCAS(request.ID, request.Status, newStatus, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.Get(request.ID)
}

// nextRequestStatus 按类型查有序状态表的直接后继
func nextRequestStatus(requestType, current string) string {
	sequence, ok := requestStatusSequences[requestType]
	if !ok {
		return ""
	}
	for i, status := range sequence {
		if status == current && i+1 < len(sequence) {
			return sequence[i+1]
		}
	}
	return ""
}

func generateRequestNo() string {
	return fmt.Sprintf("SR-%s", strings.ToUpper(uuid.NewString()[:8]))
}
