package service

import (
	"time"

	"github.com/hevea-next/internal/authz"
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"
)

// OrchestratorService 业务编排门面：跨实体命令的唯一入口。
// 负责角色授权、出售申请与配送任务之间的弱关联对账、
// 每条写命令的审计留痕，以及提交后的即发即忘通知。
// 对账策略是写后重读双方实体，而不是跨实体加锁。
type OrchestratorService struct {
	staffRepo       repository.StaffRepository
	barrelSvc       *BarrelService
	custodySvc      *CustodyService
	gridSvc         *HangerGridService
	taskSvc         *DeliveryTaskService
	requestSvc      *SellRequestService
	auditSvc        *AuditService
	notificationSvc *NotificationService
	authzSvc        *authz.Service
}

// NewOrchestratorService 创建编排门面
func NewOrchestratorService(
	staffRepo repository.StaffRepository,
	barrelSvc *BarrelService,
	custodySvc *CustodyService,
	gridSvc *HangerGridService,
	taskSvc *DeliveryTaskService,
	requestSvc *SellRequestService,
	auditSvc *AuditService,
	notificationSvc *NotificationService,
	authzSvc *authz.Service,
) *OrchestratorService {
	return &OrchestratorService{
		staffRepo:       staffRepo,
		barrelSvc:       barrelSvc,
		custodySvc:      custodySvc,
		gridSvc:         gridSvc,
		taskSvc:         taskSvc,
		requestSvc:      requestSvc,
		auditSvc:        auditSvc,
		notificationSvc: notificationSvc,
		authzSvc:        authzSvc,
	}
}

// authorize 校验操作人角色是否允许执行该命令；状态机自身不做鉴权
func (s *OrchestratorService) authorize(actorID uint, action string) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	if staff.Status != constants.StaffStatusActive {
		return nil, ErrStaffDisabled
	}
	if s.authzSvc == nil {
		return staff, nil
	}
	allowed, err := s.authzSvc.EnforceRole(staff.Role, action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}
	return staff, nil
}

// RegisterBarrel 登记料桶
func (s *OrchestratorService) RegisterBarrel(actorID uint, input BarrelRegisterInput) (*models.Barrel, error) {
	if _, err := s.authorize(actorID, constants.AuditActionBarrelRegister); err != nil {
		return nil, err
	}
	barrel, err := s.barrelSvc.Register(input)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionBarrelRegister,
		EntityType: constants.AuditEntityBarrel,
		EntityID:   barrel.ID,
		ToStatus:   barrel.CustodyState,
		Detail:     models.JSON{"code": barrel.Code},
	})
	return barrel, nil
}

// RetireBarrel 退役料桶
func (s *OrchestratorService) RetireBarrel(actorID uint, barrelID uint) (*models.Barrel, error) {
	if _, err := s.authorize(actorID, constants.AuditActionBarrelRetire); err != nil {
		return nil, err
	}
	before, err := s.barrelSvc.Get(barrelID)
	if err != nil {
		return nil, err
	}
	barrel, err := s.barrelSvc.Retire(barrelID)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionBarrelRetire,
		EntityType: constants.AuditEntityBarrel,
		EntityID:   barrel.ID,
		FromStatus: before.CustodyState,
		ToStatus:   barrel.CustodyState,
		Detail:     models.JSON{"code": barrel.Code},
	})
	return barrel, nil
}

// IssueBarrel 借出料桶
func (s *OrchestratorService) IssueBarrel(actorID uint, input CustodyIssueInput) (*models.CustodyRecord, error) {
	if _, err := s.authorize(actorID, constants.AuditActionCustodyIssue); err != nil {
		return nil, err
	}
	input.ActorID = actorID
	record, err := s.custodySvc.Issue(input)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionCustodyIssue,
		EntityType: constants.AuditEntityCustody,
		EntityID:   record.ID,
		ToStatus:   record.Status,
		Detail: models.JSON{
			"barrel_id":          record.BarrelID,
			"holder_name":        record.HolderName,
			"expected_return_at": record.ExpectedReturnAt,
		},
	})
	return record, nil
}

// ReturnBarrel 归还料桶
func (s *OrchestratorService) ReturnBarrel(actorID uint, input CustodyReturnInput) (*models.CustodyRecord, error) {
	if _, err := s.authorize(actorID, constants.AuditActionCustodyReturn); err != nil {
		return nil, err
	}
	input.ActorID = actorID
	before, err := s.custodySvc.Get(input.RecordID)
	if err != nil {
		return nil, err
	}
	record, err := s.custodySvc.Return(input)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionCustodyReturn,
		EntityType: constants.AuditEntityCustody,
		EntityID:   record.ID,
		FromStatus: before.Status,
		ToStatus:   record.Status,
		Detail: models.JSON{
			"barrel_id":      record.BarrelID,
			"days_overdue":   record.DaysOverdue,
			"penalty_amount": record.PenaltyAmount.String(),
			"needs_review":   record.NeedsReview,
		},
	})
	if record.DaysOverdue > 0 {
		s.notificationSvc.Emit(NotificationEmitInput{
			Event:    constants.NotificationEventCustodyOverdue,
			BizType:  constants.NotificationBizTypeCustody,
			EntityID: record.ID,
			Payload: models.JSON{
				"barrel_id":      record.BarrelID,
				"days_overdue":   record.DaysOverdue,
				"penalty_amount": record.PenaltyAmount.String(),
			},
		})
	}
	return record, nil
}

// SeedGrid 初始化挂架网格
func (s *OrchestratorService) SeedGrid(actorID uint) (int, error) {
	if _, err := s.authorize(actorID, constants.AuditActionSlotSetStatus); err != nil {
		return 0, err
	}
	return s.gridSvc.Seed()
}

// SetSlotStatus 设置格位状态
func (s *OrchestratorService) SetSlotStatus(actorID uint, input SlotSetStatusInput) (*models.HangerSlot, error) {
	if _, err := s.authorize(actorID, constants.AuditActionSlotSetStatus); err != nil {
		return nil, err
	}
	input.ActorID = actorID
	return s.gridSvc.SetStatus(input)
}

// BulkSetSlotStatus 批量设置格位状态
func (s *OrchestratorService) BulkSetSlotStatus(actorID uint, input BulkSetStatusInput) (BulkSetStatusResult, error) {
	if _, err := s.authorize(actorID, constants.AuditActionSlotSetStatus); err != nil {
		return BulkSetStatusResult{}, err
	}
	input.ActorID = actorID
	return s.gridSvc.BulkSetStatus(input)
}

// CreateSellRequest 录入出售申请
func (s *OrchestratorService) CreateSellRequest(actorID uint, input SellRequestCreateInput) (*models.SellRequest, error) {
	if _, err := s.authorize(actorID, constants.AuditActionRequestCreate); err != nil {
		return nil, err
	}
	request, err := s.requestSvc.Create(input)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionRequestCreate,
		EntityType: constants.AuditEntitySellRequest,
		EntityID:   request.ID,
		ToStatus:   request.Status,
		Detail: models.JSON{
			"request_no":   request.RequestNo,
			"request_type": request.RequestType,
			"barrel_count": request.BarrelCount,
		},
	})
	return request, nil
}

// ApproveSellRequest 审批通过出售申请
func (s *OrchestratorService) ApproveSellRequest(actorID uint, requestID uint) (*models.SellRequest, error) {
	if _, err := s.authorize(actorID, constants.AuditActionRequestApprove); err != nil {
		return nil, err
	}
	request, err := s.requestSvc.Approve(requestID, actorID)
	if err != nil {
		return nil, err
	}
	s.recordRequestTransition(actorID, constants.AuditActionRequestApprove, request, constants.SellRequestStatusPending, nil)
	return request, nil
}

// RejectSellRequest 驳回出售申请
func (s *OrchestratorService) RejectSellRequest(actorID uint, requestID uint, reason string) (*models.SellRequest, error) {
	if _, err := s.authorize(actorID, constants.AuditActionRequestReject); err != nil {
		return nil, err
	}
	before, err := s.requestSvc.Get(requestID)
	if err != nil {
		return nil, err
	}
	request, err := s.requestSvc.Reject(requestID, reason, actorID)
	if err != nil {
		return nil, err
	}
	s.recordRequestTransition(actorID, constants.AuditActionRequestReject, request, before.Status, models.JSON{"reason": reason})
	return request, nil
}

// AssignDelivery 指派配送：校验员工可用后先建任务再过户申请；
// 申请侧 CAS 落空时取消刚建的任务，保证不留悬空行程
func (s *OrchestratorService) AssignDelivery(actorID uint, requestID uint, staffID uint) (*models.SellRequest, *models.DeliveryTask, error) {
	if _, err := s.authorize(actorID, constants.AuditActionRequestAssign); err != nil {
		return nil, nil, err
	}
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return nil, nil, err
	}
	if staff == nil {
		return nil, nil, ErrStaffNotFound
	}
	if staff.Status != constants.StaffStatusActive {
		return nil, nil, ErrStaffDisabled
	}
	request, err := s.requestSvc.Get(requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != constants.SellRequestStatusApproved {
		return nil, nil, ErrRequestNotApproved
	}

	task, err := s.taskSvc.Create(DeliveryTaskCreateInput{
		AssigneeStaffID: staffID,
		CustomerName:    request.CustomerName,
		CustomerContact: request.CustomerContact,
		PickupAddress:   request.PickupLocation,
		SellRequestID:   &request.ID,
	})
	if err != nil {
		return nil, nil, err
	}

	assigned, err := s.requestSvc.AssignDelivery(requestID, staffID, &task.ID, actorID)
	if err != nil {
		if _, cancelErr := s.taskSvc.Cancel(task.ID, actorID); cancelErr != nil {
			logger.Errorw("orchestrator_assign_task_cancel_failed", "task_id", task.ID, "error", cancelErr)
		}
		return nil, nil, err
	}

	s.recordRequestTransition(actorID, constants.AuditActionRequestAssign, assigned, constants.SellRequestStatusApproved, models.JSON{
		"staff_id": staffID,
		"task_id":  task.ID,
	})
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionTaskCreate,
		EntityType: constants.AuditEntityTask,
		EntityID:   task.ID,
		ToStatus:   task.Status,
		Detail:     models.JSON{"task_no": task.TaskNo, "sell_request_id": request.ID},
	})
	return assigned, task, nil
}

// AdvanceDeliveryTask 推进配送任务：仅任务执行人本人（或管理角色）可推进；
// 抵达送达态后由门面对账推进关联申请
func (s *OrchestratorService) AdvanceDeliveryTask(actorID uint, taskID uint, requestedStatus string) (*models.DeliveryTask, error) {
	actor, err := s.authorize(actorID, constants.AuditActionTaskAdvance)
	if err != nil {
		return nil, err
	}
	task, err := s.taskSvc.Get(taskID)
	if err != nil {
		return nil, err
	}
	if !s.canOperateTask(actor, task) {
		return nil, ErrUnauthorized
	}
	fromStatus := task.Status
	advanced, err := s.taskSvc.Advance(taskID, requestedStatus, actorID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionTaskAdvance,
		EntityType: constants.AuditEntityTask,
		EntityID:   advanced.ID,
		FromStatus: fromStatus,
		ToStatus:   advanced.Status,
	})
	s.emitTaskStatusNotification(advanced)

	if advanced.Status == constants.TaskStatusDelivered {
		s.reconcileDeliveredTask(actorID, advanced)
	}
	return advanced, nil
}

// BulkAdvanceDeliveryTask 逐步推进任务到送达：每步都走完整编排，
// 副作用（审计、通知、申请对账）不缺步；中途失败即停在已到达的状态
func (s *OrchestratorService) BulkAdvanceDeliveryTask(actorID uint, taskID uint) (*models.DeliveryTask, error) {
	task, err := s.taskSvc.Get(taskID)
	if err != nil {
		return nil, err
	}
	for {
		if task.Status == constants.TaskStatusDelivered {
			return task, nil
		}
		next := nextTaskStatus(task.Status)
		if next == "" {
			return task, ErrIllegalTransition
		}
		advanced, err := s.AdvanceDeliveryTask(actorID, taskID, next)
		if err != nil {
			return task, err
		}
		task = advanced
	}
}

// CancelDeliveryTask 取消配送任务；已发生的保管变更留待人工跟进，不自动回滚
func (s *OrchestratorService) CancelDeliveryTask(actorID uint, taskID uint) (*models.DeliveryTask, error) {
	if _, err := s.authorize(actorID, constants.AuditActionTaskCancel); err != nil {
		return nil, err
	}
	task, err := s.taskSvc.Get(taskID)
	if err != nil {
		return nil, err
	}
	fromStatus := task.Status
	cancelled, err := s.taskSvc.Cancel(taskID, actorID)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionTaskCancel,
		EntityType: constants.AuditEntityTask,
		EntityID:   cancelled.ID,
		FromStatus: fromStatus,
		ToStatus:   cancelled.Status,
	})
	s.emitTaskStatusNotification(cancelled)
	return cancelled, nil
}

// RecordTaskBarrels 登记任务经手桶号；任务已在取货后阶段时把桶置为在途
func (s *OrchestratorService) RecordTaskBarrels(actorID uint, taskID uint, barrelCodes []string) (*models.DeliveryTask, error) {
	actor, err := s.authorize(actorID, constants.AuditActionTaskRecordBarrels)
	if err != nil {
		return nil, err
	}
	task, err := s.taskSvc.Get(taskID)
	if err != nil {
		return nil, err
	}
	if !s.canOperateTask(actor, task) {
		return nil, ErrUnauthorized
	}
	updated, err := s.taskSvc.RecordBarrels(taskID, barrelCodes)
	if err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionTaskRecordBarrels,
		EntityType: constants.AuditEntityTask,
		EntityID:   updated.ID,
		Detail:     models.JSON{"barrel_codes": updated.Meta.BarrelCodes},
	})
	if updated.Status == constants.TaskStatusPickedUp || updated.Status == constants.TaskStatusEnrouteDrop {
		s.markBarrelsInTransit(updated.Meta.BarrelCodes)
	}
	return updated, nil
}

// AdvanceSellRequest 推进出售申请到指定状态（严格单步，状态表按类型分支）
func (s *OrchestratorService) AdvanceSellRequest(actorID uint, requestID uint, targetStatus string, measuredQuantity *models.Money) (*models.SellRequest, error) {
	if _, err := s.authorize(actorID, constants.AuditActionRequestAdvance); err != nil {
		return nil, err
	}
	return s.advanceSellRequest(actorID, requestID, targetStatus, measuredQuantity)
}

// advanceSellRequest 免鉴权的内部推进：供门面对账复用
func (s *OrchestratorService) advanceSellRequest(actorID uint, requestID uint, targetStatus string, measuredQuantity *models.Money) (*models.SellRequest, error) {
	request, err := s.requestSvc.Get(requestID)
	if err != nil {
		return nil, err
	}
	fromStatus := request.Status

	var advanced *models.SellRequest
	switch targetStatus {
	case constants.SellRequestStatusCollected:
		quantity := request.MeasuredQuantity
		if measuredQuantity != nil {
			quantity = *measuredQuantity
		}
		advanced, err = s.requestSvc.MarkCollected(requestID, quantity, actorID)
	case constants.SellRequestStatusDeliveredToLab:
		advanced, err = s.requestSvc.MarkDeliveredToLab(requestID, actorID)
	case constants.SellRequestStatusTested:
		advanced, err = s.requestSvc.MarkTested(requestID, actorID)
	case constants.SellRequestStatusAccountCalculated:
		advanced, err = s.requestSvc.MarkAccountCalculated(requestID, actorID)
	case constants.SellRequestStatusVerified:
		advanced, err = s.requestSvc.MarkVerified(requestID, actorID)
	case constants.SellRequestStatusInvoiced:
		advanced, err = s.requestSvc.MarkInvoiced(requestID, actorID)
	default:
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, err
	}
	s.recordRequestTransition(actorID, constants.AuditActionRequestAdvance, advanced, fromStatus, nil)
	return advanced, nil
}

// SweepCustodyOverdue 触发逾期扫描并留痕
func (s *OrchestratorService) SweepCustodyOverdue(actorID uint, asOf time.Time) (SweepResult, error) {
	if _, err := s.authorize(actorID, constants.AuditActionCustodySweep); err != nil {
		return SweepResult{}, err
	}
	result, err := s.custodySvc.SweepOverdue(asOf)
	if err != nil {
		return result, err
	}
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     constants.AuditActionCustodySweep,
		EntityType: constants.AuditEntityCustody,
		EntityID:   0,
		Detail: models.JSON{
			"scanned":      result.Scanned,
			"reclassified": result.Reclassified,
			"failed":       result.Failed,
		},
	})
	return result, nil
}

// reconcileDeliveredTask 任务送达后的申请对账：
// 申请仍停在已指派时顺势推进到回收完成，再按类型推进到送检；
// 申请已越过预期状态时不回写，只落告警审计，交由人工核对
func (s *OrchestratorService) reconcileDeliveredTask(actorID uint, task *models.DeliveryTask) {
	if task.Meta.SellRequestID == nil {
		return
	}
	requestID := *task.Meta.SellRequestID
	request, err := s.requestSvc.Get(requestID)
	if err != nil {
		logger.Warnw("orchestrator_reconcile_request_fetch_failed", "request_id", requestID, "error", err)
		return
	}
	if request.Status != constants.SellRequestStatusAssigned {
		logger.Warnw("orchestrator_reconcile_status_gap",
			"request_id", request.ID,
			"request_status", request.Status,
			"task_id", task.ID,
		)
		s.auditSvc.Record(AuditEntryInput{
			ActorID:    actorID,
			Action:     constants.AuditActionRequestReconcileGap,
			EntityType: constants.AuditEntitySellRequest,
			EntityID:   request.ID,
			FromStatus: request.Status,
			Detail:     models.JSON{"task_id": task.ID, "task_status": task.Status},
		})
		return
	}

	// 桶随任务回库：记录过的在途桶落回在库
	s.resolveInTransitBarrels(task.Meta.BarrelCodes)

	for _, target := range []string{constants.SellRequestStatusCollected, constants.SellRequestStatusDeliveredToLab} {
		next := nextRequestStatus(request.RequestType, request.Status)
		if next != target {
			break
		}
		advanced, err := s.advanceSellRequest(actorID, request.ID, target, nil)
		if err != nil {
			logger.Warnw("orchestrator_reconcile_advance_failed", "request_id", request.ID, "target", target, "error", err)
			return
		}
		request = advanced
	}
}

// markBarrelsInTransit 把登记在任务上的桶置为在途
func (s *OrchestratorService) markBarrelsInTransit(codes []string) {
	for _, code := range codes {
		barrel, err := s.barrelSvc.GetByCode(code)
		if err != nil {
			logger.Warnw("orchestrator_barrel_transit_fetch_failed", "code", code, "error", err)
			continue
		}
		if barrel.CustodyState == constants.BarrelStateInTransit || barrel.CustodyState == constants.BarrelStateLost {
			continue
		}
		if _, err := s.barrelSvc.repo.UpdateCustodyStateCAS(barrel.ID, barrel.CustodyState, constants.BarrelStateInTransit, nil); err != nil {
			logger.Warnw("orchestrator_barrel_transit_update_failed", "code", code, "error", err)
		}
	}
}

// resolveInTransitBarrels 任务送达后把在途桶落回在库
func (s *OrchestratorService) resolveInTransitBarrels(codes []string) {
	for _, code := range codes {
		barrel, err := s.barrelSvc.GetByCode(code)
		if err != nil {
			logger.Warnw("orchestrator_barrel_resolve_fetch_failed", "code", code, "error", err)
			continue
		}
		if barrel.CustodyState != constants.BarrelStateInTransit {
			continue
		}
		if _, err := s.barrelSvc.repo.UpdateCustodyStateCAS(barrel.ID, constants.BarrelStateInTransit, constants.BarrelStateInWarehouse, nil); err != nil {
			logger.Warnw("orchestrator_barrel_resolve_update_failed", "code", code, "error", err)
		}
	}
}

// canOperateTask 任务只能由执行人本人推进，管理角色可代操作
func (s *OrchestratorService) canOperateTask(actor *models.Staff, task *models.DeliveryTask) bool {
	if actor == nil || task == nil {
		return false
	}
	if actor.Role == constants.RoleAdmin || actor.Role == constants.RoleManager {
		return true
	}
	return task.AssigneeStaffID == actor.ID
}

func (s *OrchestratorService) recordRequestTransition(actorID uint, action string, request *models.SellRequest, fromStatus string, detail models.JSON) {
	s.auditSvc.Record(AuditEntryInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: constants.AuditEntitySellRequest,
		EntityID:   request.ID,
		FromStatus: fromStatus,
		ToStatus:   request.Status,
		Detail:     detail,
	})
	s.notificationSvc.Emit(NotificationEmitInput{
		Event:    constants.NotificationEventRequestStatusChanged,
		BizType:  constants.NotificationBizTypeSellRequest,
		EntityID: request.ID,
		Payload: models.JSON{
			"request_no":  request.RequestNo,
			"from_status": fromStatus,
			"to_status":   request.Status,
			"customer":    request.CustomerName,
		},
	})
}

func (s *OrchestratorService) emitTaskStatusNotification(task *models.DeliveryTask) {
	event := constants.NotificationEventTaskStatusChanged
	if task.Status == constants.TaskStatusDelivered {
		event = constants.NotificationEventTaskDelivered
	}
	s.notificationSvc.Emit(NotificationEmitInput{
		Event:    event,
		BizType:  constants.NotificationBizTypeTask,
		EntityID: task.ID,
		Payload: models.JSON{
			"task_no":      task.TaskNo,
			"status":       task.Status,
			"customer":     task.CustomerName,
			"barrel_count": len(task.Meta.BarrelCodes),
		},
	})
}
