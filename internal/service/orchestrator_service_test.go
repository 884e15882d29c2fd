package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/authz"
	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orchestratorTestEnv struct {
	svc        *OrchestratorService
	requestSvc *SellRequestService
	taskSvc    *DeliveryTaskService
	barrelSvc  *BarrelService
	db         *gorm.DB

	adminID    uint
	managerID  uint
	deliveryID uint
	lab        uint
}

func setupOrchestratorTest(t *testing.T) *orchestratorTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:orchestrator_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Barrel{},
		&models.CustodyRecord{},
		&models.HangerSlot{},
		&models.SlotAuditLog{},
		&models.SellRequest{},
		&models.DeliveryTask{},
		&models.AuditLog{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("init authz failed: %v", err)
	}
	if err := authzSvc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	staffRepo := repository.NewStaffRepository(db)
	barrelRepo := repository.NewBarrelRepository(db)
	settingSvc := NewSettingService(repository.NewSettingRepository(db), config.CustodyConfig{
		PenaltyRatePerDay: "50.00",
		DefaultLoanDays:   14,
		Currency:          "LKR",
	})
	barrelSvc := NewBarrelService(barrelRepo)
	custodySvc := NewCustodyService(repository.NewCustodyRecordRepository(db), barrelRepo, settingSvc)
	gridSvc := NewHangerGridService(repository.NewHangerSlotRepository(db))
	taskSvc := NewDeliveryTaskService(repository.NewDeliveryTaskRepository(db))
	requestSvc := NewSellRequestService(repository.NewSellRequestRepository(db))
	auditSvc := NewAuditService(repository.NewAuditLogRepository(db))
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)

	env := &orchestratorTestEnv{
		svc: NewOrchestratorService(
			staffRepo, barrelSvc, custodySvc, gridSvc,
			taskSvc, requestSvc, auditSvc, notificationSvc, authzSvc,
		),
		requestSvc: requestSvc,
		taskSvc:    taskSvc,
		barrelSvc:  barrelSvc,
		db:         db,
	}
	env.adminID = seedOrchestratorStaff(t, db, authzSvc, "admin01", constants.RoleAdmin)
	env.managerID = seedOrchestratorStaff(t, db, authzSvc, "manager01", constants.RoleManager)
	env.deliveryID = seedOrchestratorStaff(t, db, authzSvc, "driver01", constants.RoleDelivery)
	env.lab = seedOrchestratorStaff(t, db, authzSvc, "lab01", constants.RoleLab)
	return env
}

func seedOrchestratorStaff(t *testing.T, db *gorm.DB, authzSvc *authz.Service, username, role string) uint {
	t.Helper()
	staff := models.Staff{
		Username:     username,
		PasswordHash: "hash",
		DisplayName:  username,
		Role:         role,
		Status:       constants.StaffStatusActive,
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff %s failed: %v", username, err)
	}
	if err := authzSvc.AssignStaffRole(staff.ID, role); err != nil {
		t.Fatalf("assign role for %s failed: %v", username, err)
	}
	return staff.ID
}

func TestOrchestratorEndToEndRawSell(t *testing.T) {
	env := setupOrchestratorTest(t)

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:    constants.RequestTypeRawSell,
		CustomerName:   "佩雷拉",
		BarrelCount:    4,
		PickupLocation: "Kurunegala 橡胶园 3 号路",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	assigned, task, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.Status != constants.SellRequestStatusAssigned {
		t.Fatalf("expected request assigned, got: %s", assigned.Status)
	}
	if task.Status != constants.TaskStatusPickupScheduled {
		t.Fatalf("expected task pickup_scheduled, got: %s", task.Status)
	}
	if assigned.DeliveryTaskID == nil || *assigned.DeliveryTaskID != task.ID {
		t.Fatalf("expected request linked to task %d, got: %v", task.ID, assigned.DeliveryTaskID)
	}
	if task.Meta.SellRequestID == nil || *task.Meta.SellRequestID != request.ID {
		t.Fatalf("expected task linked back to request, got: %+v", task.Meta)
	}

	// 配送员逐步推进到送达
	chain := []string{
		constants.TaskStatusEnroutePickup,
		constants.TaskStatusPickedUp,
		constants.TaskStatusEnrouteDrop,
		constants.TaskStatusDelivered,
	}
	for _, target := range chain {
		if _, err := env.svc.AdvanceDeliveryTask(env.deliveryID, task.ID, target); err != nil {
			t.Fatalf("advance task to %s failed: %v", target, err)
		}
	}

	// 送达后门面对账把申请推到已送化验
	reconciled, err := env.requestSvc.Get(request.ID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if reconciled.Status != constants.SellRequestStatusDeliveredToLab {
		t.Fatalf("expected request delivered_to_lab after task delivered, got: %s", reconciled.Status)
	}

	// 化验员继续推进
	if _, err := env.svc.AdvanceSellRequest(env.lab, request.ID, constants.SellRequestStatusTested, nil); err != nil {
		t.Fatalf("lab advance failed: %v", err)
	}

	var auditCount int64
	env.db.Model(&models.AuditLog{}).Where("entity_type = ? AND entity_id = ?", constants.AuditEntityTask, task.ID).Count(&auditCount)
	if auditCount < 4 {
		t.Fatalf("expected audit entries for each task advance, got: %d", auditCount)
	}

	var notificationCount int64
	env.db.Model(&models.Notification{}).Count(&notificationCount)
	if notificationCount == 0 {
		t.Fatalf("expected notifications persisted")
	}
}

func TestOrchestratorRoleEnforcement(t *testing.T) {
	env := setupOrchestratorTest(t)

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:  constants.RequestTypeRawSell,
		CustomerName: "席尔瓦",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	// 配送角色不能审批申请
	if _, err := env.svc.ApproveSellRequest(env.deliveryID, request.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for delivery approving, got: %v", err)
	}
	// 化验角色不能登记料桶
	if _, err := env.svc.RegisterBarrel(env.lab, BarrelRegisterInput{Code: "BHFP1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for lab registering barrel, got: %v", err)
	}
	// 管理员无所不能
	if _, err := env.svc.RegisterBarrel(env.adminID, BarrelRegisterInput{Code: "BHFP1"}); err != nil {
		t.Fatalf("admin register barrel failed: %v", err)
	}

	// 停用员工一律拒绝
	if err := env.db.Model(&models.Staff{}).Where("id = ?", env.managerID).
		Update("status", constants.StaffStatusDisabled).Error; err != nil {
		t.Fatalf("disable staff failed: %v", err)
	}
	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); !errors.Is(err, ErrStaffDisabled) {
		t.Fatalf("expected ErrStaffDisabled, got: %v", err)
	}
}

func TestOrchestratorTaskOwnership(t *testing.T) {
	env := setupOrchestratorTest(t)
	otherDriver := seedOrchestratorStaff(t, env.db, env.svc.authzSvc, "driver02", constants.RoleDelivery)

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:  constants.RequestTypeRawSell,
		CustomerName: "佩雷拉",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	_, task, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// 其他配送员不能推进不属于自己的任务
	if _, err := env.svc.AdvanceDeliveryTask(otherDriver, task.ID, constants.TaskStatusEnroutePickup); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for other driver, got: %v", err)
	}
	// 管理角色可以代为推进
	if _, err := env.svc.AdvanceDeliveryTask(env.adminID, task.ID, constants.TaskStatusEnroutePickup); err != nil {
		t.Fatalf("admin advance failed: %v", err)
	}
}

func TestOrchestratorAssignRollsBackTaskOnConflict(t *testing.T) {
	env := setupOrchestratorTest(t)

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:  constants.RequestTypeRawSell,
		CustomerName: "佩雷拉",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, _, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}

	// 第二次指派落空，且不得留下悬空任务
	if _, _, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID); !errors.Is(err, ErrRequestNotApproved) {
		t.Fatalf("expected ErrRequestNotApproved on double assign, got: %v", err)
	}
	var danglingCount int64
	env.db.Model(&models.DeliveryTask{}).
		Where("status NOT IN ?", []string{constants.TaskStatusCancelled}).
		Count(&danglingCount)
	if danglingCount != 1 {
		t.Fatalf("expected exactly 1 live task, got: %d", danglingCount)
	}
}

func TestOrchestratorReconcileGapLeavesRequestUntouched(t *testing.T) {
	env := setupOrchestratorTest(t)

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:  constants.RequestTypeRawSell,
		CustomerName: "佩雷拉",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	_, task, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// 申请被抢先手工推进，任务送达时不得回退或重推
	if _, err := env.requestSvc.MarkCollected(request.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("90.00")), env.deliveryID); err != nil {
		t.Fatalf("manual collect failed: %v", err)
	}
	if _, err := env.requestSvc.MarkDeliveredToLab(request.ID, env.deliveryID); err != nil {
		t.Fatalf("manual deliver failed: %v", err)
	}
	if _, err := env.requestSvc.MarkTested(request.ID, env.lab); err != nil {
		t.Fatalf("manual test failed: %v", err)
	}

	if _, err := env.svc.BulkAdvanceDeliveryTask(env.deliveryID, task.ID); err != nil {
		t.Fatalf("bulk advance failed: %v", err)
	}

	fresh, err := env.requestSvc.Get(request.ID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if fresh.Status != constants.SellRequestStatusTested {
		t.Fatalf("expected request untouched at tested, got: %s", fresh.Status)
	}

	var gapCount int64
	env.db.Model(&models.AuditLog{}).
		Where("action = ?", constants.AuditActionRequestReconcileGap).
		Count(&gapCount)
	if gapCount != 1 {
		t.Fatalf("expected 1 reconcile gap audit entry, got: %d", gapCount)
	}
}

func TestOrchestratorRecordBarrelsMarksTransit(t *testing.T) {
	env := setupOrchestratorTest(t)

	barrel, err := env.svc.RegisterBarrel(env.managerID, BarrelRegisterInput{Code: "BHFP3"})
	if err != nil {
		t.Fatalf("register barrel failed: %v", err)
	}

	request, err := env.svc.CreateSellRequest(env.managerID, SellRequestCreateInput{
		RequestType:  constants.RequestTypeEmptyReturn,
		CustomerName: "佩雷拉",
		BarrelCount:  1,
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := env.svc.ApproveSellRequest(env.managerID, request.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	_, task, err := env.svc.AssignDelivery(env.managerID, request.ID, env.deliveryID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if _, err := env.svc.AdvanceDeliveryTask(env.deliveryID, task.ID, constants.TaskStatusEnroutePickup); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if _, err := env.svc.AdvanceDeliveryTask(env.deliveryID, task.ID, constants.TaskStatusPickedUp); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if _, err := env.svc.RecordTaskBarrels(env.deliveryID, task.ID, []string{"BHFP3"}); err != nil {
		t.Fatalf("record barrels failed: %v", err)
	}

	inTransit, err := env.barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if inTransit.CustodyState != constants.BarrelStateInTransit {
		t.Fatalf("expected barrel in_transit, got: %s", inTransit.CustodyState)
	}

	if _, err := env.svc.AdvanceDeliveryTask(env.deliveryID, task.ID, constants.TaskStatusEnrouteDrop); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if _, err := env.svc.AdvanceDeliveryTask(env.deliveryID, task.ID, constants.TaskStatusDelivered); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	backHome, err := env.barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if backHome.CustodyState != constants.BarrelStateInWarehouse {
		t.Fatalf("expected barrel back in_warehouse, got: %s", backHome.CustodyState)
	}

	// 空桶回收对账只推进到回收完成（下一站是核验，门面不越权代办）
	fresh, err := env.requestSvc.Get(request.ID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if fresh.Status != constants.SellRequestStatusCollected {
		t.Fatalf("expected request collected, got: %s", fresh.Status)
	}
}

func TestOrchestratorSweepCustodyOverdue(t *testing.T) {
	env := setupOrchestratorTest(t)

	barrel, err := env.svc.RegisterBarrel(env.managerID, BarrelRegisterInput{Code: "BHFP7"})
	if err != nil {
		t.Fatalf("register barrel failed: %v", err)
	}

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	issuedAt := now.AddDate(0, 0, -17)
	expectedReturnAt := now.AddDate(0, 0, -3)
	if _, err := env.svc.IssueBarrel(env.managerID, CustodyIssueInput{
		BarrelID:         barrel.ID,
		HolderName:       "佩雷拉",
		IssuedAt:         &issuedAt,
		ExpectedReturnAt: &expectedReturnAt,
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	result, err := env.svc.SweepCustodyOverdue(env.adminID, now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Reclassified != 1 {
		t.Fatalf("expected 1 reclassified, got: %+v", result)
	}

	var sweepAudit int64
	env.db.Model(&models.AuditLog{}).Where("action = ?", constants.AuditActionCustodySweep).Count(&sweepAudit)
	if sweepAudit != 1 {
		t.Fatalf("expected sweep audit entry, got: %d", sweepAudit)
	}
}
