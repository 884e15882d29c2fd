package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSellRequestServiceTest(t *testing.T) (*SellRequestService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sell_request_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.SellRequest{}, &models.DeliveryTask{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewSellRequestService(repository.NewSellRequestRepository(db)), db
}

func seedSellRequest(t *testing.T, svc *SellRequestService, requestType string) *models.SellRequest {
	t.Helper()
	request, err := svc.Create(SellRequestCreateInput{
		RequestType:    requestType,
		CustomerName:   "佩雷拉",
		BarrelCount:    4,
		PickupLocation: "Kurunegala 橡胶园 3 号路",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	return request
}

func TestSellRequestServiceCreateValidatesType(t *testing.T) {
	svc, _ := setupSellRequestServiceTest(t)

	request := seedSellRequest(t, svc, constants.RequestTypeRawSell)
	if request.Status != constants.SellRequestStatusPending {
		t.Fatalf("expected pending, got: %s", request.Status)
	}
	if request.RequestNo == "" {
		t.Fatalf("expected generated request no")
	}

	if _, err := svc.Create(SellRequestCreateInput{
		RequestType:  "barter",
		CustomerName: "佩雷拉",
	}); !errors.Is(err, ErrRequestInvalid) {
		t.Fatalf("expected ErrRequestInvalid for unknown type, got: %v", err)
	}
	if _, err := svc.Create(SellRequestCreateInput{
		RequestType: constants.RequestTypeRawSell,
	}); !errors.Is(err, ErrRequestInvalid) {
		t.Fatalf("expected ErrRequestInvalid without customer, got: %v", err)
	}
}

func TestSellRequestServiceRawSellFullChain(t *testing.T) {
	svc, _ := setupSellRequestServiceTest(t)
	request := seedSellRequest(t, svc, constants.RequestTypeRawSell)

	if _, err := svc.Approve(request.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	staffID := uint(7)
	if _, err := svc.AssignDelivery(request.ID, staffID, nil, 1); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	quantity := models.NewMoneyFromDecimal(decimal.RequireFromString("182.50"))
	updated, err := svc.MarkCollected(request.ID, quantity, 7)
	if err != nil {
		t.Fatalf("mark collected failed: %v", err)
	}
	if !updated.MeasuredQuantity.Decimal.Equal(quantity.Decimal) {
		t.Fatalf("expected measured quantity recorded, got: %s", updated.MeasuredQuantity.String())
	}

	steps := []func() (*models.SellRequest, error){
		func() (*models.SellRequest, error) { return svc.MarkDeliveredToLab(request.ID, 7) },
		func() (*models.SellRequest, error) { return svc.MarkTested(request.ID, 9) },
		func() (*models.SellRequest, error) { return svc.MarkAccountCalculated(request.ID, 1) },
		func() (*models.SellRequest, error) { return svc.MarkVerified(request.ID, 1) },
		func() (*models.SellRequest, error) { return svc.MarkInvoiced(request.ID, 1) },
	}
	for i, step := range steps {
		if updated, err = step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if updated.Status != constants.SellRequestStatusInvoiced {
		t.Fatalf("expected invoiced, got: %s", updated.Status)
	}

	// 终态之后不可再推进
	if _, err := svc.MarkVerified(request.ID, 1); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition after invoiced, got: %v", err)
	}
}

func TestSellRequestServiceRejectsSkippedSteps(t *testing.T) {
	svc, _ := setupSellRequestServiceTest(t)
	request := seedSellRequest(t, svc, constants.RequestTypeLatexIntake)

	if _, err := svc.Approve(request.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// assigned 还没发生，不能直接跳到 collected 之后的环节
	if _, err := svc.MarkCollected(request.ID, models.Money{}, 7); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for skipped assign, got: %v", err)
	}
	if _, err := svc.MarkTested(request.ID, 9); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for skipped steps, got: %v", err)
	}
}

func TestSellRequestServiceEmptyReturnSkipsLab(t *testing.T) {
	svc, _ := setupSellRequestServiceTest(t)
	request := seedSellRequest(t, svc, constants.RequestTypeEmptyReturn)

	if _, err := svc.Approve(request.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.AssignDelivery(request.ID, 7, nil, 1); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := svc.MarkCollected(request.ID, models.Money{}, 7); err != nil {
		t.Fatalf("mark collected failed: %v", err)
	}

	// 空桶回收不经过化验环节
	if got := svc.NextStatus(constants.RequestTypeEmptyReturn, constants.SellRequestStatusCollected); got != constants.SellRequestStatusVerified {
		t.Fatalf("expected next status verified, got: %s", got)
	}
	if _, err := svc.MarkDeliveredToLab(request.ID, 7); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected lab step to be rejected, got: %v", err)
	}
	if _, err := svc.MarkTested(request.ID, 9); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected tested step to be rejected, got: %v", err)
	}

	if _, err := svc.MarkVerified(request.ID, 1); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}
	updated, err := svc.MarkInvoiced(request.ID, 1)
	if err != nil {
		t.Fatalf("mark invoiced failed: %v", err)
	}
	if updated.Status != constants.SellRequestStatusInvoiced {
		t.Fatalf("expected invoiced, got: %s", updated.Status)
	}
}

func TestSellRequestServiceApproveRejectRules(t *testing.T) {
	svc, _ := setupSellRequestServiceTest(t)

	// 待审批可驳回
	pending := seedSellRequest(t, svc, constants.RequestTypeRawSell)
	rejected, err := svc.Reject(pending.ID, "桶况不符", 1)
	if err != nil {
		t.Fatalf("reject pending failed: %v", err)
	}
	if rejected.Status != constants.SellRequestStatusRejected || rejected.RejectReason != "桶况不符" {
		t.Fatalf("unexpected rejected request: %+v", rejected)
	}
	if _, err := svc.Approve(pending.ID, 1); !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending after reject, got: %v", err)
	}

	// 已审批仍可驳回，指派之后不可
	approved := seedSellRequest(t, svc, constants.RequestTypeRawSell)
	if _, err := svc.Approve(approved.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.Approve(approved.ID, 1); !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("expected double approve to fail, got: %v", err)
	}
	if _, err := svc.Reject(approved.ID, "客户撤回", 1); err != nil {
		t.Fatalf("reject approved failed: %v", err)
	}

	assigned := seedSellRequest(t, svc, constants.RequestTypeRawSell)
	if _, err := svc.Approve(assigned.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.AssignDelivery(assigned.ID, 7, nil, 1); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := svc.Reject(assigned.ID, "too late", 1); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected reject after assign to fail, got: %v", err)
	}
	if _, err := svc.AssignDelivery(assigned.ID, 8, nil, 1); !errors.Is(err, ErrRequestNotApproved) {
		t.Fatalf("expected double assign to fail, got: %v", err)
	}
}
