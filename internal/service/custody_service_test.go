package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCustodyServiceTest(t *testing.T) (*CustodyService, *BarrelService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:custody_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Barrel{},
		&models.CustodyRecord{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	settingSvc := NewSettingService(repository.NewSettingRepository(db), config.CustodyConfig{
		PenaltyRatePerDay: "50.00",
		DefaultLoanDays:   14,
		Currency:          "LKR",
	})
	barrelRepo := repository.NewBarrelRepository(db)
	barrelSvc := NewBarrelService(barrelRepo)
	custodySvc := NewCustodyService(repository.NewCustodyRecordRepository(db), barrelRepo, settingSvc)
	return custodySvc, barrelSvc, db
}

func seedCustodyBarrel(t *testing.T, barrelSvc *BarrelService, code string) *models.Barrel {
	t.Helper()
	barrel, err := barrelSvc.Register(BarrelRegisterInput{Code: code})
	if err != nil {
		t.Fatalf("register barrel failed: %v", err)
	}
	return barrel
}

func TestCustodyServiceIssueBlocksDoubleIssue(t *testing.T) {
	custodySvc, barrelSvc, db := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP1")

	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "佩雷拉",
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	if record.Status != constants.CustodyStatusIssued {
		t.Fatalf("expected status issued, got: %s", record.Status)
	}

	if _, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "席尔瓦",
		ActorID:    1,
	}); !errors.Is(err, ErrBarrelAlreadyIssued) {
		t.Fatalf("expected ErrBarrelAlreadyIssued, got: %v", err)
	}

	var openCount int64
	db.Model(&models.CustodyRecord{}).
		Where("barrel_id = ? AND status IN ?", barrel.ID, []string{constants.CustodyStatusIssued, constants.CustodyStatusOverdue}).
		Count(&openCount)
	if openCount != 1 {
		t.Fatalf("expected exactly 1 open record, got: %d", openCount)
	}

	fresh, err := barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if fresh.CustodyState != constants.BarrelStateIssued {
		t.Fatalf("expected barrel issued_to_customer, got: %s", fresh.CustodyState)
	}
}

func TestCustodyServiceIssueDefaultsLoanPeriod(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP2")

	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "佩雷拉",
		IssuedAt:   &issuedAt,
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	expected := issuedAt.AddDate(0, 0, 14)
	if !record.ExpectedReturnAt.Equal(expected) {
		t.Fatalf("expected return at %v, got: %v", expected, record.ExpectedReturnAt)
	}
	if record.Currency != "LKR" {
		t.Fatalf("expected currency LKR, got: %s", record.Currency)
	}
}

func TestCustodyServiceReturnOverdueComputesPenalty(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP3")

	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	expectedReturnAt := issuedAt.AddDate(0, 0, 14)
	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:         barrel.ID,
		HolderName:       "佩雷拉",
		IssuedAt:         &issuedAt,
		ExpectedReturnAt: &expectedReturnAt,
		ActorID:          1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// 逾期 3 天再多 6 小时，按整天向下取整
	returnedAt := expectedReturnAt.Add(3*24*time.Hour + 6*time.Hour)
	returned, err := custodySvc.Return(CustodyReturnInput{
		RecordID:   record.ID,
		Condition:  constants.BarrelConditionGood,
		ReturnedAt: &returnedAt,
		ActorID:    2,
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if returned.Status != constants.CustodyStatusReturned {
		t.Fatalf("expected status returned, got: %s", returned.Status)
	}
	if returned.DaysOverdue != 3 {
		t.Fatalf("expected 3 days overdue, got: %d", returned.DaysOverdue)
	}
	if !returned.PenaltyAmount.Decimal.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected penalty 150.00, got: %s", returned.PenaltyAmount.String())
	}
	if !returned.OverdueAtReturn {
		t.Fatalf("expected overdue_at_return true")
	}

	fresh, err := barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if fresh.CustodyState != constants.BarrelStateInWarehouse {
		t.Fatalf("expected barrel back in_warehouse, got: %s", fresh.CustodyState)
	}
}

func TestCustodyServiceReturnEarlyNoPenalty(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP4")

	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "席尔瓦",
		IssuedAt:   &issuedAt,
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	returnedAt := issuedAt.AddDate(0, 0, 5)
	returned, err := custodySvc.Return(CustodyReturnInput{
		RecordID:   record.ID,
		Condition:  constants.BarrelConditionFair,
		ReturnedAt: &returnedAt,
		ActorID:    2,
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if returned.DaysOverdue != 0 {
		t.Fatalf("expected 0 days overdue, got: %d", returned.DaysOverdue)
	}
	if !returned.PenaltyAmount.Decimal.IsZero() {
		t.Fatalf("expected zero penalty, got: %s", returned.PenaltyAmount.String())
	}
	if returned.OverdueAtReturn {
		t.Fatalf("expected overdue_at_return false")
	}
}

func TestCustodyServiceReturnClockSkewNeedsReview(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP5")

	issuedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "佩雷拉",
		IssuedAt:   &issuedAt,
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// 归还时间早于借出时间（设备时钟倒挂）
	returnedAt := issuedAt.Add(-2 * time.Hour)
	returned, err := custodySvc.Return(CustodyReturnInput{
		RecordID:   record.ID,
		Condition:  constants.BarrelConditionGood,
		ReturnedAt: &returnedAt,
		ActorID:    2,
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if returned.DaysOverdue != 0 {
		t.Fatalf("expected 0 days overdue, got: %d", returned.DaysOverdue)
	}
	if !returned.PenaltyAmount.Decimal.IsZero() {
		t.Fatalf("expected zero penalty, got: %s", returned.PenaltyAmount.String())
	}
	if !returned.NeedsReview {
		t.Fatalf("expected needs_review true")
	}
}

func TestCustodyServiceReturnLostBarrel(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP6")

	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "席尔瓦",
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	returned, err := custodySvc.Return(CustodyReturnInput{
		RecordID:  record.ID,
		Condition: constants.BarrelConditionLost,
		ActorID:   2,
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if returned.Status != constants.CustodyStatusLost {
		t.Fatalf("expected status lost, got: %s", returned.Status)
	}

	fresh, err := barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if fresh.CustodyState != constants.BarrelStateLost {
		t.Fatalf("expected barrel lost, got: %s", fresh.CustodyState)
	}

	// 丢失不可追回后可以退役，退役后不可再借出
	if _, err := barrelSvc.Retire(barrel.ID); err != nil {
		t.Fatalf("retire failed: %v", err)
	}
	if _, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "佩雷拉",
		ActorID:    1,
	}); !errors.Is(err, ErrBarrelRetired) {
		t.Fatalf("expected ErrBarrelRetired, got: %v", err)
	}
}

func TestCustodyServiceReturnTwiceNotOpen(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP8")

	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:   barrel.ID,
		HolderName: "佩雷拉",
		ActorID:    1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := custodySvc.Return(CustodyReturnInput{
		RecordID:  record.ID,
		Condition: constants.BarrelConditionGood,
		ActorID:   2,
	}); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if _, err := custodySvc.Return(CustodyReturnInput{
		RecordID:  record.ID,
		Condition: constants.BarrelConditionGood,
		ActorID:   2,
	}); !errors.Is(err, ErrCustodyNotOpen) {
		t.Fatalf("expected ErrCustodyNotOpen, got: %v", err)
	}
}

func TestCustodyServiceSweepThenReturn(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	barrel := seedCustodyBarrel(t, barrelSvc, "BHFP7")

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	issuedAt := now.AddDate(0, 0, -17)
	expectedReturnAt := now.AddDate(0, 0, -3)
	record, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID:         barrel.ID,
		HolderName:       "佩雷拉",
		IssuedAt:         &issuedAt,
		ExpectedReturnAt: &expectedReturnAt,
		ActorID:          1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	result, err := custodySvc.SweepOverdue(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Reclassified != 1 {
		t.Fatalf("expected 1 reclassified, got: %+v", result)
	}

	swept, err := custodySvc.Get(record.ID)
	if err != nil {
		t.Fatalf("get record failed: %v", err)
	}
	if swept.Status != constants.CustodyStatusOverdue {
		t.Fatalf("expected status overdue, got: %s", swept.Status)
	}
	if swept.DaysOverdue != 3 {
		t.Fatalf("expected 3 days overdue, got: %d", swept.DaysOverdue)
	}

	// 再次扫描不应重复改判
	again, err := custodySvc.SweepOverdue(now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if again.Reclassified != 0 {
		t.Fatalf("expected 0 reclassified on second sweep, got: %+v", again)
	}

	// 逾期记录仍可归还并结算罚金
	returnedAt := now
	returned, err := custodySvc.Return(CustodyReturnInput{
		RecordID:   record.ID,
		Condition:  constants.BarrelConditionGood,
		ReturnedAt: &returnedAt,
		ActorID:    2,
	})
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if returned.Status != constants.CustodyStatusReturned {
		t.Fatalf("expected status returned, got: %s", returned.Status)
	}
	if !returned.PenaltyAmount.Decimal.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected penalty 150.00, got: %s", returned.PenaltyAmount.String())
	}

	fresh, err := barrelSvc.Get(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if fresh.CustodyState != constants.BarrelStateInWarehouse {
		t.Fatalf("expected barrel in_warehouse, got: %s", fresh.CustodyState)
	}
}

func TestCustodyServiceListOverdue(t *testing.T) {
	custodySvc, barrelSvc, _ := setupCustodyServiceTest(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	overdueBarrel := seedCustodyBarrel(t, barrelSvc, "GTX1")
	onTimeBarrel := seedCustodyBarrel(t, barrelSvc, "GTX2")

	pastDue := now.AddDate(0, 0, -2)
	futureDue := now.AddDate(0, 0, 5)
	issuedAt := now.AddDate(0, 0, -10)
	if _, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID: overdueBarrel.ID, HolderName: "佩雷拉", IssuedAt: &issuedAt, ExpectedReturnAt: &pastDue, ActorID: 1,
	}); err != nil {
		t.Fatalf("issue overdue failed: %v", err)
	}
	if _, err := custodySvc.Issue(CustodyIssueInput{
		BarrelID: onTimeBarrel.ID, HolderName: "席尔瓦", IssuedAt: &issuedAt, ExpectedReturnAt: &futureDue, ActorID: 1,
	}); err != nil {
		t.Fatalf("issue on-time failed: %v", err)
	}

	records, total, err := custodySvc.ListOverdue(now, 1, 20)
	if err != nil {
		t.Fatalf("list overdue failed: %v", err)
	}
	if total != 1 || len(records) != 1 {
		t.Fatalf("expected 1 overdue record, got total=%d len=%d", total, len(records))
	}
	if records[0].BarrelID != overdueBarrel.ID {
		t.Fatalf("unexpected overdue barrel: %d", records[0].BarrelID)
	}
}

func TestBarrelServiceRegisterValidatesCode(t *testing.T) {
	_, barrelSvc, _ := setupCustodyServiceTest(t)

	if _, err := barrelSvc.Register(BarrelRegisterInput{Code: "bhfp9"}); err != nil {
		t.Fatalf("expected lowercase code to be normalized, got: %v", err)
	}
	if _, err := barrelSvc.Register(BarrelRegisterInput{Code: "BHFP9"}); !errors.Is(err, ErrBarrelCodeExists) {
		t.Fatalf("expected ErrBarrelCodeExists, got: %v", err)
	}
	if _, err := barrelSvc.Register(BarrelRegisterInput{Code: "9BAD"}); !errors.Is(err, ErrBarrelCodeInvalid) {
		t.Fatalf("expected ErrBarrelCodeInvalid, got: %v", err)
	}
	if _, err := barrelSvc.Register(BarrelRegisterInput{Code: "TOOLONG99"}); !errors.Is(err, ErrBarrelCodeInvalid) {
		t.Fatalf("expected ErrBarrelCodeInvalid for long prefix, got: %v", err)
	}
}
