package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupBarrelRepositoryTest(t *testing.T) (*GormBarrelRepository, *GormCustodyRecordRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:barrel_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Barrel{}, &models.CustodyRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewBarrelRepository(db), NewCustodyRecordRepository(db), db
}

func TestBarrelRepositoryUpdateCustodyStateCAS(t *testing.T) {
	repo, _, _ := setupBarrelRepositoryTest(t)

	barrel := &models.Barrel{Code: "BHFP1", CustodyState: constants.BarrelStateInWarehouse}
	if err := repo.Create(barrel); err != nil {
		t.Fatalf("create barrel failed: %v", err)
	}

	ok, err := repo.UpdateCustodyStateCAS(barrel.ID, constants.BarrelStateInWarehouse, constants.BarrelStateIssued, nil)
	if err != nil {
		t.Fatalf("cas update failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected cas update to succeed")
	}

	// 期望状态已过时，第二次 CAS 必须落空
	ok, err = repo.UpdateCustodyStateCAS(barrel.ID, constants.BarrelStateInWarehouse, constants.BarrelStateIssued, nil)
	if err != nil {
		t.Fatalf("stale cas failed: %v", err)
	}
	if ok {
		t.Fatalf("expected stale cas to report zero rows")
	}

	fresh, err := repo.GetByID(barrel.ID)
	if err != nil {
		t.Fatalf("get barrel failed: %v", err)
	}
	if fresh.CustodyState != constants.BarrelStateIssued {
		t.Fatalf("expected issued_to_customer, got: %s", fresh.CustodyState)
	}
}

func TestCustodyRecordRepositoryOpenLookup(t *testing.T) {
	repo, custodyRepo, _ := setupBarrelRepositoryTest(t)

	barrel := &models.Barrel{Code: "BHFP2", CustodyState: constants.BarrelStateInWarehouse}
	if err := repo.Create(barrel); err != nil {
		t.Fatalf("create barrel failed: %v", err)
	}

	open, err := custodyRepo.GetOpenByBarrelID(barrel.ID)
	if err != nil {
		t.Fatalf("open lookup failed: %v", err)
	}
	if open != nil {
		t.Fatalf("expected no open record, got: %+v", open)
	}

	now := time.Now()
	record := &models.CustodyRecord{
		BarrelID:         barrel.ID,
		HolderName:       "佩雷拉",
		IssuedAt:         now,
		ExpectedReturnAt: now.AddDate(0, 0, 14),
		Status:           constants.CustodyStatusIssued,
		IssuedByID:       1,
	}
	if err := custodyRepo.Create(record); err != nil {
		t.Fatalf("create record failed: %v", err)
	}

	open, err = custodyRepo.GetOpenByBarrelID(barrel.ID)
	if err != nil {
		t.Fatalf("open lookup failed: %v", err)
	}
	if open == nil || open.ID != record.ID {
		t.Fatalf("expected open record %d, got: %+v", record.ID, open)
	}

	// 逾期改判后记录仍是未结清
	if _, err := custodyRepo.UpdateStatusCAS(record.ID, constants.CustodyStatusIssued, constants.CustodyStatusOverdue, nil); err != nil {
		t.Fatalf("cas to overdue failed: %v", err)
	}
	open, err = custodyRepo.GetOpenByBarrelID(barrel.ID)
	if err != nil {
		t.Fatalf("open lookup failed: %v", err)
	}
	if open == nil {
		t.Fatalf("expected overdue record to stay open")
	}

	// 归还后不再是未结清
	returnedAt := now.Add(time.Hour)
	if _, err := custodyRepo.UpdateStatusCAS(record.ID, constants.CustodyStatusOverdue, constants.CustodyStatusReturned, map[string]interface{}{
		"returned_at": returnedAt,
	}); err != nil {
		t.Fatalf("cas to returned failed: %v", err)
	}
	open, err = custodyRepo.GetOpenByBarrelID(barrel.ID)
	if err != nil {
		t.Fatalf("open lookup failed: %v", err)
	}
	if open != nil {
		t.Fatalf("expected no open record after return, got: %+v", open)
	}
}

func TestCustodyRecordRepositoryOverdueCursor(t *testing.T) {
	repo, custodyRepo, _ := setupBarrelRepositoryTest(t)

	now := time.Now()
	for i := 1; i <= 5; i++ {
		barrel := &models.Barrel{Code: fmt.Sprintf("GTX%d", i), CustodyState: constants.BarrelStateIssued}
		if err := repo.Create(barrel); err != nil {
			t.Fatalf("create barrel failed: %v", err)
		}
		record := &models.CustodyRecord{
			BarrelID:         barrel.ID,
			HolderName:       "席尔瓦",
			IssuedAt:         now.AddDate(0, 0, -20),
			ExpectedReturnAt: now.AddDate(0, 0, -i),
			Status:           constants.CustodyStatusIssued,
			IssuedByID:       1,
		}
		if err := custodyRepo.Create(record); err != nil {
			t.Fatalf("create record failed: %v", err)
		}
	}

	// 游标分批：两批读完全部候选
	first, err := custodyRepo.ListOverdueCandidates(now, 3, 0)
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 candidates, got: %d", len(first))
	}
	second, err := custodyRepo.ListOverdueCandidates(now, 3, first[len(first)-1].ID)
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 candidates, got: %d", len(second))
	}
}
