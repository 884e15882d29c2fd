package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) *SettingService {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewSettingService(repository.NewSettingRepository(db), config.CustodyConfig{
		PenaltyRatePerDay: "50.00",
		DefaultLoanDays:   14,
		Currency:          "LKR",
	})
}

func TestSettingServiceCustodyPolicyDefaults(t *testing.T) {
	svc := setupSettingServiceTest(t)

	policy, err := svc.GetCustodyPolicy()
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if !policy.PenaltyRatePerDay.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected default rate 50.00, got: %s", policy.PenaltyRatePerDay.String())
	}
	if policy.DefaultLoanDays != 14 {
		t.Fatalf("expected default loan days 14, got: %d", policy.DefaultLoanDays)
	}
	if policy.Currency != "LKR" {
		t.Fatalf("expected currency LKR, got: %s", policy.Currency)
	}
}

func TestSettingServiceCustodyPolicyUpdate(t *testing.T) {
	svc := setupSettingServiceTest(t)

	updated, err := svc.UpdateCustodyPolicy(CustodyPolicy{
		PenaltyRatePerDay: decimal.RequireFromString("75.50"),
		DefaultLoanDays:   21,
		Currency:          "lkr",
	})
	if err != nil {
		t.Fatalf("update policy failed: %v", err)
	}
	if !updated.PenaltyRatePerDay.Equal(decimal.RequireFromString("75.50")) {
		t.Fatalf("expected rate 75.50, got: %s", updated.PenaltyRatePerDay.String())
	}
	if updated.DefaultLoanDays != 21 {
		t.Fatalf("expected loan days 21, got: %d", updated.DefaultLoanDays)
	}
	if updated.Currency != "LKR" {
		t.Fatalf("expected normalized currency LKR, got: %s", updated.Currency)
	}

	// 重读仍然是更新后的值
	fresh, err := svc.GetCustodyPolicy()
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if !fresh.PenaltyRatePerDay.Equal(decimal.RequireFromString("75.50")) {
		t.Fatalf("expected persisted rate 75.50, got: %s", fresh.PenaltyRatePerDay.String())
	}

	if _, err := svc.UpdateCustodyPolicy(CustodyPolicy{
		PenaltyRatePerDay: decimal.RequireFromString("-1"),
	}); err == nil {
		t.Fatalf("expected negative rate to be rejected")
	}
}

func TestSettingServicePartialPolicyFallsBack(t *testing.T) {
	svc := setupSettingServiceTest(t)

	// 只存了费率，其余字段回落默认
	if _, err := svc.Update("custody_policy", map[string]interface{}{
		"penalty_rate_per_day": "60.00",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	policy, err := svc.GetCustodyPolicy()
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if !policy.PenaltyRatePerDay.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected rate 60.00, got: %s", policy.PenaltyRatePerDay.String())
	}
	if policy.DefaultLoanDays != 14 || policy.Currency != "LKR" {
		t.Fatalf("expected fallback defaults, got: %+v", policy)
	}
}
