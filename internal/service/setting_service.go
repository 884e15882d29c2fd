package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CustodyPolicy 保管策略（罚金费率等），存库可改，缺省取配置
type CustodyPolicy struct {
	PenaltyRatePerDay decimal.Decimal `json:"penalty_rate_per_day"`
	DefaultLoanDays   int             `json:"default_loan_days"`
	Currency          string          `json:"currency"`
}

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	defaults config.CustodyConfig
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, defaults config.CustodyConfig) *SettingService {
	return &SettingService{repo: repo, defaults: defaults}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, models.JSON(value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetCustodyPolicy 获取保管策略（库里缺失的字段回落到配置默认值）
func (s *SettingService) GetCustodyPolicy() (CustodyPolicy, error) {
	policy := s.defaultPolicy()
	if s == nil || s.repo == nil {
		return policy, nil
	}
	value, err := s.GetByKey(constants.SettingKeyCustodyPolicy)
	if err != nil {
		return policy, err
	}
	if value == nil {
		return policy, nil
	}
	if raw, ok := value[constants.SettingFieldPenaltyRatePerDay]; ok {
		if rate, err := parseSettingDecimal(raw); err == nil && rate.GreaterThanOrEqual(decimal.Zero) {
			policy.PenaltyRatePerDay = rate
		}
	}
	if raw, ok := value[constants.SettingFieldDefaultLoanDays]; ok {
		if days, err := parseSettingInt(raw); err == nil && days > 0 {
			policy.DefaultLoanDays = days
		}
	}
	if raw, ok := value[constants.SettingFieldCurrency]; ok {
		if currency, ok := raw.(string); ok && strings.TrimSpace(currency) != "" {
			policy.Currency = strings.ToUpper(strings.TrimSpace(currency))
		}
	}
	return policy, nil
}

// UpdateCustodyPolicy 更新保管策略
func (s *SettingService) UpdateCustodyPolicy(policy CustodyPolicy) (CustodyPolicy, error) {
	if policy.PenaltyRatePerDay.LessThan(decimal.Zero) {
		return CustodyPolicy{}, fmt.Errorf("penalty rate must not be negative")
	}
	if policy.DefaultLoanDays <= 0 {
		policy.DefaultLoanDays = s.defaultPolicy().DefaultLoanDays
	}
	currency := strings.ToUpper(strings.TrimSpace(policy.Currency))
	if currency == "" {
		currency = s.defaultPolicy().Currency
	}
	value := map[string]interface{}{
		constants.SettingFieldPenaltyRatePerDay: policy.PenaltyRatePerDay.Round(2).StringFixed(2),
		constants.SettingFieldDefaultLoanDays:   policy.DefaultLoanDays,
		constants.SettingFieldCurrency:          currency,
	}
	if _, err := s.Update(constants.SettingKeyCustodyPolicy, value); err != nil {
		return CustodyPolicy{}, err
	}
	return s.GetCustodyPolicy()
}

func (s *SettingService) defaultPolicy() CustodyPolicy {
	policy := CustodyPolicy{
		PenaltyRatePerDay: decimal.NewFromInt(50),
		DefaultLoanDays:   14,
		Currency:          constants.SiteCurrencyDefault,
	}
	if s == nil {
		return policy
	}
	if rate, err := decimal.NewFromString(strings.TrimSpace(s.defaults.PenaltyRatePerDay)); err == nil && rate.GreaterThanOrEqual(decimal.Zero) {
		policy.PenaltyRatePerDay = rate
	}
	if s.defaults.DefaultLoanDays > 0 {
		policy.DefaultLoanDays = s.defaults.DefaultLoanDays
	}
	if strings.TrimSpace(s.defaults.Currency) != "" {
		policy.Currency = strings.ToUpper(strings.TrimSpace(s.defaults.Currency))
	}
	return policy
}

func parseSettingDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported decimal value: %v", raw)
	}
}

func parseSettingInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported int value: %v", raw)
	}
}
