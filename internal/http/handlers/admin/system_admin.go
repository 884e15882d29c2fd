package admin

import (
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StaffCreateRequest 员工创建请求
type StaffCreateRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Contact     string `json:"contact"`
	Role        string `json:"role" binding:"required"`
}

// CustodyPolicyRequest 保管策略更新请求
type CustodyPolicyRequest struct {
	PenaltyRatePerDay string `json:"penalty_rate_per_day" binding:"required"`
	DefaultLoanDays   int    `json:"default_loan_days"`
	Currency          string `json:"currency"`
}

// CreateStaff 创建员工账号
func (h *Handler) CreateStaff(c *gin.Context) {
	var req StaffCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	staff, err := h.StaffService.Create(service.StaffCreateInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Contact:     req.Contact,
		Role:        req.Role,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, staff)
}

// GetStaffByRole 按角色列出员工
func (h *Handler) GetStaffByRole(c *gin.Context) {
	staff, err := h.StaffService.ListByRole(c.Query("role"))
	if err != nil {
		respondError(c, response.CodeInternal, "员工查询失败", err)
		return
	}
	response.Success(c, staff)
}

// GetAuditLogs 查询命令审计日志
func (h *Handler) GetAuditLogs(c *gin.Context) {
	page, pageSize := parsePagination(c)
	logs, total, err := h.AuditService.List(service.AuditListInput{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "审计日志查询失败", err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}

// GetNotifications 查询通知事件
func (h *Handler) GetNotifications(c *gin.Context) {
	page, pageSize := parsePagination(c)
	notifications, total, err := h.NotificationService.List(service.NotificationListInput{
		Page:     page,
		PageSize: pageSize,
		Event:    c.Query("event"),
		BizType:  c.Query("biz_type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "通知事件查询失败", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// GetCustodyPolicy 获取保管策略
func (h *Handler) GetCustodyPolicy(c *gin.Context) {
	policy, err := h.SettingService.GetCustodyPolicy()
	if err != nil {
		respondError(c, response.CodeInternal, "保管策略读取失败", err)
		return
	}
	response.Success(c, policy)
}

// UpdateCustodyPolicy 更新保管策略
func (h *Handler) UpdateCustodyPolicy(c *gin.Context) {
	var req CustodyPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	rate, err := decimal.NewFromString(req.PenaltyRatePerDay)
	if err != nil {
		respondError(c, response.CodeBadRequest, "罚金费率格式无效", err)
		return
	}
	policy, err := h.SettingService.UpdateCustodyPolicy(service.CustodyPolicy{
		PenaltyRatePerDay: rate,
		DefaultLoanDays:   req.DefaultLoanDays,
		Currency:          req.Currency,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "保管策略更新失败", err)
		return
	}
	response.Success(c, policy)
}
