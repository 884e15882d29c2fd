package admin

import (
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SellRequestCreateRequest 出售申请录入请求
type SellRequestCreateRequest struct {
	RequestType     string `json:"request_type" binding:"required"`
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerContact string `json:"customer_contact"`
	BarrelCount     int    `json:"barrel_count"`
	PickupLocation  string `json:"pickup_location"`
}

// SellRequestRejectRequest 驳回请求
type SellRequestRejectRequest struct {
	Reason string `json:"reason"`
}

// SellRequestAssignRequest 指派配送请求
type SellRequestAssignRequest struct {
	StaffID uint `json:"staff_id" binding:"required"`
}

// SellRequestAdvanceRequest 推进请求
type SellRequestAdvanceRequest struct {
	TargetStatus     string        `json:"target_status" binding:"required"`
	MeasuredQuantity *models.Money `json:"measured_quantity"`
}

// CreateSellRequest 录入出售申请
func (h *Handler) CreateSellRequest(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req SellRequestCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	request, err := h.Orchestrator.CreateSellRequest(staffID, service.SellRequestCreateInput{
		RequestType:     req.RequestType,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		BarrelCount:     req.BarrelCount,
		PickupLocation:  req.PickupLocation,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// GetSellRequests 查询出售申请列表
func (h *Handler) GetSellRequests(c *gin.Context) {
	page, pageSize := parsePagination(c)
	requests, total, err := h.SellRequestService.List(service.SellRequestListInput{
		Page:        page,
		PageSize:    pageSize,
		Status:      c.Query("status"),
		RequestType: c.Query("request_type"),
		RequestNo:   c.Query("request_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "出售申请查询失败", err)
		return
	}
	response.SuccessWithPage(c, requests, response.NewPagination(page, pageSize, total))
}

// GetSellRequest 出售申请详情
func (h *Handler) GetSellRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	request, err := h.SellRequestService.Get(id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// ApproveSellRequest 审批通过
func (h *Handler) ApproveSellRequest(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	request, err := h.Orchestrator.ApproveSellRequest(staffID, id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// RejectSellRequest 驳回申请
func (h *Handler) RejectSellRequest(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SellRequestRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	request, err := h.Orchestrator.RejectSellRequest(staffID, id, req.Reason)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// AssignSellRequestDelivery 指派配送：创建任务并过户申请
func (h *Handler) AssignSellRequestDelivery(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SellRequestAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	request, task, err := h.Orchestrator.AssignDelivery(staffID, id, req.StaffID)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"request": request, "task": task})
}

// AdvanceSellRequest 推进申请状态（严格单步）
func (h *Handler) AdvanceSellRequest(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SellRequestAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	request, err := h.Orchestrator.AdvanceSellRequest(staffID, id, req.TargetStatus, req.MeasuredQuantity)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, request)
}
