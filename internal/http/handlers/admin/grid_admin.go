package admin

import (
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SlotSetStatusRequest 格位状态设置请求
type SlotSetStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Label  string `json:"label"`
}

// BulkSetStatusRequest 批量格位状态设置请求
type BulkSetStatusRequest struct {
	SlotIDs []uint `json:"slot_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Label   string `json:"label"`
}

// SeedGrid 初始化挂架网格
func (h *Handler) SeedGrid(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	created, err := h.Orchestrator.SeedGrid(staffID)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"created": created})
}

// GetGrid 获取整个网格
func (h *Handler) GetGrid(c *gin.Context) {
	slots, err := h.HangerGridService.ListAll()
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, slots)
}

// SetSlotStatus 设置格位状态
func (h *Handler) SetSlotStatus(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SlotSetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	slot, err := h.Orchestrator.SetSlotStatus(staffID, service.SlotSetStatusInput{
		SlotID: id,
		Status: req.Status,
		Label:  req.Label,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, slot)
}

// BulkSetSlotStatus 批量设置格位状态：返回结构化的成功数与逐项失败原因
func (h *Handler) BulkSetSlotStatus(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req BulkSetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	result, err := h.Orchestrator.BulkSetSlotStatus(staffID, service.BulkSetStatusInput{
		SlotIDs: req.SlotIDs,
		Status:  req.Status,
		Label:   req.Label,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// GetSlotAudit 查询格位状态变更审计
func (h *Handler) GetSlotAudit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	entries, total, err := h.HangerGridService.ListAudit(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "格位审计查询失败", err)
		return
	}
	response.SuccessWithPage(c, entries, response.NewPagination(page, pageSize, total))
}
