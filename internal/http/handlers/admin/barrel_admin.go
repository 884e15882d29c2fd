package admin

import (
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// BarrelRegisterRequest 料桶登记请求
type BarrelRegisterRequest struct {
	Code   string `json:"code" binding:"required"`
	SlotID *uint  `json:"slot_id"`
}

// RegisterBarrel 登记料桶
func (h *Handler) RegisterBarrel(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req BarrelRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	barrel, err := h.Orchestrator.RegisterBarrel(staffID, service.BarrelRegisterInput{
		Code:   req.Code,
		SlotID: req.SlotID,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, barrel)
}

// GetBarrels 查询料桶列表
func (h *Handler) GetBarrels(c *gin.Context) {
	page, pageSize := parsePagination(c)
	barrels, total, err := h.BarrelService.List(service.BarrelListInput{
		Page:         page,
		PageSize:     pageSize,
		Code:         c.Query("code"),
		CustodyState: c.Query("custody_state"),
		WithRetired:  c.Query("with_retired") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "料桶列表查询失败", err)
		return
	}
	response.SuccessWithPage(c, barrels, response.NewPagination(page, pageSize, total))
}

// GetBarrel 料桶详情
func (h *Handler) GetBarrel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	barrel, err := h.BarrelService.Get(id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, barrel)
}

// RetireBarrel 退役料桶
func (h *Handler) RetireBarrel(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	barrel, err := h.Orchestrator.RetireBarrel(staffID, id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, barrel)
}
