package admin

import (
	"time"

	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CustodyIssueRequest 借出请求
type CustodyIssueRequest struct {
	BarrelID         uint       `json:"barrel_id" binding:"required"`
	HolderName       string     `json:"holder_name" binding:"required"`
	HolderContact    string     `json:"holder_contact"`
	ExpectedReturnAt *time.Time `json:"expected_return_at"`
}

// CustodyReturnRequest 归还请求
type CustodyReturnRequest struct {
	Condition  string     `json:"condition" binding:"required"`
	Notes      string     `json:"notes"`
	ReturnedAt *time.Time `json:"returned_at"`
}

// IssueBarrel 借出料桶
func (h *Handler) IssueBarrel(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req CustodyIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	record, err := h.Orchestrator.IssueBarrel(staffID, service.CustodyIssueInput{
		BarrelID:         req.BarrelID,
		HolderName:       req.HolderName,
		HolderContact:    req.HolderContact,
		ExpectedReturnAt: req.ExpectedReturnAt,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, record)
}

// ReturnBarrel 归还料桶
func (h *Handler) ReturnBarrel(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CustodyReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	record, err := h.Orchestrator.ReturnBarrel(staffID, service.CustodyReturnInput{
		RecordID:   id,
		Condition:  req.Condition,
		Notes:      req.Notes,
		ReturnedAt: req.ReturnedAt,
	})
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, record)
}

// GetCustodyRecords 查询台账记录
func (h *Handler) GetCustodyRecords(c *gin.Context) {
	page, pageSize := parsePagination(c)
	records, total, err := h.CustodyService.List(service.CustodyListInput{
		Page:       page,
		PageSize:   pageSize,
		Status:     c.Query("status"),
		HolderName: c.Query("holder_name"),
		OnlyOpen:   c.Query("only_open") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "台账查询失败", err)
		return
	}
	response.SuccessWithPage(c, records, response.NewPagination(page, pageSize, total))
}

// GetOverdueCustodyRecords 查询逾期台账记录
func (h *Handler) GetOverdueCustodyRecords(c *gin.Context) {
	page, pageSize := parsePagination(c)
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "as_of 时间格式无效", err)
			return
		}
		asOf = parsed
	}
	records, total, err := h.CustodyService.ListOverdue(asOf, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "逾期台账查询失败", err)
		return
	}
	response.SuccessWithPage(c, records, response.NewPagination(page, pageSize, total))
}

// TriggerCustodySweep 手动触发逾期扫描
func (h *Handler) TriggerCustodySweep(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	result, err := h.Orchestrator.SweepCustodyOverdue(staffID, time.Now())
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, result)
}
