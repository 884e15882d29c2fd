package staff

import (
	"strconv"

	handlershared "github.com/hevea-next/internal/http/handlers/shared"
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TaskAdvanceRequest 任务推进请求
type TaskAdvanceRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
}

// TaskBarrelsRequest 任务桶号登记请求
type TaskBarrelsRequest struct {
	BarrelCodes []string `json:"barrel_codes" binding:"required"`
}

// GetMyTasks 查询本人名下的配送任务
func (h *Handler) GetMyTasks(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	tasks, total, err := h.DeliveryTaskService.List(service.DeliveryTaskListInput{
		Page:            page,
		PageSize:        pageSize,
		Status:          c.Query("status"),
		AssigneeStaffID: staffID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "任务查询失败", err)
		return
	}
	response.SuccessWithPage(c, tasks, response.NewPagination(page, pageSize, total))
}

// GetMyTask 查询本人任务详情
func (h *Handler) GetMyTask(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.DeliveryTaskService.Get(id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	if task.AssigneeStaffID != staffID {
		response.Forbidden(c, "该任务不属于当前员工")
		return
	}
	response.Success(c, task)
}

// AdvanceMyTask 推进本人任务状态（严格单步或取消）
func (h *Handler) AdvanceMyTask(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TaskAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	task, err := h.Orchestrator.AdvanceDeliveryTask(staffID, id, req.TargetStatus)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, task)
}

// RecordMyTaskBarrels 登记本人任务经手桶号
func (h *Handler) RecordMyTaskBarrels(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TaskBarrelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	task, err := h.Orchestrator.RecordTaskBarrels(staffID, id, req.BarrelCodes)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, task)
}
