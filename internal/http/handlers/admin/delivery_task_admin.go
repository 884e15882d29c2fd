package admin

import (
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDeliveryTasks 查询配送任务列表
func (h *Handler) GetDeliveryTasks(c *gin.Context) {
	page, pageSize := parsePagination(c)
	tasks, total, err := h.DeliveryTaskService.List(service.DeliveryTaskListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		TaskNo:   c.Query("task_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "配送任务查询失败", err)
		return
	}
	response.SuccessWithPage(c, tasks, response.NewPagination(page, pageSize, total))
}

// GetDeliveryTask 配送任务详情
func (h *Handler) GetDeliveryTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.DeliveryTaskService.Get(id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, task)
}

// CancelDeliveryTask 取消配送任务
func (h *Handler) CancelDeliveryTask(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.Orchestrator.CancelDeliveryTask(staffID, id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, task)
}

// BulkAdvanceDeliveryTask 逐步推进任务到送达（化验交接场景）
func (h *Handler) BulkAdvanceDeliveryTask(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.Orchestrator.BulkAdvanceDeliveryTask(staffID, id)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, task)
}
