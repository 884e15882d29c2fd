package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/repository"

	"github.com/google/uuid"
)

// taskStatusSequence 配送任务的严格有序状态链，禁止跳步
var taskStatusSequence = []string{
	constants.TaskStatusPickupScheduled,
	constants.TaskStatusEnroutePickup,
	constants.TaskStatusPickedUp,
	constants.TaskStatusEnrouteDrop,
	constants.TaskStatusDelivered,
}

// DeliveryTaskService 配送任务服务：单人单趟取送行程的状态机
type DeliveryTaskService struct {
	repo repository.DeliveryTaskRepository
}

// DeliveryTaskCreateInput 配送任务创建输入
type DeliveryTaskCreateInput struct {
	AssigneeStaffID uint
	CustomerName    string
	CustomerContact string
	PickupAddress   string
	DropAddress     string
	GPSLat          *float64
	GPSLng          *float64
	SellRequestID   *uint
}

// DeliveryTaskListInput 配送任务查询输入
type DeliveryTaskListInput struct {
	Page            int
	PageSize        int
	Status          string
	TaskNo          string
	AssigneeStaffID uint
}

// NewDeliveryTaskService 创建配送任务服务
func NewDeliveryTaskService(repo repository.DeliveryTaskRepository) *DeliveryTaskService {
	return &DeliveryTaskService{repo: repo}
}

// Create 创建配送任务，初始状态为待取货
func (s *DeliveryTaskService) Create(input DeliveryTaskCreateInput) (*models.DeliveryTask, error) {
	if input.AssigneeStaffID == 0 {
		return nil, ErrTaskInvalid
	}
	pickupAddress := strings.TrimSpace(input.PickupAddress)
	if pickupAddress == "" {
		return nil, ErrTaskInvalid
	}
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, ErrTaskInvalid
	}
	task := &models.DeliveryTask{
		TaskNo:          generateTaskNo(),
		AssigneeStaffID: input.AssigneeStaffID,
		CustomerName:    customerName,
		CustomerContact: strings.TrimSpace(input.CustomerContact),
		PickupAddress:   pickupAddress,
		DropAddress:     strings.TrimSpace(input.DropAddress),
		GPSLat:          input.GPSLat,
		GPSLng:          input.GPSLng,
		Status:          constants.TaskStatusPickupScheduled,
		Meta: models.TaskMeta{
			Version:       models.TaskMetaVersion,
			SellRequestID: input.SellRequestID,
		},
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Advance 单步推进任务状态：目标必须恰好是当前状态的直接后继，或为取消
func (s *DeliveryTaskService) Advance(taskID uint, requestedStatus string, actorID uint) (*models.DeliveryTask, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	requested := strings.ToLower(strings.TrimSpace(requestedStatus))
	if requested == constants.TaskStatusCancelled {
		return s.Cancel(taskID, actorID)
	}
	if isTerminalTaskStatus(task.Status) {
		return nil, ErrIllegalTransition
	}
	next := nextTaskStatus(task.Status)
	if next == "" || requested != next {
		return nil, ErrIllegalTransition
	}

	expected := task.Status
	updates := map[string]interface{}{}
	if requested == constants.TaskStatusDelivered {
		updates["delivered_at"] = time.Now()
	}
	ok, err := s.repo.UpdateStatusCAS(task.ID, expected, requested, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.Get(task.ID)
}

// BulkAdvanceToTerminal 逐步推进到送达：每一步的副作用都照常触发；
// 中途失败即停，任务停留在最后成功到达的状态
func (s *DeliveryTaskService) BulkAdvanceToTerminal(taskID uint, actorID uint) (*models.DeliveryTask, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	for {
		if task.Status == constants.TaskStatusDelivered {
			return task, nil
		}
		next := nextTaskStatus(task.Status)
		if next == "" {
			return task, ErrIllegalTransition
		}
		advanced, err := s.Advance(task.ID, next, actorID)
		if err != nil {
			return task, err
		}
		task = advanced
	}
}

// Cancel 取消任务：送达前任意状态可取消；已发生的保管变更不自动回滚
func (s *DeliveryTaskService) Cancel(taskID uint, actorID uint) (*models.DeliveryTask, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	if isTerminalTaskStatus(task.Status) {
		return nil, ErrIllegalTransition
	}
	ok, err := s.repo.UpdateStatusCAS(task.ID, task.Status, constants.TaskStatusCancelled, map[string]interface{}{
		"cancelled_at": time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.Get(task.ID)
}

// RecordBarrels 登记本趟实际经手的桶号（整体替换），不改变任务状态
func (s *DeliveryTaskService) RecordBarrels(taskID uint, barrelCodes []string) (*models.DeliveryTask, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	normalized := make([]string, 0, len(barrelCodes))
	for _, code := range barrelCodes {
		c := strings.ToUpper(strings.TrimSpace(code))
		if !models.IsValidBarrelCode(c) {
			return nil, ErrBarrelCodeInvalid
		}
		normalized = append(normalized, c)
	}
	meta := task.Meta
	meta.Version = models.TaskMetaVersion
	meta.BarrelCodes = normalized
	if err := s.repo.UpdateMeta(task.ID, meta); err != nil {
		return nil, err
	}
	return s.Get(task.ID)
}

// Get 获取配送任务
func (s *DeliveryTaskService) Get(id uint) (*models.DeliveryTask, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// List 查询配送任务列表
func (s *DeliveryTaskService) List(input DeliveryTaskListInput) ([]models.DeliveryTask, int64, error) {
	filter := repository.DeliveryTaskListFilter{
		Page:            input.Page,
		PageSize:        input.PageSize,
		Status:          input.Status,
		TaskNo:          input.TaskNo,
		AssigneeStaffID: input.AssigneeStaffID,
	}
	return s.repo.List(filter)
}

// nextTaskStatus 返回有序状态链中的直接后继，终态返回空串
func nextTaskStatus(current string) string {
	for i, status := range taskStatusSequence {
		if status == current && i+1 < len(taskStatusSequence) {
			return taskStatusSequence[i+1]
		}
	}
	return ""
}

func isTerminalTaskStatus(status string) bool {
	return status == constants.TaskStatusDelivered || status == constants.TaskStatusCancelled
}

func generateTaskNo() string {
	return fmt.Sprintf("DT-%s", strings.ToUpper(uuid.NewString()[:8]))
}
