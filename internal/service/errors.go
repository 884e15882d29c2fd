package service

import "errors"

var (
	// ErrBarrelNotFound 桶不存在
	ErrBarrelNotFound = errors.New("barrel not found")
	// ErrBarrelCodeInvalid 桶编号格式不合法
	ErrBarrelCodeInvalid = errors.New("barrel code invalid")
	// ErrBarrelCodeExists 桶编号已存在
	ErrBarrelCodeExists = errors.New("barrel code exists")
	// ErrBarrelAlreadyIssued 桶已借出
	ErrBarrelAlreadyIssued = errors.New("barrel already issued")
	// ErrBarrelRetired 桶已报废
	ErrBarrelRetired = errors.New("barrel retired")

	// ErrCustodyRecordNotFound 保管记录不存在
	ErrCustodyRecordNotFound = errors.New("custody record not found")
	// ErrCustodyNotOpen 保管记录已结清
	ErrCustodyNotOpen = errors.New("custody record not open")
	// ErrCustodyHolderRequired 借用人信息缺失
	ErrCustodyHolderRequired = errors.New("custody holder required")

	// ErrSlotNotFound 吊架槽位不存在
	ErrSlotNotFound = errors.New("hanger slot not found")
	// ErrSlotStatusInvalid 槽位状态不合法
	ErrSlotStatusInvalid = errors.New("hanger slot status invalid")
	// ErrGridNotSeeded 吊架网格尚未初始化
	ErrGridNotSeeded = errors.New("hanger grid not seeded")

	// ErrTaskNotFound 配送任务不存在
	ErrTaskNotFound = errors.New("delivery task not found")
	// ErrTaskInvalid 配送任务参数不合法
	ErrTaskInvalid = errors.New("delivery task invalid")

	// ErrRequestNotFound 售卖请求不存在
	ErrRequestNotFound = errors.New("sell request not found")
	// ErrRequestInvalid 售卖请求参数不合法
	ErrRequestInvalid = errors.New("sell request invalid")
	// ErrRequestNotPending 售卖请求不在待审批状态
	ErrRequestNotPending = errors.New("sell request not pending")
	// ErrRequestNotApproved 售卖请求尚未审批通过
	ErrRequestNotApproved = errors.New("sell request not approved")

	// ErrStaffNotFound 员工不存在
	ErrStaffNotFound = errors.New("staff not found")
	// ErrStaffDisabled 员工已停用
	ErrStaffDisabled = errors.New("staff disabled")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIllegalTransition 状态流转不合法
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrConflict 并发版本冲突
	ErrConflict = errors.New("stale state conflict")
	// ErrUnauthorized 当前角色无权执行该操作
	ErrUnauthorized = errors.New("operation not permitted for role")
)
