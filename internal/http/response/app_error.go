package response

import (
	"errors"

	"github.com/hevea-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AppError 统一错误包装
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromServiceError 把业务错误翻译成统一响应：
// 冲突提示重取重试，非法流转提示当前状态下不可执行该操作
func FromServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBarrelNotFound),
		errors.Is(err, service.ErrCustodyRecordNotFound),
		errors.Is(err, service.ErrSlotNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrStaffNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, "当前状态已被其他操作更新，请刷新后重试")
	case errors.Is(err, service.ErrIllegalTransition):
		ErrorWithData(c, CodeBadRequest, "该操作在当前状态下已不可执行", nil)
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrStaffDisabled):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrBarrelCodeInvalid),
		errors.Is(err, service.ErrBarrelCodeExists),
		errors.Is(err, service.ErrBarrelAlreadyIssued),
		errors.Is(err, service.ErrBarrelRetired),
		errors.Is(err, service.ErrCustodyNotOpen),
		errors.Is(err, service.ErrCustodyHolderRequired),
		errors.Is(err, service.ErrSlotStatusInvalid),
		errors.Is(err, service.ErrGridNotSeeded),
		errors.Is(err, service.ErrTaskInvalid),
		errors.Is(err, service.ErrRequestInvalid),
		errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrRequestNotApproved):
		BadRequest(c, err.Error())
	default:
		Error(c, CodeInternal, "internal error")
	}
}
