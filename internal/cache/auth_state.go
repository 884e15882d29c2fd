package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hevea-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// StaffAuthState 员工鉴权快照
// 仅用于服务端 Redis 缓存，避免每个请求重查数据库
type StaffAuthState struct {
	StaffID   uint   `json:"staff_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

func staffAuthStateKey(staffID uint) string {
	return fmt.Sprintf("auth:staff:%d", staffID)
}

// BuildStaffAuthState 从员工模型构建鉴权快照
func BuildStaffAuthState(staff *models.Staff) *StaffAuthState {
	if staff == nil {
		return nil
	}
	return &StaffAuthState{
		StaffID:   staff.ID,
		Username:  staff.Username,
		Role:      staff.Role,
		Status:    staff.Status,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetStaffAuthState 读取员工鉴权快照
func GetStaffAuthState(ctx context.Context, staffID uint) (*StaffAuthState, bool, error) {
	if !Enabled() {
		return nil, false, nil
	}
	var state StaffAuthState
	found, err := GetJSON(ctx, staffAuthStateKey(staffID), &state)
	if err != nil || !found {
		return nil, false, err
	}
	return &state, true, nil
}

// SetStaffAuthState 写入员工鉴权快照
func SetStaffAuthState(ctx context.Context, state *StaffAuthState) error {
	if state == nil {
		return nil
	}
	return SetJSON(ctx, staffAuthStateKey(state.StaffID), state, authStateCacheTTL)
}

// DelStaffAuthState 清除员工鉴权快照（角色或状态变更后调用）
func DelStaffAuthState(ctx context.Context, staffID uint) error {
	return Del(ctx, staffAuthStateKey(staffID))
}
