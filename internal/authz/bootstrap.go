package authz

import (
	"fmt"

	"github.com/hevea-next/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵：命令级授权，管理员全量放行
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
		{
			Role: constants.RoleManager,
			Policies: []Policy{
				{Object: "/barrel/*", Action: "execute"},
				{Object: "/custody/*", Action: "execute"},
				{Object: "/slot/*", Action: "execute"},
				{Object: "/sell_request/*", Action: "execute"},
				{Object: "/delivery_task/create", Action: "execute"},
				{Object: "/delivery_task/cancel", Action: "execute"},
				{Object: "/setting/update", Action: "execute"},
			},
		},
		{
			Role: constants.RoleDelivery,
			Policies: []Policy{
				{Object: "/delivery_task/advance", Action: "execute"},
				{Object: "/delivery_task/record_barrels", Action: "execute"},
			},
		},
		{
			Role: constants.RoleLab,
			Policies: []Policy{
				{Object: "/delivery_task/advance", Action: "execute"},
				{Object: "/sell_request/advance", Action: "execute"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		subject := SubjectForRole(seed.Role)
		for _, policy := range seed.Policies {
			added, err := s.enforcer.AddPolicy(subject, policy.Object, policy.Action)
			if err != nil {
				return fmt.Errorf("seed builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		if err := s.enforcer.SavePolicy(); err != nil {
			return fmt.Errorf("save builtin policy failed: %w", err)
		}
		return s.enforcer.LoadPolicy()
	}
	return nil
}

// AssignStaffRole 绑定员工到角色
func (s *Service) AssignStaffRole(staffID uint, role string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	_, err := s.enforcer.AddNamedGroupingPolicy("g", SubjectForStaff(staffID), SubjectForRole(role))
	if err != nil {
		return fmt.Errorf("assign staff role failed: %w", err)
	}
	return nil
}
