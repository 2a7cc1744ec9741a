package authz

import (
	"fmt"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role         string
	Capabilities []string
}

// BuiltinRoleSeeds 系统预置角色矩阵：每个角色默认只拥有与自身同名的能力
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{Role: constants.RoleJunior, Capabilities: []string{constants.RoleJunior}},
		{Role: constants.RoleSenior, Capabilities: []string{constants.RoleSenior}},
	}
}

// BootstrapBuiltinRoles 初始化预置角色策略，已存在的策略保持不变
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	for _, seed := range BuiltinRoleSeeds() {
		for _, capability := range seed.Capabilities {
			if err := s.GrantCapability(seed.Role, capability); err != nil {
				return fmt.Errorf("bootstrap role %s failed: %w", seed.Role, err)
			}
		}
	}
	return nil
}

// ApplyConfig 写入配置中的额外授权、撤销与继承，重复写入无副作用
func (s *Service) ApplyConfig(cfg config.AuthzConfig) error {
	for _, grant := range cfg.Grants {
		if err := s.GrantCapability(grant.Role, grant.Capability); err != nil {
			return fmt.Errorf("apply grant %s/%s failed: %w", grant.Role, grant.Capability, err)
		}
	}
	for _, revoke := range cfg.Revokes {
		if err := s.RevokeCapability(revoke.Role, revoke.Capability); err != nil {
			return fmt.Errorf("apply revoke %s/%s failed: %w", revoke.Role, revoke.Capability, err)
		}
	}
	for _, inherit := range cfg.Inherits {
		if err := s.InheritRole(inherit.Child, inherit.Parent); err != nil {
			return fmt.Errorf("apply inherit %s<-%s failed: %w", inherit.Child, inherit.Parent, err)
		}
	}
	return nil
}
