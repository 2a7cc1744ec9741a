package service

import (
	"github.com/campusbooks/internal/constants"
)

// Session 请求级会话，由鉴权中间件解析后显式传入各服务
// Capabilities 由授权策略解析；为 nil 时退回账号角色本身
type Session struct {
	UserID       uint
	Email        string
	Role         string
	Capabilities []string
}

// CapabilityResolver 按角色解析其可用能力
type CapabilityResolver interface {
	Capabilities(role string) ([]string, error)
}

// Authenticated 是否已登录
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// Can 是否拥有指定能力
func (s *Session) Can(capability string) bool {
	if !s.Authenticated() {
		return false
	}
	if s.Capabilities == nil {
		return s.Role == capability
	}
	for _, granted := range s.Capabilities {
		if granted == capability {
			return true
		}
	}
	return false
}

func requireCapability(sess *Session, capability string) error {
	if !sess.Authenticated() {
		return ErrAuthRequired
	}
	if !sess.Can(capability) {
		return ErrRoleDenied
	}
	return nil
}

func requireJunior(sess *Session) error {
	return requireCapability(sess, constants.RoleJunior)
}

func requireSenior(sess *Session) error {
	return requireCapability(sess, constants.RoleSenior)
}
