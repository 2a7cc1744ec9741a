package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

// 主体为角色（role:junior），客体为能力名；同名能力即角色自身的入口
// 额外授权（如允许 senior 购买）与角色继承都以策略数据表达
const defaultCapabilityModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && r.obj == p.obj
`

// Grant 角色能力授权
type Grant struct {
	Role       string `json:"role"`
	Capability string `json:"capability"`
}

// Service Casbin 授权服务
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务，策略持久化在 casbin_rule 表
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultCapabilityModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

// AllowRole 判断持有 role 的用户能否进入要求 required 能力的入口
func (s *Service) AllowRole(role, required string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, nil
	}
	capability := NormalizeCapability(required)
	if capability == "" {
		return false, fmt.Errorf("capability is required")
	}
	return s.enforcer.Enforce(subject, capability)
}

// Capabilities 角色可用的全部能力（含授权与继承所得），按能力名排序
func (s *Service) Capabilities(role string) ([]string, error) {
	capabilities := make([]string, 0, 2)
	for _, seed := range BuiltinRoleSeeds() {
		allowed, err := s.AllowRole(role, seed.Role)
		if err != nil {
			return nil, err
		}
		if allowed {
			capabilities = append(capabilities, seed.Role)
		}
	}
	sort.Strings(capabilities)
	return capabilities, nil
}

// GrantCapability 为角色授予能力
func (s *Service) GrantCapability(role, capability string) error {
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalized := NormalizeCapability(capability)
	if normalized == "" {
		return fmt.Errorf("capability is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	if _, err := s.enforcer.AddPolicy(subject, normalized); err != nil {
		return fmt.Errorf("grant capability failed: %w", err)
	}
	return nil
}

// RevokeCapability 撤销角色能力
func (s *Service) RevokeCapability(role, capability string) error {
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	if _, err := s.enforcer.RemovePolicy(subject, NormalizeCapability(capability)); err != nil {
		return fmt.Errorf("revoke capability failed: %w", err)
	}
	return nil
}

// InheritRole 让 child 继承 parent 的全部能力
func (s *Service) InheritRole(child, parent string) error {
	childRole, err := NormalizeRole(child)
	if err != nil {
		return err
	}
	parentRole, err := NormalizeRole(parent)
	if err != nil {
		return err
	}
	if childRole == parentRole {
		return fmt.Errorf("role cannot inherit itself")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", childRole, parentRole); err != nil {
		return fmt.Errorf("link role inheritance failed: %w", err)
	}
	return nil
}

// ListGrants 列出全部直接授权
func (s *Service) ListGrants() ([]Grant, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredPolicy(0)
	if err != nil {
		return nil, fmt.Errorf("list grants failed: %w", err)
	}
	grants := make([]Grant, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 2 {
			continue
		}
		grants = append(grants, Grant{
			Role:       strings.TrimPrefix(strings.TrimSpace(rule[0]), rolePrefix),
			Capability: NormalizeCapability(rule[1]),
		})
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].Role == grants[j].Role {
			return grants[i].Capability < grants[j].Capability
		}
		return grants[i].Role < grants[j].Role
	})
	return grants, nil
}

// NormalizeRole 统一角色主体名称
func NormalizeRole(role string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	normalized = strings.TrimPrefix(normalized, rolePrefix)
	if normalized == "" {
		return "", fmt.Errorf("role is required")
	}
	return rolePrefix + strings.ReplaceAll(normalized, " ", "_"), nil
}

// NormalizeCapability 统一能力名称
func NormalizeCapability(capability string) string {
	normalized := strings.ToLower(strings.TrimSpace(capability))
	return strings.TrimPrefix(normalized, rolePrefix)
}
