package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc, db
}

func TestBuiltinRolesOnlyReachOwnCapability(t *testing.T) {
	svc, _ := setupAuthzServiceTest(t)

	cases := []struct {
		role     string
		required string
		want     bool
	}{
		{constants.RoleJunior, constants.RoleJunior, true},
		{constants.RoleSenior, constants.RoleSenior, true},
		{constants.RoleSenior, constants.RoleJunior, false},
		{constants.RoleJunior, constants.RoleSenior, false},
		{"", constants.RoleJunior, false},
		{"visitor", constants.RoleJunior, false},
	}
	for _, tc := range cases {
		got, err := svc.AllowRole(tc.role, tc.required)
		if err != nil {
			t.Fatalf("allow role %q/%q failed: %v", tc.role, tc.required, err)
		}
		if got != tc.want {
			t.Fatalf("allow role %q for %q want %v got %v", tc.role, tc.required, tc.want, got)
		}
	}
}

func TestGrantCapabilityPersistsAcrossReload(t *testing.T) {
	svc, db := setupAuthzServiceTest(t)
	if err := svc.GrantCapability(constants.RoleSenior, constants.RoleJunior); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	reloaded, err := NewService(db)
	if err != nil {
		t.Fatalf("reload service failed: %v", err)
	}
	allow, err := reloaded.AllowRole(constants.RoleSenior, constants.RoleJunior)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("granted capability should survive reload")
	}

	if err := reloaded.RevokeCapability(constants.RoleSenior, constants.RoleJunior); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, _ = reloaded.AllowRole(constants.RoleSenior, constants.RoleJunior)
	if allow {
		t.Fatalf("revoked capability should be denied")
	}
}

func TestInheritRole(t *testing.T) {
	svc, _ := setupAuthzServiceTest(t)
	if err := svc.InheritRole("moderator", constants.RoleSenior); err != nil {
		t.Fatalf("inherit failed: %v", err)
	}
	allow, err := svc.AllowRole("moderator", constants.RoleSenior)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("moderator should inherit senior")
	}
	if err := svc.InheritRole(constants.RoleJunior, "role:junior"); err == nil {
		t.Fatalf("self inheritance should be rejected")
	}
}

func TestListGrantsSorted(t *testing.T) {
	svc, _ := setupAuthzServiceTest(t)
	grants, err := svc.ListGrants()
	if err != nil {
		t.Fatalf("list grants failed: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("grants want 2 got %d", len(grants))
	}
	if grants[0].Role != constants.RoleJunior || grants[1].Role != constants.RoleSenior {
		t.Fatalf("grants should be sorted by role, got %+v", grants)
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole("  Role:Junior ")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got != "role:junior" {
		t.Fatalf("normalize want role:junior got %s", got)
	}
	if _, err := NormalizeRole("role:"); err == nil {
		t.Fatalf("empty role should fail")
	}
}

func TestApplyConfigGrantsAndCapabilities(t *testing.T) {
	svc, _ := setupAuthzServiceTest(t)

	caps, err := svc.Capabilities(constants.RoleSenior)
	if err != nil {
		t.Fatalf("capabilities failed: %v", err)
	}
	if strings.Join(caps, ",") != constants.RoleSenior {
		t.Fatalf("senior capabilities want senior got %v", caps)
	}

	err = svc.ApplyConfig(config.AuthzConfig{
		Grants:   []config.AuthzGrant{{Role: constants.RoleSenior, Capability: constants.RoleJunior}},
		Inherits: []config.AuthzInherit{{Child: "moderator", Parent: constants.RoleSenior}},
	})
	if err != nil {
		t.Fatalf("apply config failed: %v", err)
	}
	caps, _ = svc.Capabilities(constants.RoleSenior)
	if strings.Join(caps, ",") != "junior,senior" {
		t.Fatalf("granted senior capabilities want junior,senior got %v", caps)
	}
	caps, _ = svc.Capabilities("moderator")
	if strings.Join(caps, ",") != "junior,senior" {
		t.Fatalf("moderator capabilities want junior,senior got %v", caps)
	}

	err = svc.ApplyConfig(config.AuthzConfig{
		Revokes: []config.AuthzGrant{{Role: constants.RoleSenior, Capability: constants.RoleJunior}},
	})
	if err != nil {
		t.Fatalf("apply revoke failed: %v", err)
	}
	caps, _ = svc.Capabilities(constants.RoleSenior)
	if strings.Join(caps, ",") != constants.RoleSenior {
		t.Fatalf("revoked senior capabilities want senior got %v", caps)
	}
	if caps, _ := svc.Capabilities(""); len(caps) != 0 {
		t.Fatalf("empty role should have no capabilities, got %v", caps)
	}
}
