package service

import (
	"context"
	"errors"
	"testing"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
)

func newTestAuthService(f *serviceFixture) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true}
	return NewAuthService(cfg, f.profileRepo)
}

func TestAuthRegisterLoginAndResolveSession(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	svc := newTestAuthService(f)

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "  Junior@Campus.edu ",
		Password: "reading123",
		FullName: "Asha",
		Role:     "JUNIOR",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.Profile.Email != "junior@campus.edu" || registered.Profile.Role != constants.RoleJunior {
		t.Fatalf("unexpected profile: %+v", registered.Profile)
	}

	loggedIn, err := svc.Login(ctx, "junior@campus.edu", "reading123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	sess, err := svc.ResolveSession(ctx, loggedIn.Token)
	if err != nil {
		t.Fatalf("resolve session failed: %v", err)
	}
	if sess.UserID != registered.Profile.ID || sess.Role != constants.RoleJunior {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := svc.Login(ctx, "junior@campus.edu", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@campus.edu", "reading123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
}

func TestAuthLogoutRevokesToken(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	svc := newTestAuthService(f)

	result, err := svc.Register(ctx, RegisterInput{Email: "senior@campus.edu", Password: "selling123", FullName: "Ravi", Role: "senior"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	sess, err := svc.ResolveSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("resolve session failed: %v", err)
	}
	if err := svc.Logout(ctx, sess); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ResolveSession(ctx, result.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("want ErrTokenRevoked got %v", err)
	}
	if _, err := svc.ResolveSession(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken got %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	svc := newTestAuthService(f)
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@campus.edu", Password: "reading123", FullName: "A", Role: "junior"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{name: "bad email", input: RegisterInput{Email: "nope", Password: "reading123", FullName: "B", Role: "junior"}, want: ErrInvalidEmail},
		{name: "bad role", input: RegisterInput{Email: "b@campus.edu", Password: "reading123", FullName: "B", Role: "admin"}, want: ErrRoleInvalid},
		{name: "no name", input: RegisterInput{Email: "b@campus.edu", Password: "reading123", FullName: " ", Role: "junior"}, want: ErrFullNameEmpty},
		{name: "short password", input: RegisterInput{Email: "b@campus.edu", Password: "ab1", FullName: "B", Role: "junior"}, want: ErrWeakPassword},
		{name: "no number", input: RegisterInput{Email: "b@campus.edu", Password: "readingbooks", FullName: "B", Role: "junior"}, want: ErrWeakPassword},
		{name: "duplicate", input: RegisterInput{Email: "A@campus.edu", Password: "reading123", FullName: "A", Role: "junior"}, want: ErrEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestValidatePasswordKeys(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 6, RequireUpper: true}
	err := validatePassword(policy, "abcdef")
	var policyErr passwordPolicyError
	if !errors.As(err, &policyErr) || policyErr.Key() != "error.password_require_upper" {
		t.Fatalf("want error.password_require_upper got %v", err)
	}
	err = validatePassword(policy, "Ab")
	if !errors.As(err, &policyErr) || policyErr.Key() != "error.password_min_length" || policyErr.Args()[0] != 6 {
		t.Fatalf("want error.password_min_length with arg 6 got %v", err)
	}
	if err := validatePassword(policy, "Abcdef"); err != nil {
		t.Fatalf("want nil got %v", err)
	}
}
