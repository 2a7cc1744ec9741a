package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/campusbooks/internal/cache"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTExpireHours = 72

// AuthService 注册、登录与令牌
type AuthService struct {
	cfg          *config.Config
	profileRepo  repository.ProfileRepository
	capabilities CapabilityResolver
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, profileRepo repository.ProfileRepository) *AuthService {
	return &AuthService{cfg: cfg, profileRepo: profileRepo}
}

// WithCapabilityResolver 设置会话能力解析
func (s *AuthService) WithCapabilityResolver(resolver CapabilityResolver) *AuthService {
	s.capabilities = resolver
	return s
}

// JWTClaims 令牌声明
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
	Phone    string
}

// AuthResult 登录或注册成功后的令牌
type AuthResult struct {
	Profile   *models.Profile
	Token     string
	ExpiresAt time.Time
}

// Register 注册，角色在注册时确定且之后不可修改
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if !isValidRole(role) {
		return nil, ErrRoleInvalid
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrFullNameEmpty
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     fullName,
		Role:         role,
		Phone:        strings.TrimSpace(input.Phone),
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}
	logger.Infow("profile_registered", "user_id", profile.ID, "role", profile.Role)
	return s.issue(ctx, profile)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	profile, err := s.profileRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.profileRepo.TouchLogin(profile.ID); err != nil {
		logger.Warnw("profile_touch_login_failed", "user_id", profile.ID, "error", err)
	}
	return s.issue(ctx, profile)
}

// Logout 提升令牌版本，使已签发的令牌全部失效
func (s *AuthService) Logout(ctx context.Context, sess *Session) error {
	if !sess.Authenticated() {
		return ErrAuthRequired
	}
	if _, err := s.profileRepo.BumpTokenVersion(sess.UserID); err != nil {
		return err
	}
	if err := cache.DelProfileAuthState(ctx, sess.UserID); err != nil {
		logger.Warnw("auth_state_cache_delete_failed", "user_id", sess.UserID, "error", err)
	}
	return nil
}

// GenerateJWT 签发令牌
func (s *AuthService) GenerateJWT(profile *models.Profile) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = defaultJWTExpireHours
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := JWTClaims{
		UserID:       profile.ID,
		Email:        profile.Email,
		Role:         profile.Role,
		TokenVersion: profile.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseJWT 解析令牌
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveSession 校验令牌并还原会话
// 先查鉴权快照缓存，未命中再回源数据库并回填
func (s *AuthService) ResolveSession(ctx context.Context, tokenString string) (*Session, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return nil, err
	}

	if cached, hit, cacheErr := cache.GetProfileAuthState(ctx, claims.UserID); cacheErr == nil && hit && cached != nil {
		if cached.TokenVersion != claims.TokenVersion {
			return nil, ErrTokenRevoked
		}
		return s.attachCapabilities(&Session{UserID: claims.UserID, Email: claims.Email, Role: cached.Role}), nil
	}

	profile, err := s.profileRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidToken
	}
	if profile.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	_ = cache.SetProfileAuthState(ctx, cache.BuildProfileAuthState(profile))
	return s.attachCapabilities(&Session{UserID: profile.ID, Email: profile.Email, Role: profile.Role}), nil
}

// attachCapabilities 解析失败时保留 nil，会话退回按角色判断
func (s *AuthService) attachCapabilities(sess *Session) *Session {
	if s.capabilities == nil {
		return sess
	}
	capabilities, err := s.capabilities.Capabilities(sess.Role)
	if err != nil {
		logger.Warnw("auth_resolve_capabilities_failed", "user_id", sess.UserID, "role", sess.Role, "error", err)
		return sess
	}
	if capabilities == nil {
		capabilities = []string{}
	}
	sess.Capabilities = capabilities
	return sess
}

func (s *AuthService) issue(ctx context.Context, profile *models.Profile) (*AuthResult, error) {
	token, expiresAt, err := s.GenerateJWT(profile)
	if err != nil {
		return nil, err
	}
	_ = cache.SetProfileAuthState(ctx, cache.BuildProfileAuthState(profile))
	return &AuthResult{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

func isValidRole(role string) bool {
	return role == constants.RoleSenior || role == constants.RoleJunior
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// IsTokenError 令牌无效或已吊销
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenRevoked)
}
