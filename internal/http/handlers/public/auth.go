package public

import (
	"time"

	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/i18n"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileView 资料响应
type ProfileView struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newProfileView(profile *models.Profile) ProfileView {
	return ProfileView{
		ID:          profile.ID,
		Email:       profile.Email,
		FullName:    profile.FullName,
		Role:        profile.Role,
		Phone:       profile.Phone,
		LastLoginAt: profile.LastLoginAt,
		CreatedAt:   profile.CreatedAt,
	}
}

func authPayload(result *service.AuthResult) gin.H {
	return gin.H{
		"user":       newProfileView(result.Profile),
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	}
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, authPayload(result))
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, authPayload(result))
}

// Logout 退出登录，已签发的令牌全部失效
func (h *Handler) Logout(c *gin.Context) {
	if err := h.AuthService.Logout(c.Request.Context(), getSession(c)); err != nil {
		respondProfileError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "success.logged_out"), gin.H{"ok": true})
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// GetProfile 当前用户资料
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.ProfileService.Get(getSession(c))
	if err != nil {
		respondProfileError(c, err)
		return
	}
	response.Success(c, newProfileView(profile))
}

// UpdateProfile 修改姓名与电话
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.ProfileService.Update(c.Request.Context(), getSession(c), service.UpdateProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}
	response.Success(c, newProfileView(profile))
}
