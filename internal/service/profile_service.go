package service

import (
	"context"
	"strings"

	"github.com/campusbooks/internal/cache"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"
)

// ProfileService 个人资料
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService 创建个人资料服务
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// UpdateProfileInput 可修改的资料字段，角色与邮箱不可改
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// Get 当前用户资料
func (s *ProfileService) Get(sess *Session) (*models.Profile, error) {
	if !sess.Authenticated() {
		return nil, ErrAuthRequired
	}
	profile, err := s.profileRepo.GetByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Update 修改姓名与电话
func (s *ProfileService) Update(ctx context.Context, sess *Session, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.Get(sess)
	if err != nil {
		return nil, err
	}
	fullName := profile.FullName
	if input.FullName != nil {
		fullName = strings.TrimSpace(*input.FullName)
		if fullName == "" {
			return nil, ErrFullNameEmpty
		}
	}
	phone := profile.Phone
	if input.Phone != nil {
		phone = strings.TrimSpace(*input.Phone)
	}
	if err := s.profileRepo.UpdateContact(profile.ID, fullName, phone); err != nil {
		return nil, err
	}
	if err := cache.DelProfileAuthState(ctx, profile.ID); err != nil {
		logger.Warnw("auth_state_cache_delete_failed", "user_id", profile.ID, "error", err)
	}
	profile.FullName = fullName
	profile.Phone = phone
	return profile, nil
}
