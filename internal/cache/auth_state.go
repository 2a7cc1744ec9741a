package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/campusbooks/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// ProfileAuthState 用户鉴权快照，仅缓存中间件校验需要的字段
type ProfileAuthState struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

func profileAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:profile:%d", userID)
}

// BuildProfileAuthState 从用户资料构建鉴权快照
func BuildProfileAuthState(profile *models.Profile) *ProfileAuthState {
	if profile == nil {
		return nil
	}
	return &ProfileAuthState{
		UserID:       profile.ID,
		Role:         profile.Role,
		TokenVersion: profile.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetProfileAuthState 获取用户鉴权快照
func GetProfileAuthState(ctx context.Context, userID uint) (*ProfileAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state ProfileAuthState
	hit, err := GetJSON(ctx, profileAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetProfileAuthState 写入用户鉴权快照
func SetProfileAuthState(ctx context.Context, state *ProfileAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, profileAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelProfileAuthState 删除用户鉴权快照
func DelProfileAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, profileAuthStateKey(userID))
}
