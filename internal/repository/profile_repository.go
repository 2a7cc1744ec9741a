package repository

import (
	"errors"
	"time"

	"github.com/campusbooks/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository 用户资料数据访问接口
type ProfileRepository interface {
	GetByEmail(email string) (*models.Profile, error)
	GetByID(id uint) (*models.Profile, error)
	Create(profile *models.Profile) error
	UpdateContact(id uint, fullName, phone string) error
	TouchLogin(id uint) error
	BumpTokenVersion(id uint) (uint64, error)
}

// GormProfileRepository GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建用户资料仓库
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByID 根据 ID 获取用户
func (r *GormProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建用户
func (r *GormProfileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// UpdateContact 更新姓名与电话，角色与邮箱不在可写范围内
func (r *GormProfileRepository) UpdateContact(id uint, fullName, phone string) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"full_name": fullName,
		"phone":     phone,
	}).Error
}

// TouchLogin 记录最后登录时间
func (r *GormProfileRepository) TouchLogin(id uint) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error
}

// BumpTokenVersion 递增 Token 版本，使已签发的令牌全部失效
func (r *GormProfileRepository) BumpTokenVersion(id uint) (uint64, error) {
	var version uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Profile{}).Where("id = ?", id).
			Update("token_version", gorm.Expr("token_version + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Profile{}).Select("token_version").Where("id = ?", id).Scan(&version).Error
	})
	return version, err
}
