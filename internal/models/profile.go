package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile 用户资料表（账号与角色合一）
type Profile struct {
	ID           uint           `gorm:"primarykey" json:"id"`                            // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`               // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                               // 密码哈希（不返回给前端）
	FullName     string         `gorm:"type:varchar(120);not null" json:"full_name"`     // 姓名
	Role         string         `gorm:"type:varchar(20);index;not null" json:"role"`     // 角色 senior / junior，注册后不可修改
	Phone        string         `gorm:"type:varchar(32);default:''" json:"phone"`        // 联系电话
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`                     // Token 版本（用于全量失效）
	LastLoginAt  *time.Time     `json:"last_login_at"`                                   // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}
